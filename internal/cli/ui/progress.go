package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Spinner animates a message while a long step runs
type Spinner struct {
	writer   io.Writer
	message  string
	interval time.Duration
	noColor  bool

	once    sync.Once
	started bool
	stop    chan struct{}
	done    chan struct{}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner; it does not start drawing until Start
func NewSpinner(w io.Writer, message string, noColor bool) *Spinner {
	return &Spinner{
		writer:   w,
		message:  message,
		interval: 100 * time.Millisecond,
		noColor:  noColor,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the animation
func (s *Spinner) Start() {
	s.started = true
	go s.animate()
}

// Stop ends the animation and clears the line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		if !s.started {
			return
		}
		<-s.done
		fmt.Fprint(s.writer, "\r\033[K")
	})
}

func (s *Spinner) animate() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	cyan := color.New(color.FgCyan)
	if s.noColor {
		cyan.DisableColor()
	}

	for frame := 0; ; frame = (frame + 1) % len(spinnerFrames) {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			cyan.Fprintf(s.writer, "\r%s %s", spinnerFrames[frame], s.message)
		}
	}
}

// Step runs fn behind a spinner and reports how it ended. With animate
// false only the outcome line is written, which keeps logs and pipes clean.
func Step(w io.Writer, message string, animate, noColor bool, fn func() error) error {
	var spinner *Spinner
	if animate {
		spinner = NewSpinner(w, message, noColor)
		spinner.Start()
	}

	err := fn()

	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		red := color.New(color.FgRed, color.Bold)
		if noColor {
			red.DisableColor()
		}
		red.Fprintf(w, "❌ %s\n", message)
		return err
	}

	WriteSuccess(w, message, noColor)
	return nil
}
