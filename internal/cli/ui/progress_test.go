package ui

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerStartStop(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "Installing gems", true)
	s.interval = 5 * time.Millisecond
	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	s.Stop()

	if !strings.Contains(buf.String(), "Installing gems") {
		t.Errorf("spinner never drew its message: %q", buf.String())
	}
}

func TestStep(t *testing.T) {
	var buf bytes.Buffer
	err := Step(&buf, "Wrote .env", false, true, func() error { return nil })
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if buf.String() != "✓ Wrote .env\n" {
		t.Errorf("Step() output = %q", buf.String())
	}
}

func TestStepError(t *testing.T) {
	var buf bytes.Buffer
	want := errors.New("bundle failed")
	err := Step(&buf, "Installing gems", false, true, func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("Step() error = %v, want %v", err, want)
	}
	if !strings.Contains(buf.String(), "❌ Installing gems") {
		t.Errorf("Step() output = %q", buf.String())
	}
}

func TestStepAnimated(t *testing.T) {
	var buf syncBuffer
	err := Step(&buf, "Downloading", true, true, func() error { return nil })
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !strings.HasSuffix(buf.String(), "✓ Downloading\n") {
		t.Errorf("Step() output = %q", buf.String())
	}
}
