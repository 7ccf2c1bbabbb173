package commands

import (
	"errors"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tomrplummer/blue-eyes/internal/cli/config"
	"github.com/tomrplummer/blue-eyes/internal/logging"
	"github.com/tomrplummer/blue-eyes/internal/project"
)

// workspace is the application a command operates on
type workspace struct {
	root   string
	config *config.Config
	layout project.Layout
	logger *zap.Logger
}

// openWorkspace locates the application from --root and loads its config
func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	root, err := config.FindProjectRoot(rootDir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logFile := cfg.Log.File
	if logFile != "" && !filepath.IsAbs(logFile) {
		logFile = filepath.Join(root, logFile)
	}

	return &workspace{
		root:   root,
		config: cfg,
		layout: cfg.Layout(root),
		logger: logging.New(logging.Options{Level: level, Writer: cmd.ErrOrStderr(), File: logFile}),
	}, nil
}

// close flushes the logger
func (w *workspace) close() {
	_ = w.logger.Sync()
}

// newLogger builds a logger for commands that run outside an application
func newLogger(cmd *cobra.Command) *zap.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{Level: level, Writer: cmd.ErrOrStderr()})
}

// animate reports whether spinners should be drawn
func animate() bool {
	return !noColor && !color.NoColor
}

// suggestedError attaches "did you mean" candidates to an error
type suggestedError struct {
	err         error
	suggestions []string
}

func (e *suggestedError) Error() string { return e.err.Error() }
func (e *suggestedError) Unwrap() error { return e.err }

// withSuggestions wraps err when there is something to suggest
func withSuggestions(err error, suggestions []string) error {
	if len(suggestions) == 0 {
		return err
	}
	return &suggestedError{err: err, suggestions: suggestions}
}

func suggestionsOf(err error) []string {
	var s *suggestedError
	if errors.As(err, &s) {
		return s.suggestions
	}
	return nil
}
