package ui

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/tomrplummer/blue-eyes/internal/generator"
	"github.com/tomrplummer/blue-eyes/internal/registry"
	"github.com/tomrplummer/blue-eyes/internal/resource"
	"github.com/tomrplummer/blue-eyes/internal/shell"
	"github.com/tomrplummer/blue-eyes/internal/templates"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "file exists",
				Problem: "app/models/posts.rb",
			},
			contains: []string{"❌", "FILE EXISTS: app/models/posts.rb"},
		},
		{
			name: "error with suggestions",
			opts: ErrorOptions{
				Context:     "missing relation",
				Problem:     "pots",
				Suggestions: []string{"posts", "users"},
			},
			contains: []string{"Did you mean: posts, users?"},
		},
		{
			name: "error with consequence and help",
			opts: ErrorOptions{
				Problem:      "boom",
				Consequence:  "Nothing was written.",
				HelpCommands: []string{"Overwrite: add --force"},
			},
			contains: []string{"   Nothing was written.", "→ Overwrite: add --force"},
		},
		{
			name:     "warning",
			opts:     ErrorOptions{Level: ErrorLevelWarning, Problem: "careful"},
			contains: []string{"⚠️ careful"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.NoColor = true
			got := FormatError(tt.opts)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatError() missing %q in:\n%s", want, got)
				}
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		context string
	}{
		{"parse", fmt.Errorf("%w: bad field", resource.ErrParse), "invalid input"},
		{"registry", fmt.Errorf("load: %w", registry.ErrParse), "relation registry"},
		{"missing relation", fmt.Errorf("%w: post", generator.ErrMissingRelation), "missing relation"},
		{"no fields", generator.ErrNoFieldsProvided, "no fields"},
		{"exists", fmt.Errorf("%w: x", generator.ErrAlreadyExists), "file exists"},
		{"marker", generator.ErrMarkerNotFound, "router"},
		{"template", fmt.Errorf("%w: x", templates.ErrTemplate), "template"},
		{"command", &shell.ExitError{Command: "bundle install", Code: 1, Stderr: "no gems\n"}, "command failed"},
		{"path", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, "file system"},
		{"other", errors.New("something else"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := ClassifyError(tt.err, true)
			if opts.Context != tt.context {
				t.Errorf("ClassifyError() context = %q, want %q", opts.Context, tt.context)
			}
			if opts.Problem != tt.err.Error() {
				t.Errorf("ClassifyError() problem = %q, want %q", opts.Problem, tt.err.Error())
			}
			if opts.Level != ErrorLevelError {
				t.Errorf("ClassifyError() level = %v, want error", opts.Level)
			}
		})
	}
}

func TestClassifyCommandError(t *testing.T) {
	opts := ClassifyError(&shell.ExitError{Command: "bundle install", Code: 1, Stderr: "could not find gem\n"}, true)
	if opts.Consequence != "could not find gem" {
		t.Errorf("expected stderr as consequence, got %q", opts.Consequence)
	}
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "Generated posts", true)
	if buf.String() != "✓ Generated posts\n" {
		t.Errorf("WriteSuccess() = %q", buf.String())
	}
}

func TestWriteAction(t *testing.T) {
	var buf bytes.Buffer
	WriteAction(&buf, "create", "app/models/posts.rb", true)
	if buf.String() != "      create  app/models/posts.rb\n" {
		t.Errorf("WriteAction() = %q", buf.String())
	}
}

func TestInfo(t *testing.T) {
	got := Info("dry run, nothing written", true)
	if !strings.Contains(got, "ℹ️ dry run, nothing written") {
		t.Errorf("Info() = %q", got)
	}
}
