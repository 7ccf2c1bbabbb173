package ui

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/fatih/color"

	"github.com/tomrplummer/blue-eyes/internal/generator"
	"github.com/tomrplummer/blue-eyes/internal/registry"
	"github.com/tomrplummer/blue-eyes/internal/resource"
	"github.com/tomrplummer/blue-eyes/internal/shell"
	"github.com/tomrplummer/blue-eyes/internal/templates"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ MISSING RELATION: belongs-to resource is not registered: "post"
//
//	   Did you mean: posts?
//
//	   → See registered resources: blue-eyes routes
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	default:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	}
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	if opts.NoColor {
		for _, c := range []*color.Color{headerColor, bodyColor, yellow, cyan} {
			c.DisableColor()
		}
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// ClassifyError maps an error from the generation stack to a user-facing
// message with help commands.
func ClassifyError(err error, noColor bool) ErrorOptions {
	opts := ErrorOptions{Level: ErrorLevelError, Problem: err.Error(), NoColor: noColor}

	var pathErr *fs.PathError
	var cmdErr *shell.ExitError

	switch {
	case errors.Is(err, resource.ErrParse):
		opts.Context = "invalid input"
		opts.HelpCommands = []string{
			`Fields are type:name pairs: --fields "string:title integer:count"`,
			"Get help: blue-eyes generate --help",
		}
	case errors.Is(err, registry.ErrParse):
		opts.Context = "relation registry"
		opts.Consequence = "The path registry could not be decoded, nothing was generated."
		opts.HelpCommands = []string{"Inspect it: cat helpers/paths_config.toml"}
	case errors.Is(err, generator.ErrMissingRelation):
		opts.Context = "missing relation"
		opts.Consequence = "Nothing was written."
		opts.HelpCommands = []string{
			"Generate the parent first: blue-eyes generate controller <parent>",
			"See registered resources: blue-eyes routes",
		}
	case errors.Is(err, generator.ErrNoFieldsProvided):
		opts.Context = "no fields"
		opts.HelpCommands = []string{`Pass columns: --fields "string:title text:body"`}
	case errors.Is(err, generator.ErrAlreadyExists):
		opts.Context = "file exists"
		opts.Consequence = "Nothing was written."
		opts.HelpCommands = []string{
			"Overwrite: add --force",
			"Preview: add --dry-run",
		}
	case errors.Is(err, generator.ErrMarkerNotFound):
		opts.Context = "router"
		opts.HelpCommands = []string{
			"config.ru needs exactly one 'run ApplicationController' line",
			"Change it with router.marker in blue-eyes.yaml",
		}
	case errors.Is(err, templates.ErrTemplateNotFound), errors.Is(err, templates.ErrTemplate):
		opts.Context = "template"
		opts.HelpCommands = []string{"Check overrides in .blue-eyes/templates"}
	case errors.As(err, &cmdErr):
		opts.Context = "command failed"
		if cmdErr.Stderr != "" {
			opts.Consequence = strings.TrimSpace(cmdErr.Stderr)
		}
	case errors.As(err, &pathErr):
		opts.Context = "file system"
		opts.HelpCommands = []string{"Run from the project root or pass --root"}
	}

	return opts
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// WriteAction writes one file action line, right-aligned like
// "      create  app/models/posts.rb"
func WriteAction(w io.Writer, action, path string, noColor bool) {
	c := color.New(color.FgGreen, color.Bold)
	switch action {
	case "overwrite", "update":
		c = color.New(color.FgYellow, color.Bold)
	case "identical", "skip":
		c = color.New(color.FgHiBlack)
	}
	if noColor {
		c.DisableColor()
	}
	c.Fprintf(w, "%12s", action)
	fmt.Fprintf(w, "  %s\n", path)
}

// Warning creates a standardized warning message
func Warning(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelWarning,
		Problem:     message,
		Suggestions: suggestions,
		NoColor:     noColor,
	})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}
