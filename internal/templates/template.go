package templates

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/tomrplummer/blue-eyes/internal/inflect"
)

var (
	// ErrTemplateNotFound is returned when no template is registered under an id
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplate is returned when a template fails to parse or execute,
	// including references to keys missing from the context
	ErrTemplate = errors.New("template error")
)

// Template represents a project template: a tree of files materialized by
// `blue-eyes new`.
type Template struct {
	Name        string
	Description string
	Files       []*TemplateFile
	Directories []string
}

// TemplateFile represents a file in a project template
type TemplateFile struct {
	TargetPath string
	Content    string
	Template   bool // Use template engine
	Executable bool
}

// TemplateContext contains all data for project template execution
type TemplateContext struct {
	ProjectName string
	Variables   map[string]interface{}
	Timestamp   time.Time
}

// Engine is the template rendering engine
type Engine struct {
	registry *Registry
	funcs    template.FuncMap
}

// NewEngine creates an engine over the given artifact registry. A nil
// registry uses the built-in templates.
func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Engine{
		registry: registry,
		funcs: template.FuncMap{
			"upper": strings.ToUpper,
			"lower": strings.ToLower,
			"title": func(s string) string {
				if s == "" {
					return s
				}
				words := strings.Fields(strings.ReplaceAll(s, "_", " "))
				for i, word := range words {
					if len(word) > 0 {
						words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
					}
				}
				return strings.Join(words, " ")
			},
			"snake":     inflect.ToSnakeCase,
			"pascal":    inflect.ToPascalCase,
			"derive":    derive,
			"inputType": inputType,
			"now":       time.Now,
			"year":      func() int { return time.Now().Year() },
		},
	}
}

// Render renders the artifact template registered under id.
func (e *Engine) Render(id string, data map[string]any) (string, error) {
	source, err := e.registry.Get(id)
	if err != nil {
		return "", err
	}
	return e.render(id, source, data)
}

// Check parses the template registered under id without executing it.
func (e *Engine) Check(id string) error {
	source, err := e.registry.Get(id)
	if err != nil {
		return err
	}
	if _, err := template.New(id).Funcs(e.funcs).Parse(source); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrTemplate, id, err)
	}
	return nil
}

func (e *Engine) render(name, source string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(e.funcs).Option("missingkey=error").Parse(source)
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %v", ErrTemplate, name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: render %s: %v", ErrTemplate, name, err)
	}

	return buf.String(), nil
}

// Execute materializes a project template into targetDir
func (e *Engine) Execute(tmpl *Template, ctx *TemplateContext, targetDir string) ([]string, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	// Create target directory
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}

	// Create directories
	for _, dir := range tmpl.Directories {
		fullPath, err := safeJoin(targetDir, dir)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(fullPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", fullPath, err)
		}
	}

	var written []string

	// Process files
	for _, file := range tmpl.Files {
		fullPath, err := safeJoin(targetDir, file.TargetPath)
		if err != nil {
			return written, err
		}

		// Create parent directory
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return written, fmt.Errorf("failed to create parent directory for %s: %w", fullPath, err)
		}

		// Render content
		content := file.Content
		if file.Template {
			content, err = e.render(file.TargetPath, file.Content, ctx)
			if err != nil {
				return written, err
			}
		}

		// Write file
		mode := os.FileMode(0644)
		if file.Executable {
			mode = 0755
		}
		if err := os.WriteFile(fullPath, []byte(content), mode); err != nil {
			return written, fmt.Errorf("failed to write file %s: %w", fullPath, err)
		}
		written = append(written, file.TargetPath)
	}

	return written, nil
}

// safeJoin joins rel onto root, rejecting paths that escape root
func safeJoin(root, rel string) (string, error) {
	cleaned := filepath.Clean(rel)

	// Reject absolute paths
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid path: %s attempts to write outside project directory", rel)
	}

	fullPath := filepath.Join(root, cleaned)
	cleanRoot := filepath.Clean(root) + string(filepath.Separator)

	// Ensure the resolved path is still within root
	if !strings.HasPrefix(filepath.Clean(fullPath)+string(filepath.Separator), cleanRoot) {
		return "", fmt.Errorf("invalid path: %s attempts to write outside project directory", rel)
	}

	return fullPath, nil
}

// Validate validates a template structure
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if len(t.Files) == 0 {
		return fmt.Errorf("template must have at least one file")
	}

	seen := make(map[string]bool)
	for _, f := range t.Files {
		if f.TargetPath == "" {
			return fmt.Errorf("file target path is required")
		}
		if seen[f.TargetPath] {
			return fmt.Errorf("duplicate file target path: %s", f.TargetPath)
		}
		seen[f.TargetPath] = true
	}

	return nil
}

// derive exposes inflect.Derive to templates: {{ derive "path_segment" .name }}.
func derive(variant, name string) (string, error) {
	v, err := inflect.ParseVariant(variant)
	if err != nil {
		return "", err
	}
	return inflect.Derive(name, v), nil
}

// inputType maps a column type to the HTML input used by generated forms.
func inputType(sqlType string) string {
	switch strings.ToLower(sqlType) {
	case "boolean", "bool", "trueclass":
		return "checkbox"
	case "integer", "int", "bigint", "float", "decimal", "numeric":
		return "number"
	case "date":
		return "date"
	case "datetime", "timestamp", "time":
		return "datetime-local"
	case "text":
		return "textarea"
	default:
		return "text"
	}
}
