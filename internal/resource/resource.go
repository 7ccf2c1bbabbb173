// Package resource describes a single generation request.
package resource

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrParse is returned for malformed --fields tokens and resource names.
var ErrParse = errors.New("parse error")

// Kind is the artifact family requested on the command line.
type Kind int

const (
	Controller Kind = iota
	Model
	Migration
	Api
	Scaffold
)

var kindNames = map[Kind]string{
	Controller: "controller",
	Model:      "model",
	Migration:  "migration",
	Api:        "api",
	Scaffold:   "scaffold",
}

// String returns the command-line spelling of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a generate subcommand name to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown artifact kind %q (valid: controller, model, migration, api, scaffold)", ErrParse, s)
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{Controller, Model, Migration, Api, Scaffold}
}

// Field is one typed column parsed from a "type:name" token.
type Field struct {
	SQLType   string
	FieldName string
}

// Spec is the validated, immutable description of one requested resource.
type Spec struct {
	Name      string
	Fields    []Field // nil when no fields were given
	Alias     string
	BelongsTo string
	Kind      Kind
}

// Options carries the raw command-line inputs for New.
type Options struct {
	Fields    []string
	Alias     string
	BelongsTo string
}

// New validates raw inputs and builds a Spec.
func New(name string, kind Kind, opts Options) (*Spec, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: resource name is required", ErrParse)
	}
	if !hasWordRune(name) {
		return nil, fmt.Errorf("%w: resource name %q must contain a letter or digit", ErrParse, name)
	}
	if _, ok := kindNames[kind]; !ok {
		return nil, fmt.Errorf("%w: unknown artifact kind %d", ErrParse, int(kind))
	}

	fields, err := ParseFields(opts.Fields)
	if err != nil {
		return nil, err
	}

	alias := strings.TrimSpace(opts.Alias)
	if alias != "" && !hasWordRune(alias) {
		return nil, fmt.Errorf("%w: alias %q must contain a letter or digit", ErrParse, alias)
	}
	belongsTo := strings.TrimSpace(opts.BelongsTo)
	if belongsTo != "" && !hasWordRune(belongsTo) {
		return nil, fmt.Errorf("%w: belongs-to %q must contain a letter or digit", ErrParse, belongsTo)
	}

	return &Spec{
		Name:      name,
		Fields:    fields,
		Alias:     alias,
		BelongsTo: belongsTo,
		Kind:      kind,
	}, nil
}

// HasAlias reports whether an alias was given.
func (s *Spec) HasAlias() bool { return s.Alias != "" }

// HasBelongsTo reports whether a parent resource was given.
func (s *Spec) HasBelongsTo() bool { return s.BelongsTo != "" }

// ParseFields parses "type:name" tokens. Each element may itself hold
// several tokens separated by whitespace or commas, so both
// --fields "string:title integer:count" and repeated flags work.
// Returns nil when no tokens are present.
func ParseFields(tokens []string) ([]Field, error) {
	var fields []Field

	for _, raw := range tokens {
		parts := strings.FieldsFunc(raw, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		for _, part := range parts {
			field, err := parseField(part)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
	}

	return fields, nil
}

// parseField parses a single field token.
// Format: "type:name"
func parseField(token string) (Field, error) {
	sqlType, name, ok := strings.Cut(token, ":")
	if !ok {
		return Field{}, fmt.Errorf("%w: invalid field %q: expected 'type:name'", ErrParse, token)
	}

	sqlType = strings.TrimSpace(sqlType)
	name = strings.TrimSpace(name)
	if sqlType == "" {
		return Field{}, fmt.Errorf("%w: invalid field %q: empty type", ErrParse, token)
	}
	if name == "" {
		return Field{}, fmt.Errorf("%w: invalid field %q: empty field name", ErrParse, token)
	}
	if strings.Contains(name, ":") {
		return Field{}, fmt.Errorf("%w: invalid field %q: too many ':' separators", ErrParse, token)
	}

	return Field{SQLType: sqlType, FieldName: name}, nil
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
