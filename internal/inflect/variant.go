package inflect

import (
	"fmt"
	"strings"
)

// Variant identifies one lexical transformation of a resource name.
type Variant int

const (
	Model Variant = iota
	Class
	Variable
	VariablePlural
	TemplateToken
	PathSegment
	Alias
	BelongsToModel
	BelongsToPath
	BelongsToForeignKey
)

// Casing is the word-joining convention of a variant.
type Casing int

const (
	Pascal Casing = iota
	Snake
)

// Number is the grammatical number of a variant.
type Number int

const (
	Singular Number = iota
	Plural
)

var variantNames = map[Variant]string{
	Model:               "model",
	Class:               "class",
	Variable:            "variable",
	VariablePlural:      "variable_plural",
	TemplateToken:       "template_token",
	PathSegment:         "path_segment",
	Alias:               "alias",
	BelongsToModel:      "belongs_to_model",
	BelongsToPath:       "belongs_to_path",
	BelongsToForeignKey: "belongs_to_foreign_key",
}

// String returns the snake_case name of the variant.
func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant is the inverse of Variant.String.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants() {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown name variant %q", s)
}

// Variants returns every variant in declaration order.
func Variants() []Variant {
	return []Variant{
		Model, Class, Variable, VariablePlural, TemplateToken,
		PathSegment, Alias, BelongsToModel, BelongsToPath, BelongsToForeignKey,
	}
}

// Shape returns the casing and number a variant is built from.
func (v Variant) Shape() (Casing, Number) {
	switch v {
	case Model, BelongsToModel:
		return Pascal, Singular
	case Class:
		return Pascal, Plural
	case Variable, BelongsToForeignKey:
		return Snake, Singular
	case VariablePlural, TemplateToken, PathSegment, Alias, BelongsToPath:
		return Snake, Plural
	}
	panic(fmt.Sprintf("inflect: unhandled variant %d", int(v)))
}

// Derive maps a raw resource name to the requested variant. It never fails;
// a name without letters or digits derives the empty string.
func Derive(name string, v Variant) string {
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}

	casing, number := v.Shape()

	last := len(words) - 1
	switch number {
	case Singular:
		words[last] = Singularize(words[last])
	case Plural:
		words[last] = Pluralize(words[last])
	}

	var out string
	switch casing {
	case Pascal:
		for i, word := range words {
			words[i] = capitalize(word)
		}
		out = strings.Join(words, "")
	case Snake:
		out = strings.Join(words, "_")
	}

	if v == BelongsToForeignKey {
		out += "_id"
	}
	return out
}
