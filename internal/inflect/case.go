package inflect

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts any supported spelling to snake_case.
// Handles acronyms properly (HTTPRequest -> http_request)
func ToSnakeCase(s string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, "_")
}

// ToPascalCase converts any supported spelling to PascalCase.
func ToPascalCase(s string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = capitalize(strings.ToLower(word))
	}
	return strings.Join(words, "")
}

// capitalize returns the string with the first letter uppercased.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// splitWords splits a string into words (handles camelCase, PascalCase,
// snake_case, kebab-case and spaces).
func splitWords(s string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}

		if unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			// Break before an uppercase letter if:
			// 1. Previous char is lowercase or a digit
			// 2. Next char is lowercase (for acronyms like HTTPRequest -> http_request)
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				flush()
			} else if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()

	return words
}
