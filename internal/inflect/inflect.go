// Package inflect derives the cased and pluralized name variants used by
// every generated artifact. No other package cases or pluralizes a name on
// its own.
package inflect

import "strings"

// irregulars maps singular to plural for words the suffix rules get wrong.
var irregulars = map[string]string{
	"person":    "people",
	"man":       "men",
	"woman":     "women",
	"child":     "children",
	"tooth":     "teeth",
	"foot":      "feet",
	"mouse":     "mice",
	"goose":     "geese",
	"ox":        "oxen",
	"leaf":      "leaves",
	"life":      "lives",
	"knife":     "knives",
	"wife":      "wives",
	"half":      "halves",
	"wolf":      "wolves",
	"shelf":     "shelves",
	"thief":     "thieves",
	"quiz":      "quizzes",
	"index":     "indices",
	"matrix":    "matrices",
	"vertex":    "vertices",
	"axis":      "axes",
	"crisis":    "crises",
	"analysis":  "analyses",
	"thesis":    "theses",
	"datum":     "data",
	"medium":    "media",
	"criterion": "criteria",
	"hero":      "heroes",
	"potato":    "potatoes",
	"tomato":    "tomatoes",
	"echo":      "echoes",
	"movie":     "movies",
	"cookie":    "cookies",
	"pie":       "pies",
	"tie":       "ties",
	"zombie":    "zombies",
	"alias":     "aliases",
	"canvas":    "canvases",
	"gas":       "gases",
	"status":    "statuses",
	"bus":       "buses",
	"virus":     "viruses",
	"campus":    "campuses",
	"bonus":     "bonuses",
	"census":    "censuses",
	"menu":      "menus",
	"guru":      "gurus",
	"emu":       "emus",
	"haiku":     "haikus",
	"octopus":   "octopuses",
	"cache":     "caches",
	"niche":     "niches",
	"ache":      "aches",
	"headache":  "headaches",
	"avalanche": "avalanches",
	"cliche":    "cliches",
	"quiche":    "quiches",
	"moustache": "moustaches",
	"calorie":   "calories",
	"rookie":    "rookies",
	"selfie":    "selfies",
	"brownie":   "brownies",
	"goalie":    "goalies",
	"smoothie":  "smoothies",
	"hoodie":    "hoodies",
	"prairie":   "prairies",
	"genie":     "genies",
	"auntie":    "aunties",
}

// uncountables have identical singular and plural forms.
var uncountables = map[string]bool{
	"equipment":   true,
	"information": true,
	"rice":        true,
	"money":       true,
	"species":     true,
	"series":      true,
	"fish":        true,
	"sheep":       true,
	"deer":        true,
	"news":        true,
	"metadata":    true,
	"feedback":    true,
	"software":    true,
	"staff":       true,
}

var irregularPlurals = func() map[string]string {
	m := make(map[string]string, len(irregulars))
	for singular, plural := range irregulars {
		m[plural] = singular
	}
	return m
}()

// Pluralize returns the plural form of a single lowercase word. Already
// plural input is returned unchanged, so Pluralize(Pluralize(w)) ==
// Pluralize(w).
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	return pluralizeSingular(Singularize(word))
}

// Singularize returns the singular form of a single lowercase word.
func Singularize(word string) string {
	w := strings.ToLower(word)
	switch {
	case w == "":
		return word
	case uncountables[w]:
		return word
	}
	if singular, ok := irregularPlurals[w]; ok {
		return matchCase(word, singular)
	}
	if _, ok := irregulars[w]; ok {
		return word
	}

	switch {
	case len(w) > 3 && strings.HasSuffix(w, "ies"):
		return word[:len(word)-3] + matchCase(word[len(word)-3:], "y")
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return word
	case hasAnySuffix(w, "xes", "ches", "shes", "sses", "zzes"):
		return word[:len(word)-2]
	case len(w) > 1 && strings.HasSuffix(w, "s"):
		return word[:len(word)-1]
	}
	return word
}

// pluralizeSingular applies the plural rules to a word known to be singular.
func pluralizeSingular(word string) string {
	w := strings.ToLower(word)
	if w == "" || uncountables[w] {
		return word
	}
	if plural, ok := irregulars[w]; ok {
		return matchCase(word, plural)
	}

	switch {
	case len(w) > 1 && strings.HasSuffix(w, "y") && !isVowel(w[len(w)-2]):
		return word[:len(word)-1] + matchCase(word[len(word)-1:], "ies")
	case hasAnySuffix(w, "s", "x", "z", "ch", "sh"):
		return word + matchCase(word[len(word)-1:], "es")
	}
	return word + matchCase(word[len(word)-1:], "s")
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// matchCase upper-cases replacement when the reference text is all caps.
func matchCase(reference, replacement string) string {
	if reference != "" && reference == strings.ToUpper(reference) && reference != strings.ToLower(reference) {
		return strings.ToUpper(replacement)
	}
	return replacement
}
