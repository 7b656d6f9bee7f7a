package ingredient

import (
	"strings"
	"unicode"

	"pantrysync/quantity"
)

var defaultQualifierSet = DefaultVocabulary().qualifierSet()

// SearchKey is the normalized, singular form of a stored name under the
// default vocabulary.
func SearchKey(name string) string {
	return searchKey(name, defaultQualifierSet)
}

// SearchKey is the normalized, singular form of a stored name that indexes
// and stores use for prefix lookups. Stores must key names with the same
// vocabulary their resolver uses.
func (v Vocabulary) SearchKey(name string) string {
	return searchKey(name, v.qualifierSet())
}

func searchKey(name string, qualifiers map[string]bool) string {
	if key := SingularPhrase(normalizeName(name, qualifiers)); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// normalizeName lower-cases text and drops leading amounts and units, anything
// in parentheses or after the first comma, punctuation and preparation
// qualifiers: "2 cups diced fresh tomatoes (ripe), drained" -> "tomatoes".
func normalizeName(text string, qualifiers map[string]bool) string {
	s := strings.ToLower(text)
	s = stripParentheses(s)
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}

	words := strings.Fields(s)
	for len(words) > 0 && isAmountWord(words[0]) {
		words = words[1:]
	}

	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
		if w == "" || qualifiers[w] {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func isAmountWord(w string) bool {
	r := []rune(w)
	if len(r) == 0 {
		return false
	}
	if unicode.IsNumber(r[0]) || r[0] == '.' || r[0] == '/' {
		return true
	}
	switch w {
	case "a", "an", "of":
		return true
	}
	return quantity.IsUnitWord(w)
}

func stripParentheses(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
			b.WriteRune(' ')
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Singular strips a simple English plural suffix. It is a suffix heuristic,
// so irregular plurals ("leaves") are not handled.
func Singular(word string) string {
	w := word
	switch {
	case len(w) <= 3:
		return w
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "oes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"),
		strings.HasSuffix(w, "sses"), strings.HasSuffix(w, "xes"), strings.HasSuffix(w, "zes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return w
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}

// SingularPhrase singularizes the last word of a phrase ("chicken breasts" ->
// "chicken breast").
func SingularPhrase(phrase string) string {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return ""
	}
	words[len(words)-1] = Singular(words[len(words)-1])
	return strings.Join(words, " ")
}

// stem is the longest common prefix of a word and its singular form, so that
// both "berries" and "berry" look up keys starting with "berr".
func stem(word string) string {
	s := Singular(word)
	n := 0
	for n < len(word) && n < len(s) && word[n] == s[n] {
		n++
	}
	return word[:n]
}

func firstWord(phrase string) string {
	if i := strings.IndexByte(phrase, ' '); i >= 0 {
		return phrase[:i]
	}
	return phrase
}
