package ingredient

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultCandidateLimit bounds the substring-match candidate set.
const DefaultCandidateLimit = 25

// Vocabulary configures name normalization.
type Vocabulary struct {
	// Qualifiers are preparation words dropped before matching.
	Qualifiers []string `toml:"qualifiers"`
	// CandidateLimit caps the candidates fetched for fuzzy matching.
	CandidateLimit int `toml:"candidate_limit"`
}

var defaultQualifiers = []string{
	"diced", "chopped", "minced", "sliced", "cubed", "grated", "shredded",
	"crushed", "peeled", "halved", "quartered", "mashed", "julienned",
	"fresh", "freshly", "cooked", "uncooked", "raw", "frozen", "thawed",
	"canned", "dried", "toasted", "roasted", "boiled", "steamed",
	"large", "small", "medium", "finely", "roughly", "thinly", "coarsely",
	"boneless", "skinless", "organic", "ripe", "softened", "melted",
	"optional", "divided", "packed",
}

// DefaultVocabulary returns the built-in qualifier list and candidate limit.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Qualifiers:     append([]string(nil), defaultQualifiers...),
		CandidateLimit: DefaultCandidateLimit,
	}
}

// LoadVocabulary reads a TOML file and merges it over the defaults: listed
// qualifiers are added to the built-in ones, a positive candidate_limit
// replaces the default. An empty path returns the defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("failed to read vocabulary file '%s': %w", path, err)
	}

	var extra Vocabulary
	if err := toml.Unmarshal(data, &extra); err != nil {
		return v, fmt.Errorf("failed to parse vocabulary TOML: %w", err)
	}

	v.Qualifiers = append(v.Qualifiers, extra.Qualifiers...)
	if extra.CandidateLimit > 0 {
		v.CandidateLimit = extra.CandidateLimit
	}
	return v, nil
}

func (v Vocabulary) limit() int {
	if v.CandidateLimit <= 0 {
		return DefaultCandidateLimit
	}
	return v.CandidateLimit
}

func (v Vocabulary) qualifierSet() map[string]bool {
	set := make(map[string]bool, len(v.Qualifiers))
	for _, q := range v.Qualifiers {
		set[q] = true
	}
	return set
}
