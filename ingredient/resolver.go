package ingredient

import (
	"context"
	"fmt"
	"strings"
)

// Rule names the matching step that resolved a name.
type Rule string

const (
	RuleExact      Rule = "exact"
	RuleNormalized Rule = "normalized"
	RuleSingular   Rule = "singular"
	RuleSubstring  Rule = "substring"
)

// Match is a resolved ingredient and the rule that found it.
type Match struct {
	Ingredient Ingredient `json:"ingredient"`
	Rule       Rule       `json:"rule"`
}

// Resolver maps free-text ingredient names to catalog records.
type Resolver struct {
	catalog    Catalog
	qualifiers map[string]bool
	limit      int
}

// NewResolver creates a resolver over catalog.
func NewResolver(catalog Catalog, vocab Vocabulary) *Resolver {
	return &Resolver{
		catalog:    catalog,
		qualifiers: vocab.qualifierSet(),
		limit:      vocab.limit(),
	}
}

// Resolve finds the ingredient text most likely refers to. The steps are
// tried in order and the first hit wins:
//
//  1. case-insensitive exact name
//  2. exact match after dropping amounts, units and preparation qualifiers
//  3. singular form against the singular forms of stored names
//  4. word-bounded substring among a capped candidate set sharing the first
//     word, shortest stored name first
//
// ok is false when nothing matched confidently; callers may create a new
// ingredient. Errors only come from the catalog.
func (r *Resolver) Resolve(ctx context.Context, text string) (Match, bool, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Match{}, false, nil
	}

	if ing, ok, err := r.catalog.FindByName(ctx, raw); err != nil {
		return Match{}, false, fmt.Errorf("exact lookup %q: %w", raw, err)
	} else if ok {
		return Match{Ingredient: ing, Rule: RuleExact}, true, nil
	}

	norm := normalizeName(raw, r.qualifiers)
	if norm == "" {
		return Match{}, false, nil
	}
	if norm != strings.ToLower(raw) {
		if ing, ok, err := r.catalog.FindByName(ctx, norm); err != nil {
			return Match{}, false, fmt.Errorf("normalized lookup %q: %w", norm, err)
		} else if ok {
			return Match{Ingredient: ing, Rule: RuleNormalized}, true, nil
		}
	}

	singular := SingularPhrase(norm)
	candidates, err := r.catalog.Candidates(ctx, stem(firstWord(singular)), r.limit)
	if err != nil {
		return Match{}, false, fmt.Errorf("candidate lookup %q: %w", singular, err)
	}
	sortCandidates(candidates)

	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = searchKey(c.Name, r.qualifiers)
		if keys[i] == singular {
			return Match{Ingredient: c, Rule: RuleSingular}, true, nil
		}
	}

	for i, c := range candidates {
		if containsPhrase(keys[i], singular) || containsPhrase(singular, keys[i]) {
			return Match{Ingredient: c, Rule: RuleSubstring}, true, nil
		}
	}

	return Match{}, false, nil
}

// containsPhrase reports whether needle occurs in haystack on word boundaries.
func containsPhrase(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}
