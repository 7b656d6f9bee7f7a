package ingredient

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pantrysync/quantity"
)

// bucketLen is the key prefix length used to bucket the in-memory index.
const bucketLen = 3

// Index is an in-memory Store. Names are indexed by the first letters of
// their search key so candidate fetches only scan one bucket.
type Index struct {
	byID    map[string]Ingredient
	byName  map[string]string
	buckets map[string][]string
	keys    map[string]string
	order   []string
	vocab   Vocabulary
}

// NewIndex builds an index over the given ingredients using the default
// vocabulary.
func NewIndex(ingredients ...Ingredient) *Index {
	return NewVocabularyIndex(DefaultVocabulary(), ingredients...)
}

// NewVocabularyIndex builds an index whose search keys drop vocab's
// qualifiers.
func NewVocabularyIndex(vocab Vocabulary, ingredients ...Ingredient) *Index {
	idx := &Index{
		byID:    make(map[string]Ingredient),
		byName:  make(map[string]string),
		buckets: make(map[string][]string),
		keys:    make(map[string]string),
		vocab:   vocab,
	}
	for _, ing := range ingredients {
		idx.Put(ing)
	}
	return idx
}

// Put adds or replaces an ingredient.
func (idx *Index) Put(ing Ingredient) {
	if old, ok := idx.byID[ing.ID]; ok {
		idx.remove(old)
	} else {
		idx.order = append(idx.order, ing.ID)
	}
	idx.byID[ing.ID] = ing

	name := strings.ToLower(strings.TrimSpace(ing.Name))
	if _, taken := idx.byName[name]; !taken {
		idx.byName[name] = ing.ID
	}

	key := idx.vocab.SearchKey(ing.Name)
	idx.keys[ing.ID] = key
	b := bucket(key)
	idx.buckets[b] = append(idx.buckets[b], ing.ID)
}

func (idx *Index) remove(old Ingredient) {
	name := strings.ToLower(strings.TrimSpace(old.Name))
	if idx.byName[name] == old.ID {
		delete(idx.byName, name)
	}
	b := bucket(idx.keys[old.ID])
	ids := idx.buckets[b]
	for i, id := range ids {
		if id == old.ID {
			idx.buckets[b] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	delete(idx.keys, old.ID)
}

func bucket(key string) string {
	if len(key) > bucketLen {
		return key[:bucketLen]
	}
	return key
}

// All returns every ingredient in insertion order.
func (idx *Index) All() []Ingredient {
	out := make([]Ingredient, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.byID[id])
	}
	return out
}

func (idx *Index) Get(_ context.Context, id string) (Ingredient, bool, error) {
	ing, ok := idx.byID[id]
	return ing, ok, nil
}

func (idx *Index) FindByName(_ context.Context, name string) (Ingredient, bool, error) {
	id, ok := idx.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Ingredient{}, false, nil
	}
	return idx.byID[id], true, nil
}

func (idx *Index) Candidates(_ context.Context, prefix string, limit int) ([]Ingredient, error) {
	if prefix == "" || limit <= 0 {
		return nil, nil
	}

	var ids []string
	if len(prefix) >= bucketLen {
		ids = idx.buckets[prefix[:bucketLen]]
	} else {
		for b, bucketIDs := range idx.buckets {
			if strings.HasPrefix(b, prefix) {
				ids = append(ids, bucketIDs...)
			}
		}
	}

	var out []Ingredient
	for _, id := range ids {
		if strings.HasPrefix(idx.keys[id], prefix) {
			out = append(out, idx.byID[id])
		}
	}
	sortCandidates(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Create stores a new ingredient named name with the base unit of kind.
func (idx *Index) Create(_ context.Context, name string, kind quantity.Kind) (Ingredient, error) {
	if strings.TrimSpace(name) == "" {
		return Ingredient{}, fmt.Errorf("cannot create ingredient with empty name")
	}
	ing := New(name, kind)
	idx.Put(ing)
	return ing, nil
}

// sortCandidates orders the more generic, shorter names first.
func sortCandidates(c []Ingredient) {
	sort.SliceStable(c, func(i, j int) bool {
		if len(c[i].Name) != len(c[j].Name) {
			return len(c[i].Name) < len(c[j].Name)
		}
		return strings.ToLower(c[i].Name) < strings.ToLower(c[j].Name)
	})
}
