package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pantrysync/ingredient"
	"pantrysync/quantity"
	"pantrysync/reconcile"
)

// Snapshot is the persisted household document.
type Snapshot struct {
	Ingredients []ingredient.Ingredient `json:"ingredients"`
	Users       []User                  `json:"users"`
	Lists       []ShoppingList          `json:"lists"`
	Pantries    []Pantry                `json:"pantries"`
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	FamilyID string `json:"family_id,omitempty"`
}

type ShoppingList struct {
	reconcile.List
	Name  string           `json:"name,omitempty"`
	Lines []reconcile.Line `json:"lines"`
}

type Pantry struct {
	Scope reconcile.Scope  `json:"scope"`
	Lines []reconcile.Line `json:"lines"`
}

// ParseSnapshot decodes a snapshot document. Empty input is an empty household.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if len(data) == 0 {
		return &snap, nil
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := snap.Prepare(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return &snap, nil
}

// Prepare completes and validates the ingredients and gives every list and
// pantry line an id that is unique within its list or pantry, since patches
// address lines by id.
func (s *Snapshot) Prepare() error {
	for i, ing := range s.Ingredients {
		completed, err := ing.Complete()
		if err != nil {
			return err
		}
		s.Ingredients[i] = completed
	}
	for _, l := range s.Lists {
		assignLineIDs(l.Lines)
	}
	for _, p := range s.Pantries {
		assignLineIDs(p.Lines)
	}
	return nil
}

func assignLineIDs(lines []reconcile.Line) {
	seen := make(map[string]bool, len(lines))
	for i := range lines {
		id := strings.TrimSpace(lines[i].ID)
		if id == "" || seen[id] {
			id = uuid.NewString()
		}
		lines[i].ID = id
		seen[id] = true
	}
}

// Household is a snapshot opened for reading and patching. It serves the
// sync engine and the ingredient resolver.
type Household struct {
	*ingredient.Index
	snap  *Snapshot
	users map[string]User
}

func NewHousehold(snap *Snapshot, vocab ingredient.Vocabulary) *Household {
	h := &Household{
		Index: ingredient.NewVocabularyIndex(vocab, snap.Ingredients...),
		snap:  snap,
		users: make(map[string]User, len(snap.Users)),
	}
	for _, u := range snap.Users {
		h.users[u.ID] = u
	}
	return h
}

// Snapshot returns the document with any created ingredients included.
func (h *Household) Snapshot() *Snapshot {
	h.snap.Ingredients = h.Index.All()
	return h.snap
}

func (h *Household) FamilyOf(_ context.Context, userID string) (string, bool, error) {
	u, ok := h.users[userID]
	if !ok || u.FamilyID == "" {
		return "", false, nil
	}
	return u.FamilyID, true, nil
}

func (h *Household) PantryLines(_ context.Context, scope reconcile.Scope) ([]reconcile.Line, error) {
	var lines []reconcile.Line
	for _, p := range h.snap.Pantries {
		if p.Scope == scope {
			lines = append(lines, p.Lines...)
		}
	}
	return lines, nil
}

func (h *Household) Ingredients(ctx context.Context, ids []string) (map[string]ingredient.Ingredient, error) {
	out := make(map[string]ingredient.Ingredient, len(ids))
	for _, id := range ids {
		ing, ok, err := h.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out[id] = ing
		}
	}
	return out, nil
}

// Create adds an ingredient, refusing a name already taken.
func (h *Household) Create(ctx context.Context, name string, kind quantity.Kind) (ingredient.Ingredient, error) {
	ing, ok, err := h.FindByName(ctx, name)
	if err != nil {
		return ingredient.Ingredient{}, err
	}
	if ok {
		return ing, nil
	}
	return h.Index.Create(ctx, name, kind)
}

// List returns the list with the given id.
func (h *Household) List(id string) (*ShoppingList, error) {
	for i := range h.snap.Lists {
		if h.snap.Lists[i].ID == id {
			return &h.snap.Lists[i], nil
		}
	}
	return nil, fmt.Errorf("list %q: %w", id, reconcile.ErrListNotFound)
}

// Apply writes sync patches onto a list, preserving line order.
func (h *Household) Apply(listID string, patches []reconcile.Patch) error {
	list, err := h.List(listID)
	if err != nil {
		return err
	}

	byLine := make(map[string]reconcile.Patch, len(patches))
	for _, p := range patches {
		byLine[p.LineID] = p
	}

	kept := list.Lines[:0]
	for _, l := range list.Lines {
		p, ok := byLine[l.ID]
		switch {
		case !ok:
			kept = append(kept, l)
		case p.Op == reconcile.PatchUpdate:
			kept = append(kept, p.Line)
		}
	}
	list.Lines = kept
	return nil
}

// AppendLines adds lines to the end of a list.
func (h *Household) AppendLines(listID string, lines []reconcile.Line) error {
	list, err := h.List(listID)
	if err != nil {
		return err
	}
	list.Lines = append(list.Lines, lines...)
	return nil
}
