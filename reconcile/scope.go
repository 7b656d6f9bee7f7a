package reconcile

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrListNotFound is returned by stores when a list id does not exist.
	ErrListNotFound = errors.New("list not found")
	// ErrUnownedList is returned for a list with neither owner nor family.
	ErrUnownedList = errors.New("list has neither owner nor family")
)

// List identifies a shopping list and who it belongs to.
type List struct {
	ID       string `json:"id"`
	OwnerID  string `json:"owner_id,omitempty"`
	FamilyID string `json:"family_id,omitempty"`
}

type ScopeKind string

const (
	ScopePersonal ScopeKind = "personal"
	ScopeFamily   ScopeKind = "family"
)

// Scope names the pantry a list is compared against.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id"`
}

func (s Scope) String() string { return string(s.Kind) + ":" + s.ID }

// FamilyDirectory looks up family membership.
type FamilyDirectory interface {
	FamilyOf(ctx context.Context, userID string) (familyID string, ok bool, err error)
}

// ResolveScope picks the pantry for a list: the list's family when it has
// one, else the owner's family, else the owner's personal pantry.
func ResolveScope(ctx context.Context, dir FamilyDirectory, list List) (Scope, error) {
	if list.FamilyID != "" {
		return Scope{Kind: ScopeFamily, ID: list.FamilyID}, nil
	}
	if list.OwnerID == "" {
		return Scope{}, fmt.Errorf("list %q: %w", list.ID, ErrUnownedList)
	}

	familyID, ok, err := dir.FamilyOf(ctx, list.OwnerID)
	if err != nil {
		return Scope{}, fmt.Errorf("family lookup for %q: %w", list.OwnerID, err)
	}
	if ok && familyID != "" {
		return Scope{Kind: ScopeFamily, ID: familyID}, nil
	}
	return Scope{Kind: ScopePersonal, ID: list.OwnerID}, nil
}
