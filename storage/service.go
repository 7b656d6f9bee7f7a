package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"pantrysync/ingredient"
	"pantrysync/reconcile"
)

// Service runs syncs and plan imports against a snapshot State. Each call
// loads the snapshot, works on it and saves it back; calls are serialized
// within one Service.
type Service struct {
	mu    sync.Mutex
	state State
	vocab ingredient.Vocabulary
	opts  []reconcile.Option
}

// NewService creates a service over state. opts configure the sync engine.
func NewService(state State, vocab ingredient.Vocabulary, opts ...reconcile.Option) *Service {
	return &Service{state: state, vocab: vocab, opts: opts}
}

// SyncList reconciles one list against its pantry and saves the changes.
func (s *Service) SyncList(ctx context.Context, listID string) (reconcile.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.load(ctx)
	if err != nil {
		return reconcile.Outcome{}, err
	}
	list, err := h.List(listID)
	if err != nil {
		return reconcile.Outcome{}, err
	}

	out, err := reconcile.NewEngine(h, s.opts...).Sync(ctx, list.List, list.Lines)
	if err != nil {
		return reconcile.Outcome{}, err
	}
	if len(out.Patches) == 0 {
		return out, nil
	}

	if err := h.Apply(listID, out.Patches); err != nil {
		return reconcile.Outcome{}, err
	}
	if err := s.save(ctx, h); err != nil {
		return reconcile.Outcome{}, err
	}
	slog.Info("STORAGE: Saved sync", "list_id", listID, "patches", len(out.Patches))
	return out, nil
}

// PlanToList aggregates sources into new lines on a list. Ingredients created
// while resolving names are saved with the list.
func (s *Service) PlanToList(ctx context.Context, listID string, sources []reconcile.Source) (reconcile.Aggregate, []reconcile.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.load(ctx)
	if err != nil {
		return reconcile.Aggregate{}, nil, err
	}
	if _, err := h.List(listID); err != nil {
		return reconcile.Aggregate{}, nil, err
	}

	agg, err := reconcile.NewAggregator(h, s.vocab).Aggregate(ctx, sources)
	if err != nil {
		return reconcile.Aggregate{}, nil, err
	}
	lines := agg.Lines()
	if err := h.AppendLines(listID, lines); err != nil {
		return reconcile.Aggregate{}, nil, err
	}
	if err := s.save(ctx, h); err != nil {
		return reconcile.Aggregate{}, nil, err
	}
	return agg, lines, nil
}

// Resolve maps a free-text name to a known ingredient.
func (s *Service) Resolve(ctx context.Context, name string) (ingredient.Match, bool, error) {
	h, err := s.load(ctx)
	if err != nil {
		return ingredient.Match{}, false, err
	}
	return ingredient.NewResolver(h, s.vocab).Resolve(ctx, name)
}

func (s *Service) load(ctx context.Context) (*Household, error) {
	data, err := s.state.Load(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snap, err := ParseSnapshot(data)
	if err != nil {
		return nil, err
	}
	return NewHousehold(snap, s.vocab), nil
}

func (s *Service) save(ctx context.Context, h *Household) error {
	data, err := json.MarshalIndent(h.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.state.Save(ctx, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
