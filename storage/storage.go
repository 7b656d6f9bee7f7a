// Package storage persists a household snapshot (ingredients, people, lists
// and pantries) as a single JSON document and runs syncs against it.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a State that holds no document yet.
var ErrNotFound = errors.New("state not found")

// State loads and saves the raw snapshot document.
type State interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// MemoryState is an in-memory State for tests.
type MemoryState struct {
	mu      sync.Mutex
	data    []byte
	err     error
	saves   int
	saveErr error
}

func NewMemoryState(data []byte) *MemoryState {
	return &MemoryState{data: data}
}

// NewMemoryStateWithError returns a state whose Load always fails with err.
func NewMemoryStateWithError(err error) *MemoryState {
	return &MemoryState{err: err}
}

func (m *MemoryState) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.data == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryState) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (m *MemoryState) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailSaves makes every following Save return err.
func (m *MemoryState) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}
