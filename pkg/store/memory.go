package store

import (
	"context"
	"slices"
	"sync"

	"meshconf/pkg/model"
)

// MemoryStore is a simple in-memory Source and Sink, intended for tests and dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	defs    []Definition
	outputs []model.Output
	writes  int
}

func NewMemoryStore(defs ...Definition) *MemoryStore {
	return &MemoryStore{defs: slices.Clone(defs)}
}

// Put adds or replaces a definition, keeping first-insertion order.
func (m *MemoryStore) Put(name, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.defs {
		if m.defs[i].Name == name {
			m.defs[i].Text = text
			return
		}
	}
	m.defs = append(m.defs, Definition{Name: name, Text: text})
}

func (m *MemoryStore) Definitions(_ context.Context) ([]Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.defs), nil
}

// Write replaces the stored outputs with the given batch.
func (m *MemoryStore) Write(_ context.Context, outputs []model.Output) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs = slices.Clone(outputs)
	m.writes++
	return nil
}

// Outputs returns the last written batch.
func (m *MemoryStore) Outputs() []model.Output {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.outputs)
}

// Output looks up a written output by its destination name.
func (m *MemoryStore) Output(name, sep string) (model.Output, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.outputs {
		if o.Name(sep) == name {
			return o, true
		}
	}
	return model.Output{}, false
}

// Writes counts Write calls.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
