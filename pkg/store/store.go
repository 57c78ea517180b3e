package store

import (
	"context"

	"meshconf/pkg/model"
)

// Definition is the raw text of one node definition and the node name
// derived from where it came from.
type Definition struct {
	Name string
	Text string
}

// Source enumerates node definitions. Names must be unique and the returned
// order is the registry order.
type Source interface {
	Definitions(ctx context.Context) ([]Definition, error)
}

// Sink persists rendered outputs. It receives the complete batch of a
// validated run in one call.
type Sink interface {
	Write(ctx context.Context, outputs []model.Output) error
}

// NewMemory is a helper to construct the in-memory implementation without importing it directly.
func NewMemory(defs ...Definition) *MemoryStore {
	return NewMemoryStore(defs...)
}
