// Package registry holds the validated set of node records for one run.
package registry

import (
	"slices"

	"meshconf/pkg/definition"
	"meshconf/pkg/model"
	"meshconf/pkg/store"
)

// Registry maps node names to records and remembers definition order. It is
// read-only once Build returns.
type Registry struct {
	order []string
	nodes map[string]model.NodeRecord
}

// Build parses every definition and validates the whole set. All diagnostics
// from all nodes are returned; when any are present the registry must not be
// used to produce output.
func Build(defs []store.Definition) (*Registry, definition.Diagnostics) {
	r := &Registry{nodes: make(map[string]model.NodeRecord, len(defs))}
	var diags definition.Diagnostics
	for _, def := range defs {
		node, d := definition.Parse(def.Name, def.Text)
		diags = append(diags, d...)
		if _, dup := r.nodes[def.Name]; dup {
			diags = append(diags, definition.Duplicate(def.Name))
			continue
		}
		r.order = append(r.order, def.Name)
		r.nodes[def.Name] = node
	}
	diags = append(diags, r.validate()...)
	return r, diags
}

// validate checks the attributes every node must carry.
func (r *Registry) validate() definition.Diagnostics {
	var diags definition.Diagnostics
	for _, name := range r.order {
		node := r.nodes[name]
		for _, key := range model.RequiredAttributes {
			if !node.Attributes.Has(key) {
				diags = append(diags, definition.Missing(name, key))
			}
		}
	}
	return diags
}

// Names returns node names in registry order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Get returns the record for name.
func (r *Registry) Get(name string) (model.NodeRecord, bool) {
	n, ok := r.nodes[name]
	return n, ok
}

// Nodes returns all records in registry order.
func (r *Registry) Nodes() []model.NodeRecord {
	out := make([]model.NodeRecord, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.nodes[name])
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }
