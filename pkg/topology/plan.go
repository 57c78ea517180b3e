package topology

import (
	"fmt"

	"meshconf/pkg/model"
	"meshconf/pkg/registry"
)

// ShouldPeer reports whether a and b become peers. Each node's ConnectTo list,
// when present, must admit the other, and at least one side needs an Endpoint
// for the tunnel to be established. The rule is symmetric in a and b.
func ShouldPeer(a, b model.NodeRecord) bool {
	if a.Name == b.Name {
		return false
	}
	return a.Allows(b.Name) && b.Allows(a.Name) && (a.HasEndpoint() || b.HasEndpoint())
}

// Resolve returns the peers of the named node in registry order.
func Resolve(reg *registry.Registry, name string) (model.Plan, error) {
	node, ok := reg.Get(name)
	if !ok {
		return model.Plan{}, fmt.Errorf("unknown node %q", name)
	}
	return planFor(reg, node), nil
}

// BuildPlans resolves every node of the registry, in registry order.
func BuildPlans(reg *registry.Registry) []model.Plan {
	nodes := reg.Nodes()
	plans := make([]model.Plan, 0, len(nodes))
	for _, n := range nodes {
		plans = append(plans, planFor(reg, n))
	}
	return plans
}

func planFor(reg *registry.Registry, node model.NodeRecord) model.Plan {
	plan := model.Plan{Node: node}
	for _, candidate := range reg.Nodes() {
		if ShouldPeer(node, candidate) {
			plan.Peers = append(plan.Peers, candidate)
		}
	}
	return plan
}

// Edge is an unordered peer pair, A before B in registry order.
type Edge struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Edges lists every peer pair of the mesh once.
func Edges(reg *registry.Registry) []Edge {
	nodes := reg.Nodes()
	var out []Edge
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if ShouldPeer(nodes[i], nodes[j]) {
				out = append(out, Edge{A: nodes[i].Name, B: nodes[j].Name})
			}
		}
	}
	return out
}
