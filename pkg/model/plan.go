package model

// Plan is the resolved peer list for one node, in registry order.
type Plan struct {
	Node  NodeRecord
	Peers []NodeRecord
}

// PeerSections materializes every peer of the plan.
func (p Plan) PeerSections() []Peer {
	out := make([]Peer, 0, len(p.Peers))
	for _, remote := range p.Peers {
		out = append(out, PeerFor(p.Node, remote))
	}
	return out
}
