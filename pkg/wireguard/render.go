package wireguard

import (
	"fmt"
	"strings"

	"meshconf/pkg/model"
)

// PrivateKeyPlaceholder stands in for a private key the definition does not carry.
const PrivateKeyPlaceholder = ">>>REPLACE WITH PRIVATE KEY<<<"

// RenderInterface produces the [Interface] section of a wg-quick config. Every
// attribute outside model.InterfaceExcluded is emitted once per value, keys in
// the order the definition introduced them.
func RenderInterface(node model.NodeRecord) string {
	var b strings.Builder
	b.WriteString("[Interface]\n")
	if _, ok := node.PrivateKey(); !ok {
		fmt.Fprintf(&b, "%s = %s\n", model.PrivateKey, PrivateKeyPlaceholder)
	}
	for _, key := range node.Attributes.Keys() {
		if !key.InInterface() {
			continue
		}
		for _, v := range node.Attributes.Values(key) {
			fmt.Fprintf(&b, "%s = %s\n", key, v)
		}
	}
	return b.String()
}

// RenderPeer produces one [Peer] section, preceded by a blank line and a
// comment naming the peer.
func RenderPeer(p model.Peer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n# %s\n", p.Name)
	b.WriteString("[Peer]\n")
	fmt.Fprintf(&b, "PublicKey = %s\n", p.PublicKey)
	fmt.Fprintf(&b, "AllowedIPs = %s\n", strings.Join(p.AllowedIPs, ", "))
	if p.HasEndpoint {
		fmt.Fprintf(&b, "Endpoint = %s\n", p.Endpoint)
	}
	if p.HasKeepalive {
		fmt.Fprintf(&b, "PersistentKeepalive = %s\n", p.Keepalive)
	}
	return b.String()
}

// Render turns a plan into output files. A node with SplitFiles gets one file
// per peer holding the interface and that peer's section only; a split node
// without peers gets no file. Any other node gets a single file with all peers.
func Render(plan model.Plan) []model.Output {
	iface := RenderInterface(plan.Node)
	peers := plan.PeerSections()
	if plan.Node.SplitFiles {
		out := make([]model.Output, 0, len(peers))
		for _, p := range peers {
			out = append(out, model.Output{Node: plan.Node.Name, Peer: p.Name, Text: iface + RenderPeer(p)})
		}
		return out
	}
	var b strings.Builder
	b.WriteString(iface)
	for _, p := range peers {
		b.WriteString(RenderPeer(p))
	}
	return []model.Output{{Node: plan.Node.Name, Text: b.String()}}
}
