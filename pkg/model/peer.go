package model

// DefaultRouteAllowedIPs covers the whole IPv4 and IPv6 space in halves so the
// tunnel wins over an existing default route without replacing it.
var DefaultRouteAllowedIPs = []string{"0.0.0.0/1", "128.0.0.0/1", "0::/1", "8000::/1"}

// Peer describes one [Peer] section as seen from the node being configured.
type Peer struct {
	Name       string   `json:"name"`
	PublicKey  string   `json:"publicKey"`
	AllowedIPs []string `json:"allowedIPs"`
	Endpoint   string   `json:"endpoint,omitempty"`
	Keepalive  string   `json:"keepalive,omitempty"` // taken from the local node, not the peer

	// A definition may carry an empty value ("Endpoint =") which still counts.
	HasEndpoint  bool `json:"-"`
	HasKeepalive bool `json:"-"`
}

// PeerFor materializes the [Peer] section that node renders for remote.
// Both records are expected to have passed registry validation.
func PeerFor(node, remote NodeRecord) Peer {
	p := Peer{Name: remote.Name}
	p.PublicKey, _ = remote.Attributes.First(PublicKey)
	addr, _ := remote.Attributes.First(Address)
	p.AllowedIPs = append(p.AllowedIPs, addr)
	if network, ok := remote.Attributes.First(Network); ok {
		p.AllowedIPs = append(p.AllowedIPs, network)
	}
	if node.DefaultRoute {
		p.AllowedIPs = append(p.AllowedIPs, DefaultRouteAllowedIPs...)
	}
	p.Endpoint, p.HasEndpoint = remote.Attributes.First(Endpoint)
	p.Keepalive, p.HasKeepalive = node.Attributes.First(PersistentKeepalive)
	return p
}
