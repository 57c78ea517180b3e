package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func record(name string, kv ...string) NodeRecord {
	n := NodeRecord{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attributes.Append(Attribute(kv[i]), kv[i+1])
	}
	return n
}

func TestPeerFor(t *testing.T) {
	local := record("a", "Address", "10.0.0.1/32", "PersistentKeepalive", "25", "PersistentKeepalive", "30")
	remote := record("b",
		"Address", "10.0.0.2/32", "Address", "fd00::2/128",
		"PublicKey", "pkB", "Network", "192.168.2.0/24",
		"Endpoint", "b.example.com:51820", "PersistentKeepalive", "99")

	p := PeerFor(local, remote)
	assert.Equal(t, Peer{
		Name:         "b",
		PublicKey:    "pkB",
		AllowedIPs:   []string{"10.0.0.2/32", "192.168.2.0/24"},
		Endpoint:     "b.example.com:51820",
		Keepalive:    "25",
		HasEndpoint:  true,
		HasKeepalive: true,
	}, p)
}

func TestPeerForDefaultRoute(t *testing.T) {
	local := record("a", "Address", "10.0.0.1/32")
	local.DefaultRoute = true
	remote := record("b", "Address", "10.0.0.2/32", "PublicKey", "pkB")

	p := PeerFor(local, remote)
	assert.Equal(t, []string{"10.0.0.2/32", "0.0.0.0/1", "128.0.0.0/1", "0::/1", "8000::/1"}, p.AllowedIPs)
	assert.False(t, p.HasEndpoint)
	assert.False(t, p.HasKeepalive)

	// the remote's DefaultRoute does not matter
	remote.DefaultRoute = true
	local.DefaultRoute = false
	assert.Equal(t, []string{"10.0.0.2/32"}, PeerFor(local, remote).AllowedIPs)
}
