package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Output is one rendered configuration file.
type Output struct {
	Node string `json:"node"`
	Peer string `json:"peer,omitempty"` // set only for split files
	Text string `json:"text"`
}

// Name is the destination identifier: the node name, or node and peer joined
// by sep for split files.
func (o Output) Name(sep string) string {
	if o.Peer == "" {
		return o.Node
	}
	return o.Node + sep + o.Peer
}

// Digest is the hex SHA-256 of the rendered text.
func (o Output) Digest() string {
	sum := sha256.Sum256([]byte(o.Text))
	return hex.EncodeToString(sum[:])
}
