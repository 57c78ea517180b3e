package model

import "slices"

// Attribute is a key recognized in a node definition.
type Attribute string

const (
	Address             Attribute = "Address"
	ConnectTo           Attribute = "ConnectTo"
	DefaultRoute        Attribute = "DefaultRoute"
	DNS                 Attribute = "DNS"
	Endpoint            Attribute = "Endpoint"
	ListenPort          Attribute = "ListenPort"
	MTU                 Attribute = "MTU"
	Network             Attribute = "Network"
	PersistentKeepalive Attribute = "PersistentKeepalive"
	PostDown            Attribute = "PostDown"
	PostUp              Attribute = "PostUp"
	PreDown             Attribute = "PreDown"
	PreUp               Attribute = "PreUp"
	PrivateKey          Attribute = "PrivateKey"
	PublicKey           Attribute = "PublicKey"
	SplitFiles          Attribute = "SplitFiles"
	Table               Attribute = "Table"
)

// Vocabulary lists every recognized attribute.
var Vocabulary = []Attribute{
	Address, ConnectTo, DefaultRoute, DNS, Endpoint, ListenPort, MTU, Network,
	PersistentKeepalive, PostDown, PostUp, PreDown, PreUp, PrivateKey, PublicKey,
	SplitFiles, Table,
}

// RequiredAttributes must carry at least one value on every node.
var RequiredAttributes = []Attribute{Address, PublicKey}

// InterfaceExcluded are never rendered into the [Interface] section.
var InterfaceExcluded = []Attribute{
	ConnectTo, DefaultRoute, Endpoint, Network, PublicKey, PersistentKeepalive, SplitFiles,
}

// ParseAttribute looks key up in the vocabulary.
func ParseAttribute(key string) (Attribute, bool) {
	a := Attribute(key)
	if slices.Contains(Vocabulary, a) {
		return a, true
	}
	return "", false
}

// InInterface reports whether the attribute belongs in the [Interface] section.
func (a Attribute) InInterface() bool {
	return !slices.Contains(InterfaceExcluded, a)
}

// Attributes is an ordered multi-valued mapping. Keys iterate in the order
// they were first appended, values in the order they were appended.
type Attributes struct {
	keys   []Attribute
	values map[Attribute][]string
}

// Append adds value to the end of key's value list.
func (a *Attributes) Append(key Attribute, value string) {
	if a.values == nil {
		a.values = make(map[Attribute][]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = append(a.values[key], value)
}

// Keys returns the keys in first-appearance order.
func (a Attributes) Keys() []Attribute {
	return slices.Clone(a.keys)
}

// Values returns a copy of key's values.
func (a Attributes) Values(key Attribute) []string {
	return slices.Clone(a.values[key])
}

// First returns the first value of key.
func (a Attributes) First(key Attribute) (string, bool) {
	v := a.values[key]
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Has reports whether key carries at least one value.
func (a Attributes) Has(key Attribute) bool {
	return len(a.values[key]) > 0
}

// Len returns the number of distinct keys.
func (a Attributes) Len() int {
	return len(a.keys)
}

// NodeRecord is the parsed form of one node definition.
type NodeRecord struct {
	Name       string
	Attributes Attributes
	// ConnectTo is the allow-list of peer names, in file order.
	ConnectTo []string
	// HasConnectTo is set once a ConnectTo line was seen, even if it was blank.
	HasConnectTo bool
	DefaultRoute bool
	SplitFiles   bool
}

// PrivateKey returns the node's private key, if the definition carries one.
func (n NodeRecord) PrivateKey() (string, bool) {
	return n.Attributes.First(PrivateKey)
}

// HasEndpoint reports whether the node is reachable at a known address.
func (n NodeRecord) HasEndpoint() bool {
	return n.Attributes.Has(Endpoint)
}

// Allows reports whether the node's ConnectTo list admits peer.
func (n NodeRecord) Allows(peer string) bool {
	return !n.HasConnectTo || slices.Contains(n.ConnectTo, peer)
}
