package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAttribute(t *testing.T) {
	for _, a := range Vocabulary {
		got, ok := ParseAttribute(string(a))
		assert.True(t, ok, a)
		assert.Equal(t, a, got)
	}
	_, ok := ParseAttribute("publickey")
	assert.False(t, ok, "keys are case sensitive")
	_, ok = ParseAttribute("AllowedIPs")
	assert.False(t, ok)
}

func TestAttributesOrder(t *testing.T) {
	var a Attributes
	a.Append(MTU, "1420")
	a.Append(Address, "10.0.0.1/32")
	a.Append(MTU, "1380")

	assert.Equal(t, []Attribute{MTU, Address}, a.Keys())
	assert.Equal(t, []string{"1420", "1380"}, a.Values(MTU))
	first, ok := a.First(MTU)
	assert.True(t, ok)
	assert.Equal(t, "1420", first)
	_, ok = a.First(DNS)
	assert.False(t, ok)
	assert.Nil(t, a.Values(DNS))

	// callers cannot reach the stored slices
	vals := a.Values(MTU)
	vals[0] = "0"
	assert.Equal(t, "1420", a.Values(MTU)[0])
}

func TestAllows(t *testing.T) {
	open := NodeRecord{Name: "a"}
	assert.True(t, open.Allows("anyone"))

	restricted := NodeRecord{Name: "b", HasConnectTo: true, ConnectTo: []string{"c", "d"}}
	assert.True(t, restricted.Allows("d"))
	assert.False(t, restricted.Allows("a"))

	blank := NodeRecord{Name: "e", HasConnectTo: true, ConnectTo: []string{""}}
	assert.False(t, blank.Allows("a"))
}

func TestInInterface(t *testing.T) {
	assert.True(t, Address.InInterface())
	assert.True(t, PrivateKey.InInterface())
	assert.True(t, Table.InInterface())
	for _, a := range InterfaceExcluded {
		assert.False(t, a.InInterface(), a)
	}
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "a", Output{Node: "a"}.Name(":"))
	assert.Equal(t, "a:b", Output{Node: "a", Peer: "b"}.Name(":"))
	assert.Equal(t, "a--b", Output{Node: "a", Peer: "b"}.Name("--"))
	assert.Len(t, Output{Text: "x"}.Digest(), 64)
	assert.NotEqual(t, Output{Text: "x"}.Digest(), Output{Text: "y"}.Digest())
}
