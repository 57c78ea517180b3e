package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshconf/pkg/definition"
	"meshconf/pkg/model"
	"meshconf/pkg/store"
)

func TestBuildKeepsDefinitionOrder(t *testing.T) {
	reg, diags := Build([]store.Definition{
		{Name: "zulu", Text: "Address = 10.0.0.3/32\nPublicKey = pkZ\n"},
		{Name: "alpha", Text: "Address = 10.0.0.1/32\nPublicKey = pkA\n"},
	})
	require.Empty(t, diags)
	assert.Equal(t, []string{"zulu", "alpha"}, reg.Names())
	assert.Equal(t, 2, reg.Len())

	n, ok := reg.Get("alpha")
	require.True(t, ok)
	pk, _ := n.Attributes.First(model.PublicKey)
	assert.Equal(t, "pkA", pk)

	_, ok = reg.Get("missing")
	assert.False(t, ok)

	nodes := reg.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "zulu", nodes[0].Name)
}

func TestBuildReportsMissingRequired(t *testing.T) {
	_, diags := Build([]store.Definition{
		{Name: "a", Text: "Address = 10.0.0.1/32\n"},
		{Name: "b", Text: "PublicKey = pkB\n"},
		{Name: "c", Text: "# nothing\n"},
		{Name: "d", Text: "Address = 10.0.0.4/32\nPublicKey = pkD\n"},
	})
	assert.Equal(t, definition.Diagnostics{
		definition.Missing("a", model.PublicKey),
		definition.Missing("b", model.Address),
		definition.Missing("c", model.Address),
		definition.Missing("c", model.PublicKey),
	}, diags)
}

func TestBuildCollectsAcrossNodes(t *testing.T) {
	_, diags := Build([]store.Definition{
		{Name: "a", Text: "Address = 10.0.0.1/32\nPublicKey = pkA\nFoo = bar\n"},
		{Name: "b", Text: "Address = 10.0.0.2/32\nBar = baz\n"},
	})
	require.Len(t, diags, 3)
	assert.ErrorIs(t, diags[0], definition.ErrUnrecognizedAttribute)
	assert.Equal(t, "Foo", diags[0].Key)
	assert.Equal(t, "Bar", diags[1].Key)
	assert.Equal(t, definition.Missing("b", model.PublicKey), diags[2])
}

func TestBuildRejectsDuplicateNames(t *testing.T) {
	reg, diags := Build([]store.Definition{
		{Name: "a", Text: "Address = 10.0.0.1/32\nPublicKey = pkA\n"},
		{Name: "a", Text: "Address = 10.0.0.9/32\nPublicKey = pkA2\n"},
	})
	require.Len(t, diags, 1)
	assert.ErrorIs(t, diags[0], definition.ErrDuplicateNode)
	assert.Equal(t, 1, reg.Len())
}

func TestBuildEmpty(t *testing.T) {
	reg, diags := Build(nil)
	assert.Empty(t, diags)
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.Nodes())
}
