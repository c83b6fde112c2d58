package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_HasLinkIsOrdered(t *testing.T) {
	c := Collection{Links: []Link{{Source: "a", Target: "b"}}}
	assert.True(t, c.HasLink("a", "b"))
	assert.False(t, c.HasLink("b", "a"))
}

func TestCollection_CloneIsDeep(t *testing.T) {
	c := Collection{RouterID: "r", Nodes: []Node{{MAC: "r"}}}
	cp := c.Clone()
	cp.Nodes[0].MAC = "changed"
	cp.Nodes = append(cp.Nodes, Node{MAC: "x"})

	assert.Equal(t, "r", c.Nodes[0].MAC)
	assert.Len(t, c.Nodes, 1)
	assert.NotNil(t, cp.Links)
}

func TestNewNetworkCollection_SortsWithoutMutating(t *testing.T) {
	in := []Collection{{RouterID: "b"}, {RouterID: "a"}}
	nc := NewNetworkCollection(in)
	assert.Equal(t, "NetworkCollection", nc.Type)
	assert.Equal(t, "a", nc.Collection[0].RouterID)
	assert.Equal(t, "b", in[0].RouterID)
}

func TestPerson_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]Person{
		{MAC: "m1", Vendor: "v", Signal: -50, Distance: 3.5},
		{MAC: "m2", Distance: float32(math.Inf(1))},
		{MAC: "m3", Distance: float32(math.NaN())},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"mac":"m1","vendor":"v","signal":-50,"distance":3.5},
		{"mac":"m2","vendor":"","signal":0,"distance":null},
		{"mac":"m3","vendor":"","signal":0,"distance":null}
	]`, string(data))
}

func TestSnapshot_Collection(t *testing.T) {
	s := Snapshot{Collections: []Collection{{RouterID: "aa"}}}
	_, ok := s.Collection("aa")
	assert.True(t, ok)
	_, ok = s.Collection("bb")
	assert.False(t, ok)
}
