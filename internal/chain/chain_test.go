package chain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/leftmike/rowset/internal/chain"
)

func TestAppendAndWalkOrder(t *testing.T) {
	var c chain.Chain
	c.Append(&chain.Node{Timestamp: 1, Kind: chain.Update, Payload: []byte("a")})
	c.Append(&chain.Node{Timestamp: 2, Kind: chain.Update, Payload: []byte("b")})
	c.Append(&chain.Node{Timestamp: 3, Kind: chain.Delete})

	var got []int64
	c.Walk(func(n *chain.Node) bool {
		got = append(got, n.Timestamp)
		return true
	})
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestLastReflectsMostRecentAppend(t *testing.T) {
	var c chain.Chain
	assert.Nil(t, c.Last())

	c.Append(&chain.Node{Timestamp: 1, Kind: chain.Update})
	assert.Equal(t, chain.Update, c.Last().Kind)

	c.Append(&chain.Node{Timestamp: 2, Kind: chain.Delete})
	assert.Equal(t, chain.Delete, c.Last().Kind)

	c.Append(&chain.Node{Timestamp: 3, Kind: chain.Reinsert})
	assert.Equal(t, chain.Reinsert, c.Last().Kind)
}

func TestWalkStopsEarly(t *testing.T) {
	var c chain.Chain
	for i := int64(1); i <= 5; i++ {
		c.Append(&chain.Node{Timestamp: i, Kind: chain.Update})
	}

	var got []int64
	c.Walk(func(n *chain.Node) bool {
		got = append(got, n.Timestamp)
		return n.Timestamp < 3
	})
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestConcurrentAppendPreservesEveryNode(t *testing.T) {
	var c chain.Chain
	const n = 500

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			c.Append(&chain.Node{Timestamp: int64(i), Kind: chain.Update})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	count := 0
	seen := make(map[int64]bool)
	c.Walk(func(node *chain.Node) bool {
		count++
		seen[node.Timestamp] = true
		return true
	})
	assert.Equal(t, n, count)
	assert.Len(t, seen, n)
}
