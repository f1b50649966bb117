package unionfind_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BayFX/omtsf-sub000/internal/unionfind"
)

func TestUnionFind_SingletonsStartDisjoint(t *testing.T) {
	uf := unionfind.New(5)
	for i := 0; i < 5; i++ {
		require.Equal(t, i, uf.Find(i))
	}
}

func TestUnionFind_UnionMergesSets(t *testing.T) {
	uf := unionfind.New(5)
	uf.Union(0, 1)
	uf.Union(1, 2)
	require.True(t, uf.Connected(0, 2))
	require.False(t, uf.Connected(0, 3))
}

func TestUnionFind_RepeatedUnionIsIdempotent(t *testing.T) {
	// Directed cycle a->b->c->a modeled as repeated unions; must terminate
	// and settle on one representative (spec.md §9 cyclic ownership note).
	uf := unionfind.New(3)
	uf.Union(0, 1)
	uf.Union(1, 2)
	uf.Union(2, 0)
	uf.Union(2, 0)
	rep := uf.Find(0)
	require.Equal(t, rep, uf.Find(1))
	require.Equal(t, rep, uf.Find(2))
}

func TestUnionFind_Groups(t *testing.T) {
	uf := unionfind.New(6)
	uf.Union(0, 1)
	uf.Union(2, 3)
	groups := uf.Groups()
	require.Len(t, groups, 4) // {0,1}, {2,3}, {4}, {5}
}
