// Package graph builds an in-memory adjacency index over an omtsf.File and
// implements the subgraph extraction and selector-matching operations used
// by the query pipeline: induced subgraphs, ego-graphs, and selector-driven
// extraction (spec.md §4.8).
package graph

import (
	"github.com/BayFX/omtsf-sub000/internal/errors"
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// Direction controls which edges EgoGraph follows when expanding a
// neighbourhood.
type Direction int

const (
	DirectionForward Direction = iota
	DirectionBackward
	DirectionBoth
)

// Graph is an adjacency index built once from a File. Node and edge
// "graph-local" indices are simply their positions in file.Nodes/file.Edges;
// unlike the petgraph-backed original, Go slice position already is a
// stable node handle, so no separate node-index/data-index indirection is
// needed.
//
// Edges whose source or target does not resolve to a node in the file are
// omitted from the adjacency lists (dangling references are an L1-GDM
// validation concern, not a graph-construction error).
type Graph struct {
	file *omtsf.File

	nodeIndex map[omtsf.NodeId]int
	out       [][]int // out[i]: indices into file.Edges whose source is node i
	in        [][]int // in[i]: indices into file.Edges whose target is node i

	nodesOfType map[omtsf.NodeTypeTag][]int
	edgesOfType map[omtsf.EdgeTypeTag][]int
}

// Build constructs a Graph from file. Returns an error if file contains
// duplicate node ids, since that would make the adjacency index ambiguous;
// GdmRule01 reports this condition as a validation diagnostic for normal
// pipeline use, so this path is only reached when a caller bypasses
// validation entirely.
func Build(file *omtsf.File) (*Graph, error) {
	g := &Graph{
		file:        file,
		nodeIndex:   make(map[omtsf.NodeId]int, len(file.Nodes)),
		out:         make([][]int, len(file.Nodes)),
		in:          make([][]int, len(file.Nodes)),
		nodesOfType: make(map[omtsf.NodeTypeTag][]int),
		edgesOfType: make(map[omtsf.EdgeTypeTag][]int),
	}

	for i, n := range file.Nodes {
		if _, dup := g.nodeIndex[n.Id]; dup {
			return nil, errors.Internalf("duplicate node id %q while building graph", n.Id)
		}
		g.nodeIndex[n.Id] = i
		g.nodesOfType[n.NodeType] = append(g.nodesOfType[n.NodeType], i)
	}

	for i, e := range file.Edges {
		srcIdx, srcOk := g.nodeIndex[e.Source]
		tgtIdx, tgtOk := g.nodeIndex[e.Target]
		if !srcOk || !tgtOk {
			continue
		}
		g.out[srcIdx] = append(g.out[srcIdx], i)
		g.in[tgtIdx] = append(g.in[tgtIdx], i)
		g.edgesOfType[e.EdgeType] = append(g.edgesOfType[e.EdgeType], i)
	}

	return g, nil
}

// File returns the File this graph was built from.
func (g *Graph) File() *omtsf.File { return g.file }

// NodeIndex returns the slice index of the node with the given id.
func (g *Graph) NodeIndex(id omtsf.NodeId) (int, bool) {
	idx, ok := g.nodeIndex[id]
	return idx, ok
}

// NodesOfType returns the indices of all nodes carrying the given type tag.
func (g *Graph) NodesOfType(t omtsf.NodeTypeTag) []int { return g.nodesOfType[t] }

// EdgesOfType returns the indices of all edges carrying the given type tag.
func (g *Graph) EdgesOfType(t omtsf.EdgeTypeTag) []int { return g.edgesOfType[t] }
