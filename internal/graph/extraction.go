package graph

import (
	"github.com/BayFX/omtsf-sub000/internal/errors"
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// InducedSubgraph returns the induced subgraph for the given node ids: the
// listed nodes plus exactly the edges whose source and target are both in
// the set (spec.md §4.8). Returns an ErrorTypeNotFound error if any id is
// unknown to the graph.
func InducedSubgraph(g *Graph, nodeIDs []string) (*omtsf.File, error) {
	indexSet := make(map[int]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		idx, ok := g.NodeIndex(omtsf.NodeId(id))
		if !ok {
			return nil, errors.NotFoundf("node %q not found", id)
		}
		indexSet[idx] = true
	}
	return assembleSubgraph(g, indexSet), nil
}

type bfsItem struct {
	idx, hops int
}

// EgoGraph returns the induced subgraph of every node within radius hops of
// center, following out-edges, in-edges, or both depending on direction
// (spec.md §4.8). radius 0 returns only the center node.
func EgoGraph(g *Graph, center string, radius int, direction Direction) (*omtsf.File, error) {
	centerIdx, ok := g.NodeIndex(omtsf.NodeId(center))
	if !ok {
		return nil, errors.NotFoundf("node %q not found", center)
	}

	visited := map[int]bool{centerIdx: true}
	queue := []bfsItem{{centerIdx, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.hops >= radius {
			continue
		}
		next := cur.hops + 1

		if direction == DirectionForward || direction == DirectionBoth {
			for _, eidx := range g.out[cur.idx] {
				tgt, _ := g.NodeIndex(g.file.Edges[eidx].Target)
				if !visited[tgt] {
					visited[tgt] = true
					queue = append(queue, bfsItem{tgt, next})
				}
			}
		}
		if direction == DirectionBackward || direction == DirectionBoth {
			for _, eidx := range g.in[cur.idx] {
				src, _ := g.NodeIndex(g.file.Edges[eidx].Source)
				if !visited[src] {
					visited[src] = true
					queue = append(queue, bfsItem{src, next})
				}
			}
		}
	}

	return assembleSubgraph(g, visited), nil
}

// SelectorMatchResult carries the indices into the originating File's
// Nodes/Edges slices for elements matched by a SelectorMatch scan.
type SelectorMatchResult struct {
	NodeIndices []int
	EdgeIndices []int
}

// SelectorMatch scans every node and edge in file for a SelectorSet match
// without assembling a subgraph file. Intended for the query command, which
// displays matches without producing a new file (spec.md §4.8).
func SelectorMatch(file *omtsf.File, ss SelectorSet) SelectorMatchResult {
	var result SelectorMatchResult

	if ss.IsEmpty() {
		result.NodeIndices = rangeInts(len(file.Nodes))
		result.EdgeIndices = rangeInts(len(file.Edges))
		return result
	}

	if ss.HasNodeSelectors() {
		for i, n := range file.Nodes {
			if ss.MatchesNode(n) {
				result.NodeIndices = append(result.NodeIndices, i)
			}
		}
	}
	if ss.HasEdgeSelectors() {
		for i, e := range file.Edges {
			if ss.MatchesEdge(e) {
				result.EdgeIndices = append(result.EdgeIndices, i)
			}
		}
	}

	return result
}

func rangeInts(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// SelectorSubgraph runs the full four-phase selector-based extraction
// (spec.md §4.8):
//
//  1. seed scan — matches selectors against every node and edge;
//  2. seed edge resolution — adds each matched edge's endpoints to the seed
//     node set;
//  3. bounded BFS expansion (undirected) for `expand` hops from the seeds;
//  4. induced subgraph assembly.
//
// Returns an ErrorTypeEmptyResult error when phases 1-2 match nothing at all.
func SelectorSubgraph(g *Graph, ss SelectorSet, expand int) (*omtsf.File, error) {
	if ss.IsEmpty() {
		all := make(map[int]bool, len(g.file.Nodes))
		for i := range g.file.Nodes {
			all[i] = true
		}
		return assembleSubgraph(g, all), nil
	}

	seedNodes := make(map[int]bool)
	if ss.HasNodeSelectors() {
		if canUseNodeTypeIndex(ss) {
			for _, nt := range ss.NodeTypes {
				for _, idx := range g.NodesOfType(nt) {
					seedNodes[idx] = true
				}
			}
		} else {
			for i, n := range g.file.Nodes {
				if ss.MatchesNode(n) {
					seedNodes[i] = true
				}
			}
		}
	}

	var seedEdgeEndpoints [][2]omtsf.NodeId
	anyEdgeMatched := false
	if ss.HasEdgeSelectors() {
		if canUseEdgeTypeIndex(ss) {
			for _, et := range ss.EdgeTypes {
				for _, eidx := range g.EdgesOfType(et) {
					anyEdgeMatched = true
					e := g.file.Edges[eidx]
					seedEdgeEndpoints = append(seedEdgeEndpoints, [2]omtsf.NodeId{e.Source, e.Target})
				}
			}
		} else {
			for _, e := range g.file.Edges {
				if ss.MatchesEdge(e) {
					anyEdgeMatched = true
					seedEdgeEndpoints = append(seedEdgeEndpoints, [2]omtsf.NodeId{e.Source, e.Target})
				}
			}
		}
	}

	if len(seedNodes) == 0 && !anyEdgeMatched {
		return nil, errors.EmptyResult("selector matched no nodes or edges")
	}

	for _, pair := range seedEdgeEndpoints {
		if idx, ok := g.NodeIndex(pair[0]); ok {
			seedNodes[idx] = true
		}
		if idx, ok := g.NodeIndex(pair[1]); ok {
			seedNodes[idx] = true
		}
	}

	visited := make(map[int]bool, len(seedNodes))
	queue := make([]bfsItem, 0, len(seedNodes))
	for idx := range seedNodes {
		visited[idx] = true
		queue = append(queue, bfsItem{idx, 0})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.hops >= expand {
			continue
		}
		next := cur.hops + 1

		for _, eidx := range g.out[cur.idx] {
			tgt, _ := g.NodeIndex(g.file.Edges[eidx].Target)
			if !visited[tgt] {
				visited[tgt] = true
				queue = append(queue, bfsItem{tgt, next})
			}
		}
		for _, eidx := range g.in[cur.idx] {
			src, _ := g.NodeIndex(g.file.Edges[eidx].Source)
			if !visited[src] {
				visited[src] = true
				queue = append(queue, bfsItem{src, next})
			}
		}
	}

	return assembleSubgraph(g, visited), nil
}

// assembleSubgraph builds the output File from a set of included node
// indices: nodes in original file order, edges whose both endpoints are
// included, and reporting_entity preserved only if its node survived.
func assembleSubgraph(g *Graph, indexSet map[int]bool) *omtsf.File {
	nodes := make([]omtsf.Node, 0, len(indexSet))
	for i, n := range g.file.Nodes {
		if indexSet[i] {
			nodes = append(nodes, n)
		}
	}

	edges := make([]omtsf.Edge, 0)
	for _, e := range g.file.Edges {
		srcIdx, srcOk := g.NodeIndex(e.Source)
		tgtIdx, tgtOk := g.NodeIndex(e.Target)
		if srcOk && tgtOk && indexSet[srcIdx] && indexSet[tgtIdx] {
			edges = append(edges, e)
		}
	}

	var reportingEntity *omtsf.NodeId
	if g.file.ReportingEntity != nil {
		if idx, ok := g.NodeIndex(*g.file.ReportingEntity); ok && indexSet[idx] {
			re := *g.file.ReportingEntity
			reportingEntity = &re
		}
	}

	return &omtsf.File{
		OmtsfVersion:        g.file.OmtsfVersion,
		SnapshotDate:        g.file.SnapshotDate,
		FileSalt:            g.file.FileSalt,
		DisclosureScope:     g.file.DisclosureScope,
		PreviousSnapshotRef: g.file.PreviousSnapshotRef,
		SnapshotSequence:    g.file.SnapshotSequence,
		ReportingEntity:     reportingEntity,
		Nodes:               nodes,
		Edges:               edges,
		Extra:               g.file.Extra,
	}
}
