package diffengine

import (
	"fmt"

	"github.com/BayFX/omtsf-sub000/internal/identity"
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
	"github.com/BayFX/omtsf-sub000/internal/unionfind"
)

// matchedNodePair is one matched (A, B) node pair, with the canonical
// identifier strings that caused the match.
type matchedNodePair struct {
	aIdx      int
	bIdx      int
	matchedBy []string
}

// nodeMatchResult is the output of matchNodes.
type nodeMatchResult struct {
	matched    []matchedNodePair
	unmatchedA []int
	unmatchedB []int
	warnings   []string
}

// nodeGroup is the set of A-side and B-side node ordinals sharing one
// union-find representative.
type nodeGroup struct {
	a []int
	b []int
}

// buildIdentifierIndex maps each node's non-internal canonical identifier
// keys to the ordinals of nodes carrying them, within one file's node
// slice.
func buildIdentifierIndex(nodes []omtsf.Node) map[string][]int {
	index := make(map[string][]int)
	for i, n := range nodes {
		for _, id := range n.Identifiers {
			if id.IsInternal() {
				continue
			}
			key := id.CanonicalKey()
			index[key] = append(index[key], i)
		}
	}
	return index
}

// matchNodes matches nodes across two files by shared canonical
// identifiers, using union-find to compute the transitive closure of
// matches and reporting ambiguous groups (spec.md §4.4).
func matchNodes(nodesA, nodesB []omtsf.Node, filter *Filter) nodeMatchResult {
	activeA := make(map[int]bool)
	for i := range nodesA {
		if filter.nodeTypeAllowed(&nodesA[i]) {
			activeA[i] = true
		}
	}
	activeB := make(map[int]bool)
	for i := range nodesB {
		if filter.nodeTypeAllowed(&nodesB[i]) {
			activeB[i] = true
		}
	}

	indexA := buildIdentifierIndex(nodesA)
	indexB := buildIdentifierIndex(nodesB)

	lenA := len(nodesA)
	lenB := len(nodesB)
	uf := unionfind.New(lenA + lenB)

	type pairKey struct{ ai, bi int }
	pairMatchedBy := make(map[pairKey][]string)

	for canonicalKey, aOrdinals := range indexA {
		bOrdinals, ok := indexB[canonicalKey]
		if !ok {
			continue
		}
		for _, ai := range aOrdinals {
			if !activeA[ai] {
				continue
			}
			for _, bi := range bOrdinals {
				if !activeB[bi] {
					continue
				}
				if !nodeIdentifierPairMatches(&nodesA[ai], &nodesB[bi], canonicalKey) {
					continue
				}
				uf.Union(ai, lenA+bi)
				k := pairKey{ai, bi}
				pairMatchedBy[k] = append(pairMatchedBy[k], canonicalKey)
			}
		}
	}

	// Group active nodes by union-find representative.
	groups := make(map[int]*nodeGroup)
	groupOf := func(rep int) *nodeGroup {
		g, ok := groups[rep]
		if !ok {
			g = &nodeGroup{}
			groups[rep] = g
		}
		return g
	}
	for ai := range activeA {
		rep := uf.Find(ai)
		g := groupOf(rep)
		g.a = append(g.a, ai)
	}
	for bi := range activeB {
		rep := uf.Find(lenA + bi)
		g := groupOf(rep)
		g.b = append(g.b, bi)
	}

	result := nodeMatchResult{}
	for _, g := range groups {
		switch {
		case len(g.a) == 0 && len(g.b) == 0:
			// unreachable: groups are only created from active members.
		case len(g.b) == 0:
			result.unmatchedA = append(result.unmatchedA, g.a...)
		case len(g.a) == 0:
			result.unmatchedB = append(result.unmatchedB, g.b...)
		default:
			if len(g.a) > 1 || len(g.b) > 1 {
				result.warnings = append(result.warnings, fmt.Sprintf(
					"Ambiguous match group: A=%v B=%v", nodeIdsOf(nodesA, g.a), nodeIdsOf(nodesB, g.b)))
			}
			for _, ai := range g.a {
				for _, bi := range g.b {
					result.matched = append(result.matched, matchedNodePair{
						aIdx:      ai,
						bIdx:      bi,
						matchedBy: pairMatchedBy[pairKey{ai, bi}],
					})
				}
			}
		}
	}
	return result
}

func nodeIdsOf(nodes []omtsf.Node, indices []int) []string {
	out := make([]string, len(indices))
	for i, idx := range indices {
		out[i] = string(nodes[idx].Id)
	}
	return out
}

// nodeIdentifierPairMatches reports whether nodeA and nodeB share an
// actual matching identifier pair under the given canonical key: some
// identifier on nodeA whose canonical key equals canonicalKey must
// identity-match some identifier on nodeB (checking authority and
// temporal compatibility, not just the canonical string).
func nodeIdentifierPairMatches(nodeA, nodeB *omtsf.Node, canonicalKey string) bool {
	for _, idA := range nodeA.Identifiers {
		if idA.IsInternal() || idA.CanonicalKey() != canonicalKey {
			continue
		}
		for _, idB := range nodeB.Identifiers {
			if identity.IdentifiersMatch(idA, idB) {
				return true
			}
		}
	}
	return false
}

// buildNodeRepMap maps each file's NodeId strings to a representative
// ordinal in the unified [0, lenA+lenB) space: matched pairs share a
// representative, unmatched nodes keep their own. One map is returned per
// file, since NodeId strings are file-local and may collide across files.
func buildNodeRepMap(nodesA, nodesB []omtsf.Node, matched []matchedNodePair) (repA, repB map[string]int) {
	lenA := len(nodesA)
	uf := unionfind.New(lenA + len(nodesB))
	for _, m := range matched {
		uf.Union(m.aIdx, lenA+m.bIdx)
	}

	repA = make(map[string]int, lenA)
	for i, n := range nodesA {
		repA[string(n.Id)] = uf.Find(i)
	}
	repB = make(map[string]int, len(nodesB))
	for i, n := range nodesB {
		repB[string(n.Id)] = uf.Find(lenA + i)
	}
	return repA, repB
}

// edgeKey is the composite bucket key used to group A-edges before
// pairing against B-edges: resolved source/target representative plus
// edge type.
type edgeKey struct {
	srcRep   int
	tgtRep   int
	edgeType string
}

func nodeTypeByID(nodes []omtsf.Node, id omtsf.NodeId) (omtsf.NodeTypeTag, bool) {
	for i := range nodes {
		if nodes[i].Id == id {
			return nodes[i].NodeType, true
		}
	}
	return omtsf.NodeTypeTag{}, false
}

// matchEdges matches edges after node matching is complete: edges pair
// when their endpoints resolve to the same node match group, their type
// agrees, and EdgesMatch accepts the identity-property comparison
// (spec.md §4.4).
func matchEdges(edgesA, edgesB []omtsf.Edge, nodesA, nodesB []omtsf.Node, matchedNodes []matchedNodePair, filter *Filter) (matched [][2]int, unmatchedA, unmatchedB []int) {
	repMapA, repMapB := buildNodeRepMap(nodesA, nodesB, matchedNodes)

	nodeTypeAllowed := func(nodes []omtsf.Node, id omtsf.NodeId) bool {
		if filter == nil || filter.NodeTypes == nil {
			return true
		}
		t, ok := nodeTypeByID(nodes, id)
		if !ok {
			return false
		}
		return filter.NodeTypes[t.String()]
	}

	edgeIsActive := func(e *omtsf.Edge, nodes []omtsf.Node) bool {
		return filter.edgeTypeAllowed(e) && nodeTypeAllowed(nodes, e.Source) && nodeTypeAllowed(nodes, e.Target)
	}

	var activeAEdges, activeBEdges []int
	for i := range edgesA {
		if edgeIsActive(&edgesA[i], nodesA) {
			activeAEdges = append(activeAEdges, i)
		}
	}
	for i := range edgesB {
		if edgeIsActive(&edgesB[i], nodesB) {
			activeBEdges = append(activeBEdges, i)
		}
	}

	resolveRep := func(repMap map[string]int, id omtsf.NodeId) (int, bool) {
		rep, ok := repMap[string(id)]
		return rep, ok
	}

	aBuckets := make(map[edgeKey][]int)
	for _, ai := range activeAEdges {
		e := &edgesA[ai]
		srcRep, ok := resolveRep(repMapA, e.Source)
		if !ok {
			continue
		}
		tgtRep, ok := resolveRep(repMapA, e.Target)
		if !ok {
			continue
		}
		key := edgeKey{srcRep, tgtRep, e.EdgeType.String()}
		aBuckets[key] = append(aBuckets[key], ai)
	}

	matchedA := make(map[int]bool)
	for _, bi := range activeBEdges {
		eb := &edgesB[bi]
		srcRepB, ok := resolveRep(repMapB, eb.Source)
		if !ok {
			unmatchedB = append(unmatchedB, bi)
			continue
		}
		tgtRepB, ok := resolveRep(repMapB, eb.Target)
		if !ok {
			unmatchedB = append(unmatchedB, bi)
			continue
		}
		key := edgeKey{srcRepB, tgtRepB, eb.EdgeType.String()}
		bucket, ok := aBuckets[key]
		if !ok {
			unmatchedB = append(unmatchedB, bi)
			continue
		}

		found := false
		for _, ai := range bucket {
			if matchedA[ai] {
				continue
			}
			ea := &edgesA[ai]
			srcRepA, ok := resolveRep(repMapA, ea.Source)
			if !ok {
				continue
			}
			tgtRepA, ok := resolveRep(repMapA, ea.Target)
			if !ok {
				continue
			}
			if identity.EdgesMatch(srcRepA, tgtRepA, srcRepB, tgtRepB, *ea, *eb) {
				matched = append(matched, [2]int{ai, bi})
				matchedA[ai] = true
				found = true
				break
			}
		}
		if !found {
			unmatchedB = append(unmatchedB, bi)
		}
	}

	for _, ai := range activeAEdges {
		if !matchedA[ai] {
			unmatchedA = append(unmatchedA, ai)
		}
	}
	return matched, unmatchedA, unmatchedB
}
