package diffengine

import (
	"fmt"

	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// Diff compares two parsed OMTSF files and describes the differences. File
// a is the baseline ("before"); file b is the target ("after"). Additions
// are elements present in b but not a; removals are elements present in a
// but not b (spec.md §4.4).
func Diff(a, b *omtsf.File) *Result {
	return DiffFiltered(a, b, nil)
}

// DiffFiltered compares two parsed OMTSF files, optionally restricting
// which nodes/edges are compared and which property fields are considered.
//
// Algorithm:
//  1. Match nodes across files by shared canonical identifiers, using
//     union-find to compute the transitive closure and flag ambiguous
//     groups.
//  2. Match edges by resolved endpoints, type, and identity properties.
//  3. Compare the scalar properties, identifiers, and labels of every
//     matched pair, classifying it as modified or unchanged.
func DiffFiltered(a, b *omtsf.File, filter *Filter) *Result {
	var warnings []string
	ignore := filter.ignoreSet()

	if a.OmtsfVersion != b.OmtsfVersion {
		warnings = append(warnings, fmt.Sprintf("Version mismatch: A has %s, B has %s", a.OmtsfVersion, b.OmtsfVersion))
	}

	nodeMatch := matchNodes(a.Nodes, b.Nodes, filter)
	warnings = append(warnings, nodeMatch.warnings...)

	nodesDiff := NodesDiff{}
	for _, ai := range nodeMatch.unmatchedA {
		nodesDiff.Removed = append(nodesDiff.Removed, nodeRef(&a.Nodes[ai]))
	}
	for _, bi := range nodeMatch.unmatchedB {
		nodesDiff.Added = append(nodesDiff.Added, nodeRef(&b.Nodes[bi]))
	}
	for _, pair := range nodeMatch.matched {
		nodeA := &a.Nodes[pair.aIdx]
		nodeB := &b.Nodes[pair.bIdx]

		propertyChanges := compareNodeProperties(nodeA, nodeB, ignore)
		identifierChanges := compareIdentifiers(nodeA.Identifiers, nodeB.Identifiers)
		labelChanges := compareLabels(nodeA.Labels, nodeB.Labels)

		nd := NodeDiff{
			IdA:               string(nodeA.Id),
			IdB:               string(nodeB.Id),
			NodeType:          nodeA.NodeType.String(),
			MatchedBy:         pair.matchedBy,
			PropertyChanges:   propertyChanges,
			IdentifierChanges: identifierChanges,
			LabelChanges:      labelChanges,
		}
		if nd.isModified() {
			nodesDiff.Modified = append(nodesDiff.Modified, nd)
		} else {
			nodesDiff.Unchanged = append(nodesDiff.Unchanged, nd)
		}
	}

	matchedEdges, unmatchedAEdges, unmatchedBEdges := matchEdges(a.Edges, b.Edges, a.Nodes, b.Nodes, nodeMatch.matched, filter)

	edgesDiff := EdgesDiff{}
	for _, ai := range unmatchedAEdges {
		edgesDiff.Removed = append(edgesDiff.Removed, edgeRef(&a.Edges[ai]))
	}
	for _, bi := range unmatchedBEdges {
		edgesDiff.Added = append(edgesDiff.Added, edgeRef(&b.Edges[bi]))
	}
	for _, pair := range matchedEdges {
		edgeA := &a.Edges[pair[0]]
		edgeB := &b.Edges[pair[1]]

		propertyChanges := compareEdgeProps(&edgeA.Properties, &edgeB.Properties, ignore)
		identifierChanges := compareIdentifiers(edgeA.Identifiers, edgeB.Identifiers)
		labelChanges := compareLabels(edgeA.Properties.Labels, edgeB.Properties.Labels)

		ed := EdgeDiff{
			IdA:               string(edgeA.Id),
			IdB:               string(edgeB.Id),
			EdgeType:          edgeA.EdgeType.String(),
			PropertyChanges:   propertyChanges,
			IdentifierChanges: identifierChanges,
			LabelChanges:      labelChanges,
		}
		if ed.isModified() {
			edgesDiff.Modified = append(edgesDiff.Modified, ed)
		} else {
			edgesDiff.Unchanged = append(edgesDiff.Unchanged, ed)
		}
	}

	return &Result{Nodes: nodesDiff, Edges: edgesDiff, Warnings: warnings}
}
