package diffengine_test

import (
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

const saltA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
const saltB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

func makeFileA(nodes []omtsf.Node, edges []omtsf.Edge) *omtsf.File {
	d, _ := omtsf.NewCalendarDate("2026-02-20")
	return &omtsf.File{
		OmtsfVersion: "1.0.0",
		SnapshotDate: d,
		FileSalt:     omtsf.FileSalt(saltA),
		Nodes:        nodes,
		Edges:        edges,
	}
}

func makeFileB(nodes []omtsf.Node, edges []omtsf.Edge) *omtsf.File {
	f := makeFileA(nodes, edges)
	f.FileSalt = omtsf.FileSalt(saltB)
	return f
}

func orgNode(id string) omtsf.Node {
	name := id
	return omtsf.Node{
		Id:       omtsf.NodeId(id),
		NodeType: omtsf.KnownNodeType(omtsf.NodeTypeOrganization),
		Name:     &name,
	}
}

func withLEI(n omtsf.Node, lei string) omtsf.Node {
	n.Identifiers = append(append([]omtsf.Identifier{}, n.Identifiers...), omtsf.Identifier{Scheme: "lei", Value: lei})
	return n
}

func withDUNS(n omtsf.Node, duns string) omtsf.Node {
	n.Identifiers = append(append([]omtsf.Identifier{}, n.Identifiers...), omtsf.Identifier{Scheme: "duns", Value: duns})
	return n
}

func withInternal(n omtsf.Node, value string) omtsf.Node {
	n.Identifiers = append(append([]omtsf.Identifier{}, n.Identifiers...), omtsf.Identifier{Scheme: "internal", Value: value})
	return n
}

func suppliesEdge(id, src, tgt string) omtsf.Edge {
	return omtsf.Edge{
		Id:       omtsf.EdgeId(id),
		EdgeType: omtsf.KnownEdgeType(omtsf.EdgeTypeSupplies),
		Source:   omtsf.NodeId(src),
		Target:   omtsf.NodeId(tgt),
	}
}
