package redaction_test

import (
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

const testSalt = "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"

func strp(s string) *string { return &s }

func makeNode(id string, nodeType omtsf.NodeType) omtsf.Node {
	return omtsf.Node{
		Id:       omtsf.NodeId(id),
		NodeType: omtsf.KnownNodeType(nodeType),
	}
}

func orgNode(id string) omtsf.Node {
	n := makeNode(id, omtsf.NodeTypeOrganization)
	name := "Acme " + id
	n.Name = &name
	return n
}

func personNode(id string) omtsf.Node {
	return makeNode(id, omtsf.NodeTypePerson)
}

func boundaryRefNode(id string) omtsf.Node {
	n := makeNode(id, omtsf.NodeTypeBoundaryRef)
	n.Identifiers = []omtsf.Identifier{{Scheme: "opaque", Value: "deadbeef"}}
	return n
}

func withIdentifier(n omtsf.Node, id omtsf.Identifier) omtsf.Node {
	n.Identifiers = append(append([]omtsf.Identifier{}, n.Identifiers...), id)
	return n
}

func publicID(scheme, value string) omtsf.Identifier {
	return omtsf.Identifier{Scheme: scheme, Value: value, Sensitivity: omtsf.SensitivityPublic}
}

func restrictedID(scheme, value string) omtsf.Identifier {
	return omtsf.Identifier{Scheme: scheme, Value: value, Sensitivity: omtsf.SensitivityRestricted}
}

func confidentialID(scheme, value string) omtsf.Identifier {
	return omtsf.Identifier{Scheme: scheme, Value: value, Sensitivity: omtsf.SensitivityConfidential}
}

func defaultID(scheme, value string) omtsf.Identifier {
	return omtsf.Identifier{Scheme: scheme, Value: value}
}

func makeEdge(edgeType omtsf.EdgeType, src, tgt string) omtsf.Edge {
	return omtsf.Edge{
		Id:       omtsf.EdgeId(src + "-" + tgt),
		EdgeType: omtsf.KnownEdgeType(edgeType),
		Source:   omtsf.NodeId(src),
		Target:   omtsf.NodeId(tgt),
	}
}

func makeFile(nodes []omtsf.Node, edges []omtsf.Edge) *omtsf.File {
	d, _ := omtsf.NewCalendarDate("2026-02-20")
	return &omtsf.File{
		OmtsfVersion: "1.0.0",
		SnapshotDate: d,
		FileSalt:     omtsf.FileSalt(testSalt),
		Nodes:        nodes,
		Edges:        edges,
	}
}
