package merge_test

import (
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

const saltA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
const saltB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

func strp(s string) *string { return &s }

func makeFile(salt string, date string, nodes []omtsf.Node, edges []omtsf.Edge) *omtsf.File {
	d, _ := omtsf.NewCalendarDate(date)
	return &omtsf.File{
		OmtsfVersion: "1.0.0",
		SnapshotDate: d,
		FileSalt:     omtsf.FileSalt(salt),
		Nodes:        nodes,
		Edges:        edges,
	}
}

func orgNode(id, name string) omtsf.Node {
	n := name
	return omtsf.Node{
		Id:       omtsf.NodeId(id),
		NodeType: omtsf.KnownNodeType(omtsf.NodeTypeOrganization),
		Name:     &n,
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

func withAnnulledLEI(n omtsf.Node, lei string) omtsf.Node {
	id := omtsf.Identifier{Scheme: "lei", Value: lei, Extra: map[string]interface{}{"entity_status": "ANNULLED"}}
	n.Identifiers = append(append([]omtsf.Identifier{}, n.Identifiers...), id)
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

func sameAsEdge(id, src, tgt, confidence string) omtsf.Edge {
	props := omtsf.EdgeProperties{}
	if confidence != "" {
		props.Extra = map[string]interface{}{"confidence": confidence}
	}
	return omtsf.Edge{
		Id:         omtsf.EdgeId(id),
		EdgeType:   omtsf.KnownEdgeType(omtsf.EdgeTypeSameAs),
		Source:     omtsf.NodeId(src),
		Target:     omtsf.NodeId(tgt),
		Properties: props,
	}
}
