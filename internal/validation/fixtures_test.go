package validation_test

import (
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

const testSalt = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

func mustDate(s string) omtsf.CalendarDate {
	d, err := omtsf.NewCalendarDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *omtsf.CalendarDate {
	d := mustDate(s)
	return &d
}

func makeFile(nodes []omtsf.Node, edges []omtsf.Edge) *omtsf.File {
	return &omtsf.File{
		OmtsfVersion: "1.0.0",
		SnapshotDate: mustDate("2026-02-19"),
		FileSalt:     omtsf.FileSalt(testSalt),
		Nodes:        nodes,
		Edges:        edges,
	}
}

func node(id string, t omtsf.NodeType) omtsf.Node {
	return omtsf.Node{Id: omtsf.NodeId(id), NodeType: omtsf.KnownNodeType(t)}
}

func nodeWithIdentifiers(id string, t omtsf.NodeType, ids []omtsf.Identifier) omtsf.Node {
	n := node(id, t)
	n.Identifiers = ids
	return n
}

func nodeWithOperator(id, operatorId string) omtsf.Node {
	n := node(id, omtsf.NodeTypeFacility)
	n.Operator = &operatorId
	return n
}

func nodeWithDataQuality(id string, t omtsf.NodeType) omtsf.Node {
	n := node(id, t)
	n.DataQuality = &omtsf.DataQuality{Source: "test"}
	return n
}

func edge(id string, t omtsf.EdgeType, source, target string) omtsf.Edge {
	return omtsf.Edge{
		Id:       omtsf.EdgeId(id),
		EdgeType: omtsf.KnownEdgeType(t),
		Source:   omtsf.NodeId(source),
		Target:   omtsf.NodeId(target),
	}
}

func edgeWithValidFrom(id string, t omtsf.EdgeType, source, target, from string) omtsf.Edge {
	e := edge(id, t, source, target)
	e.Properties.ValidFrom = datePtr(from)
	return e
}

func edgeWithTier(id, source, target string, tier int) omtsf.Edge {
	e := edge(id, omtsf.EdgeTypeSupplies, source, target)
	e.Properties.Tier = &tier
	return e
}

func edgeWithDataQuality(id string, t omtsf.EdgeType, source, target string) omtsf.Edge {
	e := edge(id, t, source, target)
	e.Properties.DataQuality = &omtsf.DataQuality{Source: "test"}
	return e
}

func identifier(scheme, value, authority string) omtsf.Identifier {
	return omtsf.Identifier{Scheme: scheme, Value: value, Authority: authority}
}
