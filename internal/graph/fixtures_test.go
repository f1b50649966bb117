package graph_test

import (
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

const testSalt = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

func makeFile(nodes []omtsf.Node, edges []omtsf.Edge) *omtsf.File {
	d, _ := omtsf.NewCalendarDate("2026-02-19")
	return &omtsf.File{
		OmtsfVersion: "1.0.0",
		SnapshotDate: d,
		FileSalt:     omtsf.FileSalt(testSalt),
		Nodes:        nodes,
		Edges:        edges,
	}
}

func orgNode(id string) omtsf.Node {
	return omtsf.Node{Id: omtsf.NodeId(id), NodeType: omtsf.KnownNodeType(omtsf.NodeTypeOrganization)}
}

func facilityNode(id string) omtsf.Node {
	return omtsf.Node{Id: omtsf.NodeId(id), NodeType: omtsf.KnownNodeType(omtsf.NodeTypeFacility)}
}

func suppliesEdge(id, source, target string) omtsf.Edge {
	return omtsf.Edge{
		Id:       omtsf.EdgeId(id),
		EdgeType: omtsf.KnownEdgeType(omtsf.EdgeTypeSupplies),
		Source:   omtsf.NodeId(source),
		Target:   omtsf.NodeId(target),
	}
}

func ownershipEdge(id, source, target string) omtsf.Edge {
	return omtsf.Edge{
		Id:       omtsf.EdgeId(id),
		EdgeType: omtsf.KnownEdgeType(omtsf.EdgeTypeOwnership),
		Source:   omtsf.NodeId(source),
		Target:   omtsf.NodeId(target),
	}
}

func nodeIds(nodes []omtsf.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = string(n.Id)
	}
	return out
}

func edgeIds(edges []omtsf.Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = string(e.Id)
	}
	return out
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
