// Package diffengine computes structural diffs between two OMTSF files:
// which nodes and edges were added, removed, or modified, matched across
// files by shared external identifiers rather than by graph-local id
// (spec.md §4.4).
package diffengine

import "github.com/BayFX/omtsf-sub000/internal/omtsf"

// NodeRef is a lightweight reference to a node, carrying just enough
// information for readable diff output without embedding the full Node.
type NodeRef struct {
	Id       omtsf.NodeId
	NodeType string
	Name     *string
}

func nodeRef(n *omtsf.Node) NodeRef {
	return NodeRef{Id: n.Id, NodeType: n.NodeType.String(), Name: n.Name}
}

// EdgeRef is a lightweight reference to an edge.
type EdgeRef struct {
	Id       omtsf.EdgeId
	EdgeType string
	Source   omtsf.NodeId
	Target   omtsf.NodeId
}

func edgeRef(e *omtsf.Edge) EdgeRef {
	return EdgeRef{Id: e.Id, EdgeType: e.EdgeType.String(), Source: e.Source, Target: e.Target}
}

// PropertyChange records a change to a single scalar field. OldValue/NewValue
// are nil when the field was absent on that side.
type PropertyChange struct {
	Field    string
	OldValue interface{}
	NewValue interface{}
}

// IdentifierFieldDiff is a field-level diff for one identifier present on
// both sides of a matched pair, keyed by its canonical string.
type IdentifierFieldDiff struct {
	CanonicalKey string
	FieldChanges []PropertyChange
}

// IdentifierSetDiff is the diff of the identifiers set between two matched
// elements.
type IdentifierSetDiff struct {
	Added    []omtsf.Identifier
	Removed  []omtsf.Identifier
	Modified []IdentifierFieldDiff
}

// LabelSetDiff is the diff of the labels set between two matched elements.
// A value change for an existing key is reported as a removal of the old
// pair plus an addition of the new one, never an in-place modification
// (spec.md §4.4).
type LabelSetDiff struct {
	Added   []omtsf.Label
	Removed []omtsf.Label
}

func (d IdentifierSetDiff) isEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

func (d LabelSetDiff) isEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// NodeDiff is the diff between a matched pair of nodes.
type NodeDiff struct {
	IdA               string
	IdB               string
	NodeType          string
	MatchedBy         []string
	PropertyChanges   []PropertyChange
	IdentifierChanges IdentifierSetDiff
	LabelChanges      LabelSetDiff
}

func (d NodeDiff) isModified() bool {
	return len(d.PropertyChanges) != 0 || !d.IdentifierChanges.isEmpty() || !d.LabelChanges.isEmpty()
}

// EdgeDiff is the diff between a matched pair of edges.
type EdgeDiff struct {
	IdA               string
	IdB               string
	EdgeType          string
	PropertyChanges   []PropertyChange
	IdentifierChanges IdentifierSetDiff
	LabelChanges      LabelSetDiff
}

func (d EdgeDiff) isModified() bool {
	return len(d.PropertyChanges) != 0 || !d.IdentifierChanges.isEmpty() || !d.LabelChanges.isEmpty()
}

// NodesDiff classifies node differences between two files.
type NodesDiff struct {
	Added     []NodeRef
	Removed   []NodeRef
	Modified  []NodeDiff
	Unchanged []NodeDiff
}

// EdgesDiff classifies edge differences between two files.
type EdgesDiff struct {
	Added     []EdgeRef
	Removed   []EdgeRef
	Modified  []EdgeDiff
	Unchanged []EdgeDiff
}

// Filter optionally restricts which nodes and edges are compared.
// Filtering by node type also filters edges: an edge whose source or
// target has a filtered-out node type is excluded from the diff.
type Filter struct {
	// NodeTypes, if non-nil, restricts the diff to nodes of these type
	// strings; nil means all types.
	NodeTypes map[string]bool
	// EdgeTypes, if non-nil, restricts the diff to edges of these type
	// strings; nil means all types.
	EdgeTypes map[string]bool
	// IgnoreFields names property fields excluded from comparison.
	IgnoreFields map[string]bool
}

func (f *Filter) nodeTypeAllowed(n *omtsf.Node) bool {
	if f == nil || f.NodeTypes == nil {
		return true
	}
	return f.NodeTypes[n.NodeType.String()]
}

func (f *Filter) edgeTypeAllowed(e *omtsf.Edge) bool {
	if f == nil || f.EdgeTypes == nil {
		return true
	}
	return f.EdgeTypes[e.EdgeType.String()]
}

func (f *Filter) ignoreSet() map[string]bool {
	if f == nil {
		return nil
	}
	return f.IgnoreFields
}

// Summary reports aggregate counts for a Result.
type Summary struct {
	NodesAdded     int
	NodesRemoved   int
	NodesModified  int
	NodesUnchanged int
	EdgesAdded     int
	EdgesRemoved   int
	EdgesModified  int
	EdgesUnchanged int
}

// Result is the complete outcome of a structural diff between two OMTSF
// files.
type Result struct {
	Nodes    NodesDiff
	Edges    EdgesDiff
	Warnings []string
}

// Summary returns aggregate counts for the diff.
func (r *Result) Summary() Summary {
	return Summary{
		NodesAdded:     len(r.Nodes.Added),
		NodesRemoved:   len(r.Nodes.Removed),
		NodesModified:  len(r.Nodes.Modified),
		NodesUnchanged: len(r.Nodes.Unchanged),
		EdgesAdded:     len(r.Edges.Added),
		EdgesRemoved:   len(r.Edges.Removed),
		EdgesModified:  len(r.Edges.Modified),
		EdgesUnchanged: len(r.Edges.Unchanged),
	}
}

// IsEmpty reports whether the diff contains no additions, removals, or
// modifications.
func (r *Result) IsEmpty() bool {
	return len(r.Nodes.Added) == 0 && len(r.Nodes.Removed) == 0 && len(r.Nodes.Modified) == 0 &&
		len(r.Edges.Added) == 0 && len(r.Edges.Removed) == 0 && len(r.Edges.Modified) == 0
}
