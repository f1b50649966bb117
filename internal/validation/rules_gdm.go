package validation

import (
	"strings"

	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// GdmRule01 — node ids must be file-unique (spec.md I1).
type GdmRule01 struct{}

func (GdmRule01) ID() RuleId    { return RuleGdm01 }
func (GdmRule01) Level() Level  { return L1 }
func (GdmRule01) Check(file *omtsf.File, diags *[]Diagnostic) {
	seen := make(map[omtsf.NodeId]bool, len(file.Nodes))
	for _, n := range file.Nodes {
		if seen[n.Id] {
			*diags = append(*diags, newDiag(RuleGdm01, L1, NodeLocation(string(n.Id), ""),
				"duplicate node id %q", n.Id))
			continue
		}
		seen[n.Id] = true
	}
}

// GdmRule02 — edge ids must be file-unique (spec.md I2).
type GdmRule02 struct{}

func (GdmRule02) ID() RuleId   { return RuleGdm02 }
func (GdmRule02) Level() Level { return L1 }
func (GdmRule02) Check(file *omtsf.File, diags *[]Diagnostic) {
	seen := make(map[omtsf.EdgeId]bool, len(file.Edges))
	for _, e := range file.Edges {
		if seen[e.Id] {
			*diags = append(*diags, newDiag(RuleGdm02, L1, EdgeLocation(string(e.Id), ""),
				"duplicate edge id %q", e.Id))
			continue
		}
		seen[e.Id] = true
	}
}

// GdmRule03 — every edge's source and target must reference an existing
// node id (spec.md I3).
type GdmRule03 struct{}

func (GdmRule03) ID() RuleId   { return RuleGdm03 }
func (GdmRule03) Level() Level { return L1 }
func (GdmRule03) Check(file *omtsf.File, diags *[]Diagnostic) {
	for _, e := range file.Edges {
		if _, ok := file.NodeByID(e.Source); !ok {
			*diags = append(*diags, newDiag(RuleGdm03, L1, EdgeLocation(string(e.Id), "source"),
				"edge %q references unknown source node %q", e.Id, e.Source))
		}
		if _, ok := file.NodeByID(e.Target); !ok {
			*diags = append(*diags, newDiag(RuleGdm03, L1, EdgeLocation(string(e.Id), "target"),
				"edge %q references unknown target node %q", e.Id, e.Target))
		}
	}
}

// GdmRule04 — edge type must be a known core type, "same_as", or an
// extension type (a string containing a '.').
type GdmRule04 struct{}

func (GdmRule04) ID() RuleId   { return RuleGdm04 }
func (GdmRule04) Level() Level { return L1 }
func (GdmRule04) Check(file *omtsf.File, diags *[]Diagnostic) {
	for _, e := range file.Edges {
		if !e.EdgeType.IsExtension() {
			continue
		}
		if strings.Contains(e.EdgeType.Extension, ".") {
			continue
		}
		*diags = append(*diags, newDiag(RuleGdm04, L1, EdgeLocation(string(e.Id), "type"),
			"edge %q has unrecognized type %q; extension types must contain a '.'", e.Id, e.EdgeType.Extension))
	}
}

// GdmRule05 — reporting_entity, if set, must reference an existing
// organization node (spec.md I4).
type GdmRule05 struct{}

func (GdmRule05) ID() RuleId   { return RuleGdm05 }
func (GdmRule05) Level() Level { return L1 }
func (GdmRule05) Check(file *omtsf.File, diags *[]Diagnostic) {
	if file.ReportingEntity == nil {
		return
	}
	node, ok := file.NodeByID(*file.ReportingEntity)
	if !ok {
		*diags = append(*diags, newDiag(RuleGdm05, L1, HeaderLocation("reporting_entity"),
			"reporting_entity %q does not reference an existing node", *file.ReportingEntity))
		return
	}
	if node.NodeType.IsExtension() || node.NodeType.Known != omtsf.NodeTypeOrganization {
		*diags = append(*diags, newDiag(RuleGdm05, L1, HeaderLocation("reporting_entity"),
			"reporting_entity %q does not reference an organization node", *file.ReportingEntity))
	}
}

// GdmRule06 — edge source/target node types must conform to the
// permitted-type table for the edge's type (spec.md I5). Extension edge
// types are exempt entirely; boundary_ref nodes are exempt at either
// endpoint of any edge type.
type GdmRule06 struct{}

func (GdmRule06) ID() RuleId   { return RuleGdm06 }
func (GdmRule06) Level() Level { return L1 }
func (GdmRule06) Check(file *omtsf.File, diags *[]Diagnostic) {
	for _, e := range file.Edges {
		src, srcOk := file.NodeByID(e.Source)
		tgt, tgtOk := file.NodeByID(e.Target)
		if !srcOk || !tgtOk {
			// GdmRule03 already reports the dangling reference.
			continue
		}
		if omtsf.EndpointTypesPermitted(e.EdgeType, src.NodeType, tgt.NodeType) {
			continue
		}
		*diags = append(*diags, newDiag(RuleGdm06, L1, EdgeLocation(string(e.Id), ""),
			"edge %q of type %q has source type %q and target type %q, which do not conform to the permitted-type table",
			e.Id, e.EdgeType, src.NodeType, tgt.NodeType))
	}
}
