// Package redaction implements the selective-disclosure engine (spec.md
// §4.7): node/edge classification into per-scope dispositions, identifier
// and edge-property filtering by sensitivity threshold, boundary_ref stub
// construction, and the top-level Redact pipeline with post-redaction L1
// revalidation.
package redaction

import (
	"strings"

	"github.com/BayFX/omtsf-sub000/internal/boundaryhash"
	omtsferrors "github.com/BayFX/omtsf-sub000/internal/errors"
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
	"github.com/BayFX/omtsf-sub000/internal/validation"
)

// NodeAction is the disposition assigned to a node during redaction.
type NodeAction int

const (
	// Retain means the node appears in output, possibly with filtered
	// identifiers.
	Retain NodeAction = iota
	// Replace means the node is swapped for a boundary_ref stub.
	Replace
	// Omit means the node is removed entirely, along with every edge
	// referencing it.
	Omit
)

// EdgeAction is the disposition assigned to an edge during redaction.
type EdgeAction int

const (
	// EdgeRetain means the edge appears in output, possibly with filtered
	// properties.
	EdgeRetain EdgeAction = iota
	// EdgeOmit means the edge is removed entirely.
	EdgeOmit
)

// ClassifyNode classifies a node's base disposition for targetScope
// (spec.md §4.7's classification table). The Retain/Replace choice for
// every node type except person and boundary_ref is a producer decision
// made later by Redact, not here: this function only ever returns Retain
// or Omit — Replace is assigned downstream once retainIDs is known.
func ClassifyNode(node omtsf.Node, targetScope omtsf.DisclosureScope) NodeAction {
	switch targetScope {
	case omtsf.ScopeInternal:
		return Retain
	case omtsf.ScopePartner:
		return Retain
	case omtsf.ScopePublic:
		if !node.NodeType.IsExtension() && node.NodeType.Known == omtsf.NodeTypePerson {
			return Omit
		}
		return Retain
	default:
		return Retain
	}
}

// sensitivityAllowed reports whether a sensitivity level is allowed
// through at the target scope (spec.md §4.7):
//
//	scope     public restricted confidential
//	internal  yes    yes        yes
//	partner   yes    yes        no
//	public    yes    no         no
func sensitivityAllowed(sensitivity omtsf.Sensitivity, scope omtsf.DisclosureScope) bool {
	switch scope {
	case omtsf.ScopeInternal:
		return true
	case omtsf.ScopePartner:
		return sensitivity != omtsf.SensitivityConfidential
	case omtsf.ScopePublic:
		return sensitivity == omtsf.SensitivityPublic
	default:
		return true
	}
}

// FilterIdentifiers retains only identifiers whose effective sensitivity
// (the person-node default override included) is allowed through
// targetScope.
func FilterIdentifiers(identifiers []omtsf.Identifier, nodeType omtsf.NodeTypeTag, targetScope omtsf.DisclosureScope) []omtsf.Identifier {
	var out []omtsf.Identifier
	for _, id := range identifiers {
		if sensitivityAllowed(omtsf.EffectiveSensitivity(id, nodeType), targetScope) {
			out = append(out, id)
		}
	}
	return out
}

// namedEdgeProperty identifies one of EdgeProperties' named scalar fields
// by name, for sensitivity lookup and selective retention.
type namedEdgeProperty struct {
	name string
	keep func(dst, src *omtsf.EdgeProperties)
}

var namedEdgeProperties = []namedEdgeProperty{
	{"data_quality", func(d, s *omtsf.EdgeProperties) { d.DataQuality = s.DataQuality }},
	{"labels", func(d, s *omtsf.EdgeProperties) { d.Labels = s.Labels }},
	{"valid_from", func(d, s *omtsf.EdgeProperties) { d.ValidFrom = s.ValidFrom }},
	{"valid_to", func(d, s *omtsf.EdgeProperties) { d.ValidTo = s.ValidTo }},
	{"percentage", func(d, s *omtsf.EdgeProperties) { d.Percentage = s.Percentage }},
	{"direct", func(d, s *omtsf.EdgeProperties) { d.Direct = s.Direct }},
	{"control_type", func(d, s *omtsf.EdgeProperties) { d.ControlType = s.ControlType }},
	{"consolidation_basis", func(d, s *omtsf.EdgeProperties) { d.ConsolidationBasis = s.ConsolidationBasis }},
	{"event_type", func(d, s *omtsf.EdgeProperties) { d.EventType = s.EventType }},
	{"effective_date", func(d, s *omtsf.EdgeProperties) { d.EffectiveDate = s.EffectiveDate }},
	{"description", func(d, s *omtsf.EdgeProperties) { d.Description = s.Description }},
	{"commodity", func(d, s *omtsf.EdgeProperties) { d.Commodity = s.Commodity }},
	{"contract_ref", func(d, s *omtsf.EdgeProperties) { d.ContractRef = s.ContractRef }},
	{"volume", func(d, s *omtsf.EdgeProperties) { d.Volume = s.Volume }},
	{"volume_unit", func(d, s *omtsf.EdgeProperties) { d.VolumeUnit = s.VolumeUnit }},
	{"annual_value", func(d, s *omtsf.EdgeProperties) { d.AnnualValue = s.AnnualValue }},
	{"value_currency", func(d, s *omtsf.EdgeProperties) { d.ValueCurrency = s.ValueCurrency }},
	{"tier", func(d, s *omtsf.EdgeProperties) { d.Tier = s.Tier }},
	{"share_of_buyer_demand", func(d, s *omtsf.EdgeProperties) { d.ShareOfBuyerDemand = s.ShareOfBuyerDemand }},
	{"service_type", func(d, s *omtsf.EdgeProperties) { d.ServiceType = s.ServiceType }},
	{"quantity", func(d, s *omtsf.EdgeProperties) { d.Quantity = s.Quantity }},
	{"unit", func(d, s *omtsf.EdgeProperties) { d.Unit = s.Unit }},
	{"scope", func(d, s *omtsf.EdgeProperties) { d.Scope = s.Scope }},
}

// FilterEdgeProperties strips an edge's properties to those allowed
// through targetScope (spec.md §4.7): every named scalar field is checked
// individually against its effective property sensitivity, and every
// extension field in Extra is checked the same way. The
// "_property_sensitivity" override map itself is retained for partner
// scope (so a downstream reader can see which overrides were in force)
// and dropped entirely for public scope.
func FilterEdgeProperties(edge omtsf.Edge, targetScope omtsf.DisclosureScope) omtsf.EdgeProperties {
	if targetScope == omtsf.ScopeInternal {
		return edge.Properties
	}

	src := edge.Properties
	var out omtsf.EdgeProperties
	keep := func(name string) bool {
		return sensitivityAllowed(omtsf.EffectivePropertySensitivity(edge, name), targetScope)
	}
	for _, p := range namedEdgeProperties {
		if keep(p.name) {
			p.keep(&out, &src)
		}
	}

	// The "_property_sensitivity" override map is retained for partner
	// scope (so a downstream reader can see which overrides were in
	// force) and dropped entirely for public scope.
	if targetScope == omtsf.ScopePartner {
		out.PropertySensitivity = src.PropertySensitivity
	}

	if len(src.Extra) > 0 {
		extra := make(map[string]interface{})
		for key, value := range src.Extra {
			if keep(key) {
				extra[key] = value
			}
		}
		if len(extra) > 0 {
			out.Extra = extra
		}
	}

	return out
}

// ClassifyEdge classifies an edge's disposition from its endpoints'
// NodeActions and the target scope (spec.md §4.7):
//
//  1. public scope unconditionally omits beneficial_ownership edges.
//  2. either endpoint Omit -> Omit.
//  3. both endpoints Replace -> Omit.
//  4. otherwise (a boundary crossing, or both Retain) -> Retain.
func ClassifyEdge(edge omtsf.Edge, sourceAction, targetAction NodeAction, targetScope omtsf.DisclosureScope) EdgeAction {
	if targetScope == omtsf.ScopePublic &&
		!edge.EdgeType.IsExtension() && edge.EdgeType.Known == omtsf.EdgeTypeBeneficialOwnership {
		return EdgeOmit
	}
	if sourceAction == Omit || targetAction == Omit {
		return EdgeOmit
	}
	if sourceAction == Replace && targetAction == Replace {
		return EdgeOmit
	}
	return EdgeRetain
}

// buildBoundaryRefNode constructs a minimal boundary_ref stub carrying a
// single opaque identifier. The id is preserved from the original node so
// existing edge source/target references remain valid (spec.md §4.7).
func buildBoundaryRefNode(id omtsf.NodeId, opaqueValue string) omtsf.Node {
	return omtsf.Node{
		Id:       id,
		NodeType: omtsf.KnownNodeType(omtsf.NodeTypeBoundaryRef),
		Identifiers: []omtsf.Identifier{{
			Scheme: "opaque",
			Value:  opaqueValue,
		}},
	}
}

// Redact produces a scope-limited view of file, retaining every node in
// retainIDs (subject to its base classification) and replacing every
// other retainable non-boundary_ref node with a boundary_ref stub
// (spec.md §4.7). Internal scope is a no-op: the input is copied back
// unchanged with DisclosureScope set. The result is revalidated at L1; a
// failure there indicates an engine bug, not a problem with the input.
func Redact(file *omtsf.File, scope omtsf.DisclosureScope, retainIDs map[omtsf.NodeId]bool) (*omtsf.File, error) {
	if scope == omtsf.ScopeInternal {
		out := *file
		internal := omtsf.ScopeInternal
		out.DisclosureScope = &internal
		return &out, nil
	}

	salt, err := boundaryhash.DecodeSalt(file.FileSalt)
	if err != nil {
		return nil, err
	}

	nodeActions := make(map[omtsf.NodeId]NodeAction, len(file.Nodes))
	for _, n := range file.Nodes {
		base := ClassifyNode(n, scope)
		var action NodeAction
		switch base {
		case Omit:
			action = Omit
		default:
			isBoundaryRef := !n.NodeType.IsExtension() && n.NodeType.Known == omtsf.NodeTypeBoundaryRef
			if isBoundaryRef || retainIDs[n.Id] {
				action = Retain
			} else {
				action = Replace
			}
		}
		nodeActions[n.Id] = action
	}

	boundaryRefValues := make(map[omtsf.NodeId]string)
	for _, n := range file.Nodes {
		if nodeActions[n.Id] != Replace {
			continue
		}
		var publicIDs []string
		for _, id := range n.Identifiers {
			if omtsf.EffectiveSensitivity(id, n.NodeType) == omtsf.SensitivityPublic {
				publicIDs = append(publicIDs, id.CanonicalKey())
			}
		}
		hash, err := boundaryhash.BoundaryRefValue(publicIDs, salt)
		if err != nil {
			return nil, err
		}
		boundaryRefValues[n.Id] = hash
	}

	outputNodes := make([]omtsf.Node, 0, len(file.Nodes))
	for _, n := range file.Nodes {
		switch nodeActions[n.Id] {
		case Omit:
			continue
		case Replace:
			hash, ok := boundaryRefValues[n.Id]
			if !ok {
				continue
			}
			outputNodes = append(outputNodes, buildBoundaryRefNode(n.Id, hash))
		case Retain:
			filtered := FilterIdentifiers(n.Identifiers, n.NodeType, scope)
			retained := n
			retained.Identifiers = filtered
			outputNodes = append(outputNodes, retained)
		}
	}

	outputEdges := make([]omtsf.Edge, 0, len(file.Edges))
	for _, e := range file.Edges {
		sourceAction, ok := nodeActions[e.Source]
		if !ok {
			sourceAction = Omit
		}
		targetAction, ok := nodeActions[e.Target]
		if !ok {
			targetAction = Omit
		}
		if ClassifyEdge(e, sourceAction, targetAction, scope) == EdgeOmit {
			continue
		}
		retained := e
		retained.Properties = FilterEdgeProperties(e, scope)
		outputEdges = append(outputEdges, retained)
	}

	outScope := scope
	output := &omtsf.File{
		OmtsfVersion:        file.OmtsfVersion,
		SnapshotDate:        file.SnapshotDate,
		FileSalt:            file.FileSalt,
		DisclosureScope:     &outScope,
		PreviousSnapshotRef: file.PreviousSnapshotRef,
		SnapshotSequence:    file.SnapshotSequence,
		ReportingEntity:     file.ReportingEntity,
		Nodes:               outputNodes,
		Edges:               outputEdges,
		Extra:               file.Extra,
	}

	result := validation.Validate(output, validation.ValidationConfig{RunL1: true})
	if result.HasErrors() {
		messages := make([]string, 0, len(result.Errors()))
		for _, d := range result.Errors() {
			messages = append(messages, string(d.RuleId)+": "+d.Message)
		}
		return nil, omtsferrors.InvalidRedaction(strings.Join(messages, "; "))
	}

	return output, nil
}
