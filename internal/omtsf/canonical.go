package omtsf

import "sort"

// CanonicalIdentifierStrings returns the sorted, deduplicated canonical
// key strings for identifiers that should participate in boundary hashing
// or identity matching: internal-scheme identifiers are excluded per
// spec.md §3.2.
func CanonicalIdentifierStrings(ids []Identifier) []string {
	keys := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id.IsInternal() {
			continue
		}
		k := id.CanonicalKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PublicIdentifiers filters ids to those whose effective sensitivity is
// public, used when computing a boundary-ref stub's hash input (spec.md
// §4.6 "Node disposition").
func PublicIdentifiers(ids []Identifier, nodeType NodeTypeTag) []Identifier {
	out := make([]Identifier, 0, len(ids))
	for _, id := range ids {
		if EffectiveSensitivity(id, nodeType) == SensitivityPublic {
			out = append(out, id)
		}
	}
	return out
}

// permittedEndpointTypes maps an edge type to the set of node types
// allowed at its source and target (spec.md §9.5's graph data model
// constraints, enforced by rule L1-GDM-06). Extension edge types are
// exempt entirely; boundary_ref nodes are exempt at either endpoint of
// any edge type (checked by the caller before consulting this table).
// same_as has no entry: it imposes no endpoint-type constraint at all.
type endpointTypes struct {
	source map[NodeType]bool
	target map[NodeType]bool
}

func nodeSet(types ...NodeType) map[NodeType]bool {
	m := make(map[NodeType]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

var permittedEndpoints = map[EdgeType]endpointTypes{
	EdgeTypeOwnership: {
		source: nodeSet(NodeTypeOrganization),
		target: nodeSet(NodeTypeOrganization),
	},
	EdgeTypeOperationalControl: {
		source: nodeSet(NodeTypeOrganization),
		target: nodeSet(NodeTypeOrganization, NodeTypeFacility),
	},
	EdgeTypeLegalParentage: {
		source: nodeSet(NodeTypeOrganization),
		target: nodeSet(NodeTypeOrganization),
	},
	EdgeTypeFormerIdentity: {
		source: nodeSet(NodeTypeOrganization),
		target: nodeSet(NodeTypeOrganization),
	},
	EdgeTypeBeneficialOwnership: {
		source: nodeSet(NodeTypePerson),
		target: nodeSet(NodeTypeOrganization),
	},
	EdgeTypeSupplies: {
		source: nodeSet(NodeTypeOrganization),
		target: nodeSet(NodeTypeOrganization),
	},
	EdgeTypeSubcontracts: {
		source: nodeSet(NodeTypeOrganization),
		target: nodeSet(NodeTypeOrganization),
	},
	EdgeTypeSellsTo: {
		source: nodeSet(NodeTypeOrganization),
		target: nodeSet(NodeTypeOrganization),
	},
	EdgeTypeTolls: {
		source: nodeSet(NodeTypeOrganization, NodeTypeFacility),
		target: nodeSet(NodeTypeOrganization),
	},
	EdgeTypeBrokers: {
		source: nodeSet(NodeTypeOrganization),
		target: nodeSet(NodeTypeOrganization),
	},
	EdgeTypeDistributes: {
		source: nodeSet(NodeTypeOrganization),
		target: nodeSet(NodeTypeOrganization),
	},
	EdgeTypeOperates: {
		source: nodeSet(NodeTypeOrganization),
		target: nodeSet(NodeTypeFacility),
	},
	EdgeTypeProduces: {
		source: nodeSet(NodeTypeFacility),
		target: nodeSet(NodeTypeGood, NodeTypeConsignment),
	},
	EdgeTypeComposedOf: {
		source: nodeSet(NodeTypeGood, NodeTypeConsignment),
		target: nodeSet(NodeTypeGood, NodeTypeConsignment),
	},
	EdgeTypeAttestedBy: {
		source: nodeSet(NodeTypeOrganization, NodeTypeFacility, NodeTypeGood, NodeTypeConsignment),
		target: nodeSet(NodeTypeAttestation),
	},
}

// EndpointTypesPermitted reports whether sourceType/targetType are allowed
// at the endpoints of edgeType, per the L1-GDM-06 table. Extension edge
// types are exempt entirely. Each endpoint is checked independently:
// a boundary_ref or extension node type at one endpoint exempts only that
// endpoint, not the other — an edge with a valid boundary_ref target and
// an invalid source type must still fail.
func EndpointTypesPermitted(edgeType EdgeTypeTag, sourceType, targetType NodeTypeTag) bool {
	if edgeType.IsExtension() {
		return true
	}
	table, ok := permittedEndpoints[edgeType.Known]
	if !ok || table.source == nil {
		return true
	}
	sourceOK := sourceType.IsExtension() || sourceType.Known == NodeTypeBoundaryRef || table.source[sourceType.Known]
	targetOK := targetType.IsExtension() || targetType.Known == NodeTypeBoundaryRef || table.target[targetType.Known]
	return sourceOK && targetOK
}
