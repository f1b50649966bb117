// Package identity implements the entity-identity predicates (spec.md
// §4.2): identifiers_match, temporal_compatible, edges_match, and the
// per-edge-type identity-property table. Diff (internal/diffengine) and
// merge (internal/merge) both build on these predicates.
package identity

import (
	"math"
	"strings"

	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// IdentifiersMatch reports whether a and b denote the same identity
// reference. Symmetric (P1): IdentifiersMatch(a, b) == IdentifiersMatch(b, a).
// Rules are evaluated in order; any failing step yields false.
func IdentifiersMatch(a, b omtsf.Identifier) bool {
	// 1. Either scheme is "internal" -> false.
	if a.IsInternal() || b.IsInternal() {
		return false
	}
	// 2. Schemes not equal -> false.
	if a.Scheme != b.Scheme {
		return false
	}
	// 3. Whitespace-trimmed values not equal -> false.
	if strings.TrimSpace(a.Value) != strings.TrimSpace(b.Value) {
		return false
	}
	// 4. One-sided authority -> false; both present -> case-insensitive compare.
	aAuth := strings.TrimSpace(a.Authority)
	bAuth := strings.TrimSpace(b.Authority)
	if (aAuth == "") != (bAuth == "") {
		return false
	}
	if aAuth != "" && !strings.EqualFold(aAuth, bAuth) {
		return false
	}
	// 5. Temporal compatibility.
	return TemporalCompatible(a, b)
}

// hasAnyTemporalField reports whether id carries valid_from or a present
// (non-absent) valid_to.
func hasAnyTemporalField(id omtsf.Identifier) bool {
	return id.ValidFrom != nil || id.ValidTo.Present
}

// TemporalCompatible implements spec.md §4.2 step 5 / §9's tri-state note:
// if either side lacks every temporal field, the pair is compatible.
// Otherwise the intervals are disjoint iff EITHER side carries a concrete
// end date earlier than the other side's concrete start date. An absent
// valid_to, or an explicit null valid_to, both mean
// "open-ended" and never cause disjointness; an absent valid_from also
// means open-ended (no lower bound) on that side.
func TemporalCompatible(a, b omtsf.Identifier) bool {
	if !hasAnyTemporalField(a) || !hasAnyTemporalField(b) {
		return true
	}
	return !intervalsDisjoint(a, b)
}

func intervalsDisjoint(a, b omtsf.Identifier) bool {
	aEndsBeforeBStarts := a.ValidTo.Present && a.ValidTo.Value != nil &&
		b.ValidFrom != nil && string(*a.ValidTo.Value) < string(*b.ValidFrom)
	bEndsBeforeAStarts := b.ValidTo.Present && b.ValidTo.Value != nil &&
		a.ValidFrom != nil && string(*b.ValidTo.Value) < string(*a.ValidFrom)
	return aEndsBeforeBStarts || bEndsBeforeAStarts
}

// EdgeCompositeKey is the composite bucketing key used by diff and merge
// to group edges before pairwise edges_match comparisons. SourceRep and
// TargetRep are union-find representatives in the caller's ordinal space.
type EdgeCompositeKey struct {
	SourceRep int
	TargetRep int
	EdgeType  string
}

// CompositeKey returns the bucketing key for an edge given its endpoints'
// union-find representatives, or ok=false for same_as edges, which are
// always excluded from bucketing (spec.md §4.2 step 1, §4.4 step 6, §4.5
// step 8).
func CompositeKey(sourceRep, targetRep int, edgeType omtsf.EdgeTypeTag) (EdgeCompositeKey, bool) {
	if !edgeType.IsExtension() && edgeType.Known == omtsf.EdgeTypeSameAs {
		return EdgeCompositeKey{}, false
	}
	return EdgeCompositeKey{SourceRep: sourceRep, TargetRep: targetRep, EdgeType: edgeType.String()}, true
}

// floatBitsEqual compares two optional float64 pointers by IEEE-754 bit
// pattern, per spec.md §4.2's "Numeric optional fields compared by bit
// pattern (NaN != NaN)".
func floatBitsEqual(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return math.Float64bits(*a) == math.Float64bits(*b)
}

func stringPtrEqual(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func boolPtrEqual(a, b *bool) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func datePtrEqual(a, b *omtsf.CalendarDate) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

// EdgeIdentityPropertiesMatch implements the per-edge-type identity
// property table from spec.md §4.2. Used only as the fallback path in
// EdgesMatch, when neither edge carries external (non-internal)
// identifiers.
func EdgeIdentityPropertiesMatch(edgeType omtsf.EdgeTypeTag, a, b omtsf.EdgeProperties) bool {
	if edgeType.IsExtension() {
		return true
	}
	switch edgeType.Known {
	case omtsf.EdgeTypeOwnership:
		return floatBitsEqual(a.Percentage, b.Percentage) && boolPtrEqual(a.Direct, b.Direct)
	case omtsf.EdgeTypeOperationalControl:
		return stringPtrEqual(a.ControlType, b.ControlType)
	case omtsf.EdgeTypeLegalParentage:
		return stringPtrEqual(a.ConsolidationBasis, b.ConsolidationBasis)
	case omtsf.EdgeTypeFormerIdentity:
		return stringPtrEqual(a.EventType, b.EventType) && datePtrEqual(a.EffectiveDate, b.EffectiveDate)
	case omtsf.EdgeTypeBeneficialOwnership:
		return stringPtrEqual(a.ControlType, b.ControlType) && floatBitsEqual(a.Percentage, b.Percentage)
	case omtsf.EdgeTypeSupplies, omtsf.EdgeTypeSubcontracts, omtsf.EdgeTypeSellsTo:
		return stringPtrEqual(a.Commodity, b.Commodity) && stringPtrEqual(a.ContractRef, b.ContractRef)
	case omtsf.EdgeTypeTolls, omtsf.EdgeTypeBrokers:
		return stringPtrEqual(a.Commodity, b.Commodity)
	case omtsf.EdgeTypeDistributes:
		return stringPtrEqual(a.ServiceType, b.ServiceType)
	case omtsf.EdgeTypeAttestedBy:
		return stringPtrEqual(a.Scope, b.Scope)
	case omtsf.EdgeTypeOperates, omtsf.EdgeTypeProduces, omtsf.EdgeTypeComposedOf:
		return true
	case omtsf.EdgeTypeSameAs:
		return false
	default:
		return true
	}
}

// hasExternalIdentifiers reports whether ids contains at least one
// non-internal-scheme identifier.
func hasExternalIdentifiers(ids []omtsf.Identifier) bool {
	for _, id := range ids {
		if !id.IsInternal() {
			return true
		}
	}
	return false
}

// anyIdentifierPairMatches reports whether any (x in a, y in b) pair
// satisfies IdentifiersMatch.
func anyIdentifierPairMatches(a, b []omtsf.Identifier) bool {
	for _, x := range a {
		if x.IsInternal() {
			continue
		}
		for _, y := range b {
			if y.IsInternal() {
				continue
			}
			if IdentifiersMatch(x, y) {
				return true
			}
		}
	}
	return false
}

// EdgesMatch implements spec.md §4.2's edges_match predicate. sourceRepA/
// targetRepA and sourceRepB/targetRepB are each edge's endpoints resolved
// to union-find representatives in a shared ordinal space (callers must
// resolve through the owning-file id map first, per spec.md §9).
func EdgesMatch(sourceRepA, targetRepA, sourceRepB, targetRepB int, a, b omtsf.Edge) bool {
	// 1. Either edge type is same_as -> false.
	if (!a.EdgeType.IsExtension() && a.EdgeType.Known == omtsf.EdgeTypeSameAs) ||
		(!b.EdgeType.IsExtension() && b.EdgeType.Known == omtsf.EdgeTypeSameAs) {
		return false
	}
	// 2. Endpoints must match pairwise.
	if sourceRepA != sourceRepB || targetRepA != targetRepB {
		return false
	}
	// 3. Edge types must be equal.
	if a.EdgeType.IsExtension() != b.EdgeType.IsExtension() {
		return false
	}
	if a.EdgeType.IsExtension() {
		if a.EdgeType.Extension != b.EdgeType.Extension {
			return false
		}
	} else if a.EdgeType.Known != b.EdgeType.Known {
		return false
	}

	// 4/5. External identifiers take priority; else fall back to the
	// per-type property table.
	if hasExternalIdentifiers(a.Identifiers) || hasExternalIdentifiers(b.Identifiers) {
		return anyIdentifierPairMatches(a.Identifiers, b.Identifiers)
	}
	return EdgeIdentityPropertiesMatch(a.EdgeType, a.Properties, b.Properties)
}
