package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BayFX/omtsf-sub000/internal/identity"
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

func date(s string) *omtsf.CalendarDate {
	d, err := omtsf.NewCalendarDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestIdentifiersMatch_Symmetric(t *testing.T) {
	a := omtsf.Identifier{Scheme: "lei", Value: "5493006MHB84DD0ZWV18"}
	b := omtsf.Identifier{Scheme: "lei", Value: "5493006MHB84DD0ZWV18"}
	require.Equal(t, identity.IdentifiersMatch(a, b), identity.IdentifiersMatch(b, a))
	require.True(t, identity.IdentifiersMatch(a, b))
}

func TestIdentifiersMatch_InternalSchemeExcluded(t *testing.T) {
	a := omtsf.Identifier{Scheme: "internal", Value: "x"}
	b := omtsf.Identifier{Scheme: "internal", Value: "x"}
	require.False(t, identity.IdentifiersMatch(a, b))
}

func TestIdentifiersMatch_SchemeMismatch(t *testing.T) {
	a := omtsf.Identifier{Scheme: "lei", Value: "X"}
	b := omtsf.Identifier{Scheme: "duns", Value: "X"}
	require.False(t, identity.IdentifiersMatch(a, b))
}

func TestIdentifiersMatch_ValueTrimmedCompare(t *testing.T) {
	a := omtsf.Identifier{Scheme: "duns", Value: " 081466849 "}
	b := omtsf.Identifier{Scheme: "duns", Value: "081466849"}
	require.True(t, identity.IdentifiersMatch(a, b))
}

func TestIdentifiersMatch_OneSidedAuthorityRejected(t *testing.T) {
	a := omtsf.Identifier{Scheme: "nat-reg", Value: "HRB:1", Authority: "RA1"}
	b := omtsf.Identifier{Scheme: "nat-reg", Value: "HRB:1"}
	require.False(t, identity.IdentifiersMatch(a, b))
}

func TestIdentifiersMatch_AuthorityCaseInsensitive(t *testing.T) {
	a := omtsf.Identifier{Scheme: "nat-reg", Value: "HRB:1", Authority: "RA000548"}
	b := omtsf.Identifier{Scheme: "nat-reg", Value: "HRB:1", Authority: "ra000548"}
	require.True(t, identity.IdentifiersMatch(a, b))
}

func TestTemporalCompatible_AbsentFieldsAlwaysCompatible(t *testing.T) {
	a := omtsf.Identifier{Scheme: "duns", Value: "1"}
	b := omtsf.Identifier{Scheme: "duns", Value: "1", ValidFrom: date("2020-01-01")}
	require.True(t, identity.TemporalCompatible(a, b))
}

func TestTemporalCompatible_OpenEndedNeverDisjoint(t *testing.T) {
	a := omtsf.Identifier{Scheme: "duns", Value: "1", ValidFrom: date("2020-01-01"), ValidTo: omtsf.OpenEnded()}
	b := omtsf.Identifier{Scheme: "duns", Value: "1", ValidFrom: date("2025-01-01")}
	require.True(t, identity.TemporalCompatible(a, b))
}

func TestTemporalCompatible_DisjointIntervals(t *testing.T) {
	a := omtsf.Identifier{Scheme: "duns", Value: "1", ValidFrom: date("2010-01-01"), ValidTo: omtsf.DatedTo(*date("2012-01-01"))}
	b := omtsf.Identifier{Scheme: "duns", Value: "1", ValidFrom: date("2020-01-01")}
	require.False(t, identity.TemporalCompatible(a, b))
}

func TestTemporalCompatible_OverlappingIntervals(t *testing.T) {
	a := omtsf.Identifier{Scheme: "duns", Value: "1", ValidFrom: date("2010-01-01"), ValidTo: omtsf.DatedTo(*date("2022-01-01"))}
	b := omtsf.Identifier{Scheme: "duns", Value: "1", ValidFrom: date("2020-01-01")}
	require.True(t, identity.TemporalCompatible(a, b))
}

func TestCompositeKey_SameAsExcluded(t *testing.T) {
	_, ok := identity.CompositeKey(1, 2, omtsf.KnownEdgeType(omtsf.EdgeTypeSameAs))
	require.False(t, ok)
}

func TestCompositeKey_OtherTypesIncluded(t *testing.T) {
	key, ok := identity.CompositeKey(1, 2, omtsf.KnownEdgeType(omtsf.EdgeTypeOwnership))
	require.True(t, ok)
	require.Equal(t, identity.EdgeCompositeKey{SourceRep: 1, TargetRep: 2, EdgeType: "ownership"}, key)
}

func percent(f float64) *float64 { return &f }

func TestEdgeIdentityPropertiesMatch_Ownership(t *testing.T) {
	a := omtsf.EdgeProperties{Percentage: percent(51.0)}
	b := omtsf.EdgeProperties{Percentage: percent(51.0)}
	require.True(t, identity.EdgeIdentityPropertiesMatch(omtsf.KnownEdgeType(omtsf.EdgeTypeOwnership), a, b))

	c := omtsf.EdgeProperties{Percentage: percent(60.0)}
	require.False(t, identity.EdgeIdentityPropertiesMatch(omtsf.KnownEdgeType(omtsf.EdgeTypeOwnership), a, c))
}

func TestEdgeIdentityPropertiesMatch_StructuralTypesAlwaysMatch(t *testing.T) {
	require.True(t, identity.EdgeIdentityPropertiesMatch(omtsf.KnownEdgeType(omtsf.EdgeTypeOperates), omtsf.EdgeProperties{}, omtsf.EdgeProperties{}))
}

func TestEdgesMatch_SameAsNeverMatches(t *testing.T) {
	a := omtsf.Edge{EdgeType: omtsf.KnownEdgeType(omtsf.EdgeTypeSameAs)}
	b := omtsf.Edge{EdgeType: omtsf.KnownEdgeType(omtsf.EdgeTypeSameAs)}
	require.False(t, identity.EdgesMatch(1, 2, 1, 2, a, b))
}

func TestEdgesMatch_EndpointsMustAgree(t *testing.T) {
	a := omtsf.Edge{EdgeType: omtsf.KnownEdgeType(omtsf.EdgeTypeSupplies)}
	b := omtsf.Edge{EdgeType: omtsf.KnownEdgeType(omtsf.EdgeTypeSupplies)}
	require.False(t, identity.EdgesMatch(1, 2, 1, 3, a, b))
}

func TestEdgesMatch_FallsBackToPropertiesWhenNoExternalIdentifiers(t *testing.T) {
	commodity := "steel"
	a := omtsf.Edge{
		EdgeType:   omtsf.KnownEdgeType(omtsf.EdgeTypeSupplies),
		Properties: omtsf.EdgeProperties{Commodity: &commodity},
	}
	b := omtsf.Edge{
		EdgeType:   omtsf.KnownEdgeType(omtsf.EdgeTypeSupplies),
		Properties: omtsf.EdgeProperties{Commodity: &commodity},
	}
	require.True(t, identity.EdgesMatch(1, 2, 1, 2, a, b))
}

func TestEdgesMatch_ExternalIdentifiersTakePriority(t *testing.T) {
	a := omtsf.Edge{
		EdgeType:    omtsf.KnownEdgeType(omtsf.EdgeTypeSupplies),
		Identifiers: []omtsf.Identifier{{Scheme: "contract", Value: "C1"}},
	}
	b := omtsf.Edge{
		EdgeType:    omtsf.KnownEdgeType(omtsf.EdgeTypeSupplies),
		Identifiers: []omtsf.Identifier{{Scheme: "contract", Value: "C2"}},
	}
	require.False(t, identity.EdgesMatch(1, 2, 1, 2, a, b))
}
