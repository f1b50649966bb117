package validation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BayFX/omtsf-sub000/internal/omtsf"
	"github.com/BayFX/omtsf-sub000/internal/validation"
)

func runRule(rule validation.ValidationRule, file *omtsf.File) []validation.Diagnostic {
	diags := make([]validation.Diagnostic, 0)
	rule.Check(file, &diags)
	return diags
}

func TestGdmRule01_DuplicateNodeId(t *testing.T) {
	file := makeFile([]omtsf.Node{
		node("n-1", omtsf.NodeTypeOrganization),
		node("n-1", omtsf.NodeTypeFacility),
	}, nil)
	diags := runRule(validation.GdmRule01{}, file)
	require.Len(t, diags, 1)
	require.Equal(t, validation.RuleGdm01, diags[0].RuleId)
	require.Equal(t, validation.SeverityError, diags[0].Severity)
}

func TestGdmRule01_NoDuplicatesPasses(t *testing.T) {
	file := makeFile([]omtsf.Node{
		node("n-1", omtsf.NodeTypeOrganization),
		node("n-2", omtsf.NodeTypeFacility),
	}, nil)
	require.Empty(t, runRule(validation.GdmRule01{}, file))
}

func TestGdmRule02_DuplicateEdgeId(t *testing.T) {
	file := makeFile(
		[]omtsf.Node{node("o1", omtsf.NodeTypeOrganization), node("o2", omtsf.NodeTypeOrganization)},
		[]omtsf.Edge{
			edge("e-1", omtsf.EdgeTypeSupplies, "o1", "o2"),
			edge("e-1", omtsf.EdgeTypeSupplies, "o2", "o1"),
		},
	)
	diags := runRule(validation.GdmRule02{}, file)
	require.Len(t, diags, 1)
}

func TestGdmRule03_DanglingSourceAndTarget(t *testing.T) {
	file := makeFile(
		[]omtsf.Node{node("o1", omtsf.NodeTypeOrganization)},
		[]omtsf.Edge{edge("e-1", omtsf.EdgeTypeSupplies, "missing-src", "o1")},
	)
	diags := runRule(validation.GdmRule03{}, file)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "missing-src")
}

func TestGdmRule03_ValidEndpointsPass(t *testing.T) {
	file := makeFile(
		[]omtsf.Node{node("o1", omtsf.NodeTypeOrganization), node("o2", omtsf.NodeTypeOrganization)},
		[]omtsf.Edge{edge("e-1", omtsf.EdgeTypeSupplies, "o1", "o2")},
	)
	require.Empty(t, runRule(validation.GdmRule03{}, file))
}

func TestGdmRule04_ExtensionTypeWithDotPasses(t *testing.T) {
	e := omtsf.Edge{Id: "e-1", EdgeType: omtsf.ExtensionEdgeType("com.example.custom"), Source: "o1", Target: "o2"}
	file := makeFile(
		[]omtsf.Node{node("o1", omtsf.NodeTypeOrganization), node("o2", omtsf.NodeTypeOrganization)},
		[]omtsf.Edge{e},
	)
	require.Empty(t, runRule(validation.GdmRule04{}, file))
}

func TestGdmRule04_ExtensionTypeWithoutDotFails(t *testing.T) {
	e := omtsf.Edge{Id: "e-1", EdgeType: omtsf.ExtensionEdgeType("bogus"), Source: "o1", Target: "o2"}
	file := makeFile(nil, []omtsf.Edge{e})
	diags := runRule(validation.GdmRule04{}, file)
	require.Len(t, diags, 1)
}

func TestGdmRule05_MissingReportingEntityOk(t *testing.T) {
	file := makeFile(nil, nil)
	require.Empty(t, runRule(validation.GdmRule05{}, file))
}

func TestGdmRule05_ReportingEntityReferencesOrganization(t *testing.T) {
	id := omtsf.NodeId("org-1")
	file := makeFile([]omtsf.Node{node("org-1", omtsf.NodeTypeOrganization)}, nil)
	file.ReportingEntity = &id
	require.Empty(t, runRule(validation.GdmRule05{}, file))
}

func TestGdmRule05_ReportingEntityReferencesNonOrganizationFails(t *testing.T) {
	id := omtsf.NodeId("fac-1")
	file := makeFile([]omtsf.Node{node("fac-1", omtsf.NodeTypeFacility)}, nil)
	file.ReportingEntity = &id
	diags := runRule(validation.GdmRule05{}, file)
	require.Len(t, diags, 1)
}

func TestGdmRule05_ReportingEntityDanglingFails(t *testing.T) {
	id := omtsf.NodeId("missing")
	file := makeFile(nil, nil)
	file.ReportingEntity = &id
	diags := runRule(validation.GdmRule05{}, file)
	require.Len(t, diags, 1)
}

func TestGdmRule06_OwnershipOrgToOrgPasses(t *testing.T) {
	file := makeFile(
		[]omtsf.Node{node("o1", omtsf.NodeTypeOrganization), node("o2", omtsf.NodeTypeOrganization)},
		[]omtsf.Edge{edge("e-1", omtsf.EdgeTypeOwnership, "o1", "o2")},
	)
	require.Empty(t, runRule(validation.GdmRule06{}, file))
}

func TestGdmRule06_OwnershipWithFacilityTargetFails(t *testing.T) {
	file := makeFile(
		[]omtsf.Node{node("o1", omtsf.NodeTypeOrganization), node("f1", omtsf.NodeTypeFacility)},
		[]omtsf.Edge{edge("e-1", omtsf.EdgeTypeOwnership, "o1", "f1")},
	)
	diags := runRule(validation.GdmRule06{}, file)
	require.Len(t, diags, 1)
}

func TestGdmRule06_OperationalControlAllowsFacilityTarget(t *testing.T) {
	file := makeFile(
		[]omtsf.Node{node("o1", omtsf.NodeTypeOrganization), node("f1", omtsf.NodeTypeFacility)},
		[]omtsf.Edge{edge("e-1", omtsf.EdgeTypeOperationalControl, "o1", "f1")},
	)
	require.Empty(t, runRule(validation.GdmRule06{}, file))
}

func TestGdmRule06_ProducesFacilityToConsignmentPasses(t *testing.T) {
	file := makeFile(
		[]omtsf.Node{node("f1", omtsf.NodeTypeFacility), node("c1", omtsf.NodeTypeConsignment)},
		[]omtsf.Edge{edge("e-1", omtsf.EdgeTypeProduces, "f1", "c1")},
	)
	require.Empty(t, runRule(validation.GdmRule06{}, file))
}

func TestGdmRule06_BoundaryRefEndpointExempt(t *testing.T) {
	file := makeFile(
		[]omtsf.Node{node("o1", omtsf.NodeTypeOrganization), node("b1", omtsf.NodeTypeBoundaryRef)},
		[]omtsf.Edge{edge("e-1", omtsf.EdgeTypeOwnership, "o1", "b1")},
	)
	require.Empty(t, runRule(validation.GdmRule06{}, file))
}

func TestGdmRule06_BoundaryRefTargetDoesNotExemptBadSource(t *testing.T) {
	// ownership requires an organization source; a boundary_ref target must
	// not mask an invalid source type at the other endpoint.
	file := makeFile(
		[]omtsf.Node{node("p1", omtsf.NodeTypePerson), node("b1", omtsf.NodeTypeBoundaryRef)},
		[]omtsf.Edge{edge("e-1", omtsf.EdgeTypeOwnership, "p1", "b1")},
	)
	diags := runRule(validation.GdmRule06{}, file)
	require.Len(t, diags, 1)
}

func TestGdmRule06_SameAsHasNoConstraint(t *testing.T) {
	file := makeFile(
		[]omtsf.Node{node("g1", omtsf.NodeTypeGood), node("p1", omtsf.NodeTypePerson)},
		[]omtsf.Edge{edge("e-1", omtsf.EdgeTypeSameAs, "g1", "p1")},
	)
	require.Empty(t, runRule(validation.GdmRule06{}, file))
}

func TestGdmRule06_DanglingEndpointSkipped(t *testing.T) {
	// GdmRule03 reports the dangling reference; GdmRule06 must not also
	// panic or double-report on a missing node.
	file := makeFile(nil, []omtsf.Edge{edge("e-1", omtsf.EdgeTypeOwnership, "missing-a", "missing-b")})
	require.Empty(t, runRule(validation.GdmRule06{}, file))
}
