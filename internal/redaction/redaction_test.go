package redaction_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BayFX/omtsf-sub000/internal/omtsf"
	"github.com/BayFX/omtsf-sub000/internal/redaction"
)

// -----------------------------------------------------------------------
// ClassifyNode
// -----------------------------------------------------------------------

func TestClassifyNode_InternalRetainsEverything(t *testing.T) {
	require.Equal(t, redaction.Retain, redaction.ClassifyNode(orgNode("o1"), omtsf.ScopeInternal))
	require.Equal(t, redaction.Retain, redaction.ClassifyNode(personNode("p1"), omtsf.ScopeInternal))
}

func TestClassifyNode_PartnerRetainsEverythingIncludingPerson(t *testing.T) {
	require.Equal(t, redaction.Retain, redaction.ClassifyNode(orgNode("o1"), omtsf.ScopePartner))
	require.Equal(t, redaction.Retain, redaction.ClassifyNode(personNode("p1"), omtsf.ScopePartner))
}

func TestClassifyNode_PublicOmitsPerson(t *testing.T) {
	require.Equal(t, redaction.Omit, redaction.ClassifyNode(personNode("p1"), omtsf.ScopePublic))
}

func TestClassifyNode_PublicRetainsNonPerson(t *testing.T) {
	require.Equal(t, redaction.Retain, redaction.ClassifyNode(orgNode("o1"), omtsf.ScopePublic))
}

// -----------------------------------------------------------------------
// FilterIdentifiers
// -----------------------------------------------------------------------

func TestFilterIdentifiers_InternalRetainsAll(t *testing.T) {
	ids := []omtsf.Identifier{publicID("lei", "A"), restrictedID("duns", "B"), confidentialID("tax", "C")}
	out := redaction.FilterIdentifiers(ids, omtsf.KnownNodeType(omtsf.NodeTypeOrganization), omtsf.ScopeInternal)
	require.Len(t, out, 3)
}

func TestFilterIdentifiers_PartnerRemovesExplicitConfidential(t *testing.T) {
	ids := []omtsf.Identifier{publicID("lei", "A"), confidentialID("tax", "C")}
	out := redaction.FilterIdentifiers(ids, omtsf.KnownNodeType(omtsf.NodeTypeOrganization), omtsf.ScopePartner)
	require.Len(t, out, 1)
	require.Equal(t, "lei", out[0].Scheme)
}

func TestFilterIdentifiers_PartnerMixedIdentifiers(t *testing.T) {
	ids := []omtsf.Identifier{publicID("lei", "A"), restrictedID("duns", "B"), confidentialID("tax", "C")}
	out := redaction.FilterIdentifiers(ids, omtsf.KnownNodeType(omtsf.NodeTypeOrganization), omtsf.ScopePartner)
	require.Len(t, out, 2)
}

func TestFilterIdentifiers_PublicRetainsPublic(t *testing.T) {
	ids := []omtsf.Identifier{publicID("lei", "A")}
	out := redaction.FilterIdentifiers(ids, omtsf.KnownNodeType(omtsf.NodeTypeOrganization), omtsf.ScopePublic)
	require.Len(t, out, 1)
}

func TestFilterIdentifiers_PublicRemovesRestricted(t *testing.T) {
	ids := []omtsf.Identifier{restrictedID("duns", "B")}
	out := redaction.FilterIdentifiers(ids, omtsf.KnownNodeType(omtsf.NodeTypeOrganization), omtsf.ScopePublic)
	require.Empty(t, out)
}

func TestFilterIdentifiers_PublicRemovesConfidential(t *testing.T) {
	ids := []omtsf.Identifier{confidentialID("tax", "C")}
	out := redaction.FilterIdentifiers(ids, omtsf.KnownNodeType(omtsf.NodeTypeOrganization), omtsf.ScopePublic)
	require.Empty(t, out)
}

func TestFilterIdentifiers_PublicPersonNodeRemovesAllByDefault(t *testing.T) {
	ids := []omtsf.Identifier{defaultID("passport", "X")}
	out := redaction.FilterIdentifiers(ids, omtsf.KnownNodeType(omtsf.NodeTypePerson), omtsf.ScopePublic)
	require.Empty(t, out)
}

func TestFilterIdentifiers_PublicPersonNodeRemovesExplicitRestricted(t *testing.T) {
	ids := []omtsf.Identifier{restrictedID("passport", "X")}
	out := redaction.FilterIdentifiers(ids, omtsf.KnownNodeType(omtsf.NodeTypePerson), omtsf.ScopePublic)
	require.Empty(t, out)
}

func TestFilterIdentifiers_PublicPersonNodeRetainsExplicitPublic(t *testing.T) {
	ids := []omtsf.Identifier{publicID("passport", "X")}
	out := redaction.FilterIdentifiers(ids, omtsf.KnownNodeType(omtsf.NodeTypePerson), omtsf.ScopePublic)
	require.Len(t, out, 1)
}

func TestFilterIdentifiers_PublicMixedIdentifiers(t *testing.T) {
	ids := []omtsf.Identifier{publicID("lei", "A"), restrictedID("duns", "B"), confidentialID("tax", "C")}
	out := redaction.FilterIdentifiers(ids, omtsf.KnownNodeType(omtsf.NodeTypeOrganization), omtsf.ScopePublic)
	require.Len(t, out, 1)
	require.Equal(t, "lei", out[0].Scheme)
}

// -----------------------------------------------------------------------
// FilterEdgeProperties
// -----------------------------------------------------------------------

func TestFilterEdgeProperties_InternalNoChange(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	e.Properties.ContractRef = strp("C-001")
	v := 5000.0
	e.Properties.Volume = &v
	p := 10.0
	e.Properties.Percentage = &p

	out := redaction.FilterEdgeProperties(e, omtsf.ScopeInternal)
	require.Equal(t, "C-001", *out.ContractRef)
	require.Equal(t, 5000.0, *out.Volume)
	require.Equal(t, 10.0, *out.Percentage)
}

func TestFilterEdgeProperties_PartnerRemovesConfidentialPercentageOnBeneficialOwnership(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeBeneficialOwnership, "src", "tgt")
	p := 15.0
	e.Properties.Percentage = &p

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePartner)
	require.Nil(t, out.Percentage)
}

func TestFilterEdgeProperties_PartnerRetainsPercentageOnOwnership(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeOwnership, "src", "tgt")
	p := 60.0
	e.Properties.Percentage = &p

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePartner)
	require.NotNil(t, out.Percentage)
	require.Equal(t, 60.0, *out.Percentage)
}

func TestFilterEdgeProperties_PartnerRetainsContractRef(t *testing.T) {
	// contract_ref defaults to restricted sensitivity, which partner scope allows.
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	e.Properties.ContractRef = strp("C-001")

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePartner)
	require.Equal(t, "C-001", *out.ContractRef)
}

func TestFilterEdgeProperties_PartnerRetainsVolumeUnit(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	e.Properties.VolumeUnit = strp("kg")

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePartner)
	require.Equal(t, "kg", *out.VolumeUnit)
}

func TestFilterEdgeProperties_PartnerRetainsPropertySensitivityMap(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	e.Properties.PropertySensitivity = map[string]omtsf.Sensitivity{"contract_ref": omtsf.SensitivityPublic}

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePartner)
	require.Equal(t, omtsf.SensitivityPublic, out.PropertySensitivity["contract_ref"])
}

func TestFilterEdgeProperties_PublicRemovesRestrictedContractRef(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	e.Properties.ContractRef = strp("C-001")

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePublic)
	require.Nil(t, out.ContractRef)
}

func TestFilterEdgeProperties_PublicRemovesRestrictedAnnualValue(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	av := 1000000.0
	e.Properties.AnnualValue = &av

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePublic)
	require.Nil(t, out.AnnualValue)
}

func TestFilterEdgeProperties_PublicRemovesRestrictedVolume(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	v := 5000.0
	e.Properties.Volume = &v

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePublic)
	require.Nil(t, out.Volume)
}

func TestFilterEdgeProperties_PublicRetainsPublicVolumeUnit(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	e.Properties.VolumeUnit = strp("kg")

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePublic)
	require.Equal(t, "kg", *out.VolumeUnit)
}

func TestFilterEdgeProperties_PublicRetainsPublicPercentageOnOwnership(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeOwnership, "src", "tgt")
	p := 60.0
	e.Properties.Percentage = &p

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePublic)
	require.NotNil(t, out.Percentage)
}

func TestFilterEdgeProperties_PublicRemovesConfidentialPercentageOnBeneficialOwnership(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeBeneficialOwnership, "src", "tgt")
	p := 15.0
	e.Properties.Percentage = &p

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePublic)
	require.Nil(t, out.Percentage)
}

func TestFilterEdgeProperties_PublicRemovesPropertySensitivityMap(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	e.Properties.PropertySensitivity = map[string]omtsf.Sensitivity{"contract_ref": omtsf.SensitivityPublic}

	out := redaction.FilterEdgeProperties(e, omtsf.ScopePublic)
	require.Nil(t, out.PropertySensitivity)
}

// -----------------------------------------------------------------------
// ClassifyEdge
// -----------------------------------------------------------------------

func TestClassifyEdge_BothRetainIsRetain(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	require.Equal(t, redaction.EdgeRetain, redaction.ClassifyEdge(e, redaction.Retain, redaction.Retain, omtsf.ScopePartner))
}

func TestClassifyEdge_BoundaryCrossingRetainReplaceIsRetain(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	require.Equal(t, redaction.EdgeRetain, redaction.ClassifyEdge(e, redaction.Retain, redaction.Replace, omtsf.ScopePartner))
}

func TestClassifyEdge_BoundaryCrossingReplaceRetainIsRetain(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	require.Equal(t, redaction.EdgeRetain, redaction.ClassifyEdge(e, redaction.Replace, redaction.Retain, omtsf.ScopePartner))
}

func TestClassifyEdge_BothReplaceIsOmit(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	require.Equal(t, redaction.EdgeOmit, redaction.ClassifyEdge(e, redaction.Replace, redaction.Replace, omtsf.ScopePartner))
}

func TestClassifyEdge_SourceOmitIsOmit(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	require.Equal(t, redaction.EdgeOmit, redaction.ClassifyEdge(e, redaction.Omit, redaction.Retain, omtsf.ScopePublic))
}

func TestClassifyEdge_TargetOmitIsOmit(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	require.Equal(t, redaction.EdgeOmit, redaction.ClassifyEdge(e, redaction.Retain, redaction.Omit, omtsf.ScopePublic))
}

func TestClassifyEdge_BothOmitIsOmit(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	require.Equal(t, redaction.EdgeOmit, redaction.ClassifyEdge(e, redaction.Omit, redaction.Omit, omtsf.ScopePublic))
}

func TestClassifyEdge_BeneficialOwnershipPublicScopeUnconditionallyOmit(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeBeneficialOwnership, "src", "tgt")
	require.Equal(t, redaction.EdgeOmit, redaction.ClassifyEdge(e, redaction.Retain, redaction.Retain, omtsf.ScopePublic))
}

func TestClassifyEdge_BeneficialOwnershipPartnerScopeNotUnconditionallyOmit(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeBeneficialOwnership, "src", "tgt")
	require.Equal(t, redaction.EdgeRetain, redaction.ClassifyEdge(e, redaction.Retain, redaction.Retain, omtsf.ScopePartner))
}

func TestClassifyEdge_BeneficialOwnershipPublicBothReplaceStillOmit(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeBeneficialOwnership, "src", "tgt")
	require.Equal(t, redaction.EdgeOmit, redaction.ClassifyEdge(e, redaction.Replace, redaction.Replace, omtsf.ScopePublic))
}

func TestClassifyEdge_PersonTargetOmitCausesBeneficialOwnershipOmit(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeBeneficialOwnership, "org-1", "person-1")
	require.Equal(t, redaction.EdgeOmit, redaction.ClassifyEdge(e, redaction.Retain, redaction.Omit, omtsf.ScopePublic))
}

func TestClassifyEdge_SuppliesWithOmitSourceInPartnerScopeIsOmit(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeSupplies, "src", "tgt")
	require.Equal(t, redaction.EdgeOmit, redaction.ClassifyEdge(e, redaction.Omit, redaction.Retain, omtsf.ScopePartner))
}

func TestClassifyEdge_InternalScopeBeneficialOwnershipRetain(t *testing.T) {
	e := makeEdge(omtsf.EdgeTypeBeneficialOwnership, "src", "tgt")
	require.Equal(t, redaction.EdgeRetain, redaction.ClassifyEdge(e, redaction.Retain, redaction.Retain, omtsf.ScopeInternal))
}

// -----------------------------------------------------------------------
// Redact — integration
// -----------------------------------------------------------------------

func TestRedact_InternalScopeIsNoOpExceptScopeTag(t *testing.T) {
	f := makeFile([]omtsf.Node{orgNode("org-1"), personNode("person-1")}, nil)

	out, err := redaction.Redact(f, omtsf.ScopeInternal, nil)
	require.NoError(t, err)
	require.Len(t, out.Nodes, 2)
	require.NotNil(t, out.DisclosureScope)
	require.Equal(t, omtsf.ScopeInternal, *out.DisclosureScope)
}

func TestRedact_PublicScopeOmitsPersonNode(t *testing.T) {
	f := makeFile([]omtsf.Node{orgNode("org-1"), personNode("person-1")}, nil)

	out, err := redaction.Redact(f, omtsf.ScopePublic, nil)
	require.NoError(t, err)
	for _, n := range out.Nodes {
		require.NotEqual(t, omtsf.NodeTypePerson, n.NodeType.Known)
	}
}

func TestRedact_RetainIDsKeepsNodeAsRetainNotReplace(t *testing.T) {
	org := withIdentifier(orgNode("org-1"), publicID("lei", "5493006MHB84DD0ZWV18"))
	f := makeFile([]omtsf.Node{org}, nil)

	out, err := redaction.Redact(f, omtsf.ScopePublic, map[omtsf.NodeId]bool{"org-1": true})
	require.NoError(t, err)
	require.Len(t, out.Nodes, 1)
	require.Equal(t, omtsf.NodeId("org-1"), out.Nodes[0].Id)
	require.Equal(t, omtsf.NodeTypeOrganization, out.Nodes[0].NodeType.Known)
}

func TestRedact_NonRetainedNodeIsReplacedWithBoundaryRefStub(t *testing.T) {
	org := withIdentifier(orgNode("org-1"), publicID("lei", "5493006MHB84DD0ZWV18"))
	f := makeFile([]omtsf.Node{org}, nil)

	out, err := redaction.Redact(f, omtsf.ScopePublic, nil)
	require.NoError(t, err)
	require.Len(t, out.Nodes, 1)
	require.Equal(t, omtsf.NodeId("org-1"), out.Nodes[0].Id)
	require.Equal(t, omtsf.NodeTypeBoundaryRef, out.Nodes[0].NodeType.Known)
	require.Len(t, out.Nodes[0].Identifiers, 1)
	require.Equal(t, "opaque", out.Nodes[0].Identifiers[0].Scheme)
}

func TestRedact_BoundaryRefHashIsDeterministicForSameSaltAndIdentifiers(t *testing.T) {
	org := withIdentifier(orgNode("org-1"), publicID("lei", "5493006MHB84DD0ZWV18"))
	f1 := makeFile([]omtsf.Node{org}, nil)
	f2 := makeFile([]omtsf.Node{org}, nil)

	out1, err := redaction.Redact(f1, omtsf.ScopePublic, nil)
	require.NoError(t, err)
	out2, err := redaction.Redact(f2, omtsf.ScopePublic, nil)
	require.NoError(t, err)
	require.Equal(t, out1.Nodes[0].Identifiers[0].Value, out2.Nodes[0].Identifiers[0].Value)
}

func TestRedact_ExistingBoundaryRefNodeIsUnconditionallyRetained(t *testing.T) {
	f := makeFile([]omtsf.Node{boundaryRefNode("ref-1")}, nil)

	out, err := redaction.Redact(f, omtsf.ScopePublic, nil)
	require.NoError(t, err)
	require.Len(t, out.Nodes, 1)
	require.Equal(t, omtsf.NodeTypeBoundaryRef, out.Nodes[0].NodeType.Known)
	require.Equal(t, "deadbeef", out.Nodes[0].Identifiers[0].Value)
}

func TestRedact_EdgeBetweenTwoRetainedNodesIsRetained(t *testing.T) {
	a := withIdentifier(orgNode("org-a"), publicID("lei", "5493006MHB84DD0ZWV18"))
	b := withIdentifier(orgNode("org-b"), publicID("lei", "529900T8BM49AURSDO55"))
	edge := makeEdge(omtsf.EdgeTypeSupplies, "org-a", "org-b")
	f := makeFile([]omtsf.Node{a, b}, []omtsf.Edge{edge})

	out, err := redaction.Redact(f, omtsf.ScopePublic, map[omtsf.NodeId]bool{"org-a": true, "org-b": true})
	require.NoError(t, err)
	require.Len(t, out.Edges, 1)
}

func TestRedact_EdgeBetweenTwoReplacedNodesIsOmitted(t *testing.T) {
	a := withIdentifier(orgNode("org-a"), publicID("lei", "5493006MHB84DD0ZWV18"))
	b := withIdentifier(orgNode("org-b"), publicID("lei", "529900T8BM49AURSDO55"))
	edge := makeEdge(omtsf.EdgeTypeSupplies, "org-a", "org-b")
	f := makeFile([]omtsf.Node{a, b}, []omtsf.Edge{edge})

	out, err := redaction.Redact(f, omtsf.ScopePublic, nil)
	require.NoError(t, err)
	require.Empty(t, out.Edges)
}

func TestRedact_EdgeWithOmittedEndpointIsOmitted(t *testing.T) {
	org := withIdentifier(orgNode("org-1"), publicID("lei", "5493006MHB84DD0ZWV18"))
	person := personNode("person-1")
	edge := makeEdge(omtsf.EdgeTypeBeneficialOwnership, "org-1", "person-1")
	f := makeFile([]omtsf.Node{org, person}, []omtsf.Edge{edge})

	out, err := redaction.Redact(f, omtsf.ScopePublic, map[omtsf.NodeId]bool{"org-1": true})
	require.NoError(t, err)
	require.Empty(t, out.Edges)
}

func TestRedact_EdgePropertiesAreFilteredInOutput(t *testing.T) {
	a := withIdentifier(orgNode("org-a"), publicID("lei", "5493006MHB84DD0ZWV18"))
	b := withIdentifier(orgNode("org-b"), publicID("lei", "529900T8BM49AURSDO55"))
	edge := makeEdge(omtsf.EdgeTypeSupplies, "org-a", "org-b")
	edge.Properties.ContractRef = strp("C-001")
	f := makeFile([]omtsf.Node{a, b}, []omtsf.Edge{edge})

	out, err := redaction.Redact(f, omtsf.ScopePublic, map[omtsf.NodeId]bool{"org-a": true, "org-b": true})
	require.NoError(t, err)
	require.Len(t, out.Edges, 1)
	require.Nil(t, out.Edges[0].Properties.ContractRef)
}

func TestRedact_PreservesFileHeaderFields(t *testing.T) {
	f := makeFile([]omtsf.Node{orgNode("org-1")}, nil)

	out, err := redaction.Redact(f, omtsf.ScopePartner, map[omtsf.NodeId]bool{"org-1": true})
	require.NoError(t, err)
	require.Equal(t, f.OmtsfVersion, out.OmtsfVersion)
	require.Equal(t, f.SnapshotDate, out.SnapshotDate)
	require.Equal(t, f.FileSalt, out.FileSalt)
}
