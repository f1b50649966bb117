package omtsf

import "encoding/json"

// marshalWithExtra marshals known via its own json tags, then merges extra
// on top of the resulting object so unknown fields round-trip verbatim
// (spec.md §6.1 "unknown fields preserved").
func marshalWithExtra(known interface{}, extra map[string]interface{}) ([]byte, error) {
	base, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}

// unmarshalWithExtra decodes data into known, then collects every JSON key
// not present in knownKeys into a generic map for round-tripping.
func unmarshalWithExtra(data []byte, known interface{}, knownKeys map[string]bool) (map[string]interface{}, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var extra map[string]interface{}
	for k, v := range raw {
		if knownKeys[k] {
			continue
		}
		var val interface{}
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		if extra == nil {
			extra = make(map[string]interface{})
		}
		extra[k] = val
	}
	return extra, nil
}

func isExtensionTypeString(s string) bool {
	for _, r := range s {
		if r == '.' {
			return true
		}
	}
	return false
}

// MarshalJSON renders a NodeTypeTag as its bare type string (spec.md
// §3.3): the known variant name, or the extension string verbatim.
func (t NodeTypeTag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON classifies the type string as a known core variant or an
// extension type (reverse-domain form, containing a '.').
func (t *NodeTypeTag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if isExtensionTypeString(s) {
		*t = NodeTypeTag{Extension: s}
	} else {
		*t = NodeTypeTag{Known: NodeType(s)}
	}
	return nil
}

// MarshalJSON renders an EdgeTypeTag as its bare type string.
func (t EdgeTypeTag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON classifies the type string as a known core variant or an
// extension type.
func (t *EdgeTypeTag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if isExtensionTypeString(s) {
		*t = EdgeTypeTag{Extension: s}
	} else {
		*t = EdgeTypeTag{Known: EdgeType(s)}
	}
	return nil
}

type identifierJSON struct {
	Scheme             string        `json:"scheme"`
	Value              string        `json:"value"`
	Authority          string        `json:"authority,omitempty"`
	ValidFrom          *CalendarDate `json:"valid_from,omitempty"`
	ValidTo            *OptionalDate `json:"valid_to,omitempty"`
	Sensitivity        Sensitivity   `json:"sensitivity,omitempty"`
	VerificationStatus string        `json:"verification_status,omitempty"`
	VerificationDate   *CalendarDate `json:"verification_date,omitempty"`
}

var identifierKnownKeys = map[string]bool{
	"scheme": true, "value": true, "authority": true, "valid_from": true,
	"valid_to": true, "sensitivity": true, "verification_status": true,
	"verification_date": true,
}

func (id Identifier) MarshalJSON() ([]byte, error) {
	j := identifierJSON{
		Scheme: id.Scheme, Value: id.Value, Authority: id.Authority,
		ValidFrom: id.ValidFrom, Sensitivity: id.Sensitivity,
		VerificationStatus: id.VerificationStatus, VerificationDate: id.VerificationDate,
	}
	if id.ValidTo.Present {
		v := id.ValidTo
		j.ValidTo = &v
	}
	return marshalWithExtra(j, id.Extra)
}

func (id *Identifier) UnmarshalJSON(data []byte) error {
	var j identifierJSON
	extra, err := unmarshalWithExtra(data, &j, identifierKnownKeys)
	if err != nil {
		return err
	}
	id.Scheme, id.Value, id.Authority = j.Scheme, j.Value, j.Authority
	id.ValidFrom = j.ValidFrom
	id.Sensitivity = j.Sensitivity
	id.VerificationStatus = j.VerificationStatus
	id.VerificationDate = j.VerificationDate
	if j.ValidTo != nil {
		id.ValidTo = *j.ValidTo
	} else {
		id.ValidTo = NoDate
	}
	id.Extra = extra
	return nil
}

type dataQualityJSON struct {
	Source     string        `json:"source,omitempty"`
	Method     string        `json:"method,omitempty"`
	Confidence *float64      `json:"confidence,omitempty"`
	AsOf       *CalendarDate `json:"as_of,omitempty"`
}

var dataQualityKnownKeys = map[string]bool{"source": true, "method": true, "confidence": true, "as_of": true}

func (dq DataQuality) MarshalJSON() ([]byte, error) {
	j := dataQualityJSON{Source: dq.Source, Method: dq.Method, Confidence: dq.Confidence, AsOf: dq.AsOf}
	return marshalWithExtra(j, dq.Extra)
}

func (dq *DataQuality) UnmarshalJSON(data []byte) error {
	var j dataQualityJSON
	extra, err := unmarshalWithExtra(data, &j, dataQualityKnownKeys)
	if err != nil {
		return err
	}
	dq.Source, dq.Method, dq.Confidence, dq.AsOf = j.Source, j.Method, j.Confidence, j.AsOf
	dq.Extra = extra
	return nil
}

type labelJSON struct {
	Key   string  `json:"key"`
	Value *string `json:"value,omitempty"`
}

func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(labelJSON{Key: l.Key, Value: l.Value})
}

func (l *Label) UnmarshalJSON(data []byte) error {
	var j labelJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	l.Key, l.Value = j.Key, j.Value
	return nil
}

type nodeJSON struct {
	Id           NodeId        `json:"id"`
	Type         NodeTypeTag   `json:"type"`
	Identifiers  []Identifier  `json:"identifiers,omitempty"`
	DataQuality  *DataQuality  `json:"data_quality,omitempty"`
	Labels       []Label       `json:"labels,omitempty"`
	Name         *string       `json:"name,omitempty"`
	Jurisdiction *CountryCode  `json:"jurisdiction,omitempty"`
	Status       *string       `json:"status,omitempty"`

	GovernanceStructure *string `json:"governance_structure,omitempty"`

	Operator *string `json:"operator,omitempty"`
	Address  *string `json:"address,omitempty"`
	GeoCoord *Geo    `json:"geo_coord,omitempty"`

	CommodityCode *string `json:"commodity_code,omitempty"`
	Unit          *string `json:"unit,omitempty"`

	Role *string `json:"role,omitempty"`

	AttestationType   *string       `json:"attestation_type,omitempty"`
	Standard          *string       `json:"standard,omitempty"`
	Issuer            *string       `json:"issuer,omitempty"`
	ValidFrom         *CalendarDate `json:"valid_from,omitempty"`
	ValidTo           *OptionalDate `json:"valid_to,omitempty"`
	Outcome           *string       `json:"outcome,omitempty"`
	AttestationStatus *string       `json:"attestation_status,omitempty"`
	Reference         *string       `json:"reference,omitempty"`
	RiskSeverity      *string       `json:"risk_severity,omitempty"`
	RiskLikelihood    *string       `json:"risk_likelihood,omitempty"`

	LotId                 *string       `json:"lot_id,omitempty"`
	Quantity              *float64      `json:"quantity,omitempty"`
	ProductionDate        *CalendarDate `json:"production_date,omitempty"`
	OriginCountry         *CountryCode  `json:"origin_country,omitempty"`
	DirectEmissionsCO2e   *float64      `json:"direct_emissions_co2e,omitempty"`
	IndirectEmissionsCO2e *float64      `json:"indirect_emissions_co2e,omitempty"`
	EmissionFactorSource  *string       `json:"emission_factor_source,omitempty"`
	InstallationId        *string       `json:"installation_id,omitempty"`
}

var nodeKnownKeys = map[string]bool{
	"id": true, "type": true, "identifiers": true, "data_quality": true, "labels": true,
	"name": true, "jurisdiction": true, "status": true, "governance_structure": true,
	"operator": true, "address": true, "geo_coord": true, "commodity_code": true, "unit": true,
	"role": true, "attestation_type": true, "standard": true, "issuer": true, "valid_from": true,
	"valid_to": true, "outcome": true, "attestation_status": true, "reference": true,
	"risk_severity": true, "risk_likelihood": true, "lot_id": true, "quantity": true,
	"production_date": true, "origin_country": true, "direct_emissions_co2e": true,
	"indirect_emissions_co2e": true, "emission_factor_source": true, "installation_id": true,
}

func nodeToJSON(n *Node) nodeJSON {
	j := nodeJSON{
		Id: n.Id, Type: n.NodeType, Identifiers: n.Identifiers, DataQuality: n.DataQuality,
		Labels: n.Labels, Name: n.Name, Jurisdiction: n.Jurisdiction, Status: n.Status,
		GovernanceStructure: n.GovernanceStructure, Operator: n.Operator, Address: n.Address,
		GeoCoord: n.GeoCoord, CommodityCode: n.CommodityCode, Unit: n.Unit, Role: n.Role,
		AttestationType: n.AttestationType, Standard: n.Standard, Issuer: n.Issuer,
		ValidFrom: n.ValidFrom, Outcome: n.Outcome, AttestationStatus: n.AttestationStatus,
		Reference: n.Reference, RiskSeverity: n.RiskSeverity, RiskLikelihood: n.RiskLikelihood,
		LotId: n.LotId, Quantity: n.Quantity, ProductionDate: n.ProductionDate,
		OriginCountry: n.OriginCountry, DirectEmissionsCO2e: n.DirectEmissionsCO2e,
		IndirectEmissionsCO2e: n.IndirectEmissionsCO2e, EmissionFactorSource: n.EmissionFactorSource,
		InstallationId: n.InstallationId,
	}
	if n.ValidTo.Present {
		v := n.ValidTo
		j.ValidTo = &v
	}
	return j
}

func (n Node) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(nodeToJSON(&n), n.Extra)
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var j nodeJSON
	extra, err := unmarshalWithExtra(data, &j, nodeKnownKeys)
	if err != nil {
		return err
	}
	n.Id, n.NodeType, n.Identifiers = j.Id, j.Type, j.Identifiers
	n.DataQuality, n.Labels, n.Name = j.DataQuality, j.Labels, j.Name
	n.Jurisdiction, n.Status = j.Jurisdiction, j.Status
	n.GovernanceStructure = j.GovernanceStructure
	n.Operator, n.Address, n.GeoCoord = j.Operator, j.Address, j.GeoCoord
	n.CommodityCode, n.Unit = j.CommodityCode, j.Unit
	n.Role = j.Role
	n.AttestationType, n.Standard, n.Issuer = j.AttestationType, j.Standard, j.Issuer
	n.ValidFrom = j.ValidFrom
	n.Outcome, n.AttestationStatus, n.Reference = j.Outcome, j.AttestationStatus, j.Reference
	n.RiskSeverity, n.RiskLikelihood = j.RiskSeverity, j.RiskLikelihood
	n.LotId, n.Quantity, n.ProductionDate = j.LotId, j.Quantity, j.ProductionDate
	n.OriginCountry = j.OriginCountry
	n.DirectEmissionsCO2e, n.IndirectEmissionsCO2e = j.DirectEmissionsCO2e, j.IndirectEmissionsCO2e
	n.EmissionFactorSource, n.InstallationId = j.EmissionFactorSource, j.InstallationId
	if j.ValidTo != nil {
		n.ValidTo = *j.ValidTo
	} else {
		n.ValidTo = NoDate
	}
	n.Extra = extra
	return nil
}

type edgePropertiesJSON struct {
	DataQuality *DataQuality  `json:"data_quality,omitempty"`
	Labels      []Label       `json:"labels,omitempty"`
	ValidFrom   *CalendarDate `json:"valid_from,omitempty"`
	ValidTo     *OptionalDate `json:"valid_to,omitempty"`

	Percentage *float64 `json:"percentage,omitempty"`
	Direct     *bool    `json:"direct,omitempty"`

	ControlType *string `json:"control_type,omitempty"`

	ConsolidationBasis *string `json:"consolidation_basis,omitempty"`

	EventType     *string       `json:"event_type,omitempty"`
	EffectiveDate *CalendarDate `json:"effective_date,omitempty"`
	Description   *string       `json:"description,omitempty"`

	Commodity   *string  `json:"commodity,omitempty"`
	ContractRef *string  `json:"contract_ref,omitempty"`
	Volume      *float64 `json:"volume,omitempty"`
	VolumeUnit  *string  `json:"volume_unit,omitempty"`

	AnnualValue        *float64 `json:"annual_value,omitempty"`
	ValueCurrency      *string  `json:"value_currency,omitempty"`
	Tier               *int     `json:"tier,omitempty"`
	ShareOfBuyerDemand *float64 `json:"share_of_buyer_demand,omitempty"`

	ServiceType *string `json:"service_type,omitempty"`

	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`

	Scope *string `json:"scope,omitempty"`

	PropertySensitivity map[string]Sensitivity `json:"_property_sensitivity,omitempty"`
}

var edgePropertiesKnownKeys = map[string]bool{
	"data_quality": true, "labels": true, "valid_from": true, "valid_to": true,
	"percentage": true, "direct": true, "control_type": true, "consolidation_basis": true,
	"event_type": true, "effective_date": true, "description": true, "commodity": true,
	"contract_ref": true, "volume": true, "volume_unit": true, "annual_value": true,
	"value_currency": true, "tier": true, "share_of_buyer_demand": true, "service_type": true,
	"quantity": true, "unit": true, "scope": true, "_property_sensitivity": true,
}

func edgePropertiesToJSON(p *EdgeProperties) edgePropertiesJSON {
	j := edgePropertiesJSON{
		DataQuality: p.DataQuality, Labels: p.Labels, ValidFrom: p.ValidFrom,
		Percentage: p.Percentage, Direct: p.Direct, ControlType: p.ControlType,
		ConsolidationBasis: p.ConsolidationBasis, EventType: p.EventType,
		EffectiveDate: p.EffectiveDate, Description: p.Description, Commodity: p.Commodity,
		ContractRef: p.ContractRef, Volume: p.Volume, VolumeUnit: p.VolumeUnit,
		AnnualValue: p.AnnualValue, ValueCurrency: p.ValueCurrency, Tier: p.Tier,
		ShareOfBuyerDemand: p.ShareOfBuyerDemand, ServiceType: p.ServiceType,
		Quantity: p.Quantity, Unit: p.Unit, Scope: p.Scope,
		PropertySensitivity: p.PropertySensitivity,
	}
	if p.ValidTo.Present {
		v := p.ValidTo
		j.ValidTo = &v
	}
	return j
}

func (p EdgeProperties) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(edgePropertiesToJSON(&p), p.Extra)
}

func (p *EdgeProperties) UnmarshalJSON(data []byte) error {
	var j edgePropertiesJSON
	extra, err := unmarshalWithExtra(data, &j, edgePropertiesKnownKeys)
	if err != nil {
		return err
	}
	p.DataQuality, p.Labels, p.ValidFrom = j.DataQuality, j.Labels, j.ValidFrom
	p.Percentage, p.Direct, p.ControlType = j.Percentage, j.Direct, j.ControlType
	p.ConsolidationBasis = j.ConsolidationBasis
	p.EventType, p.EffectiveDate, p.Description = j.EventType, j.EffectiveDate, j.Description
	p.Commodity, p.ContractRef, p.Volume, p.VolumeUnit = j.Commodity, j.ContractRef, j.Volume, j.VolumeUnit
	p.AnnualValue, p.ValueCurrency, p.Tier = j.AnnualValue, j.ValueCurrency, j.Tier
	p.ShareOfBuyerDemand, p.ServiceType = j.ShareOfBuyerDemand, j.ServiceType
	p.Quantity, p.Unit, p.Scope = j.Quantity, j.Unit, j.Scope
	p.PropertySensitivity = j.PropertySensitivity
	if j.ValidTo != nil {
		p.ValidTo = *j.ValidTo
	} else {
		p.ValidTo = NoDate
	}
	p.Extra = extra
	return nil
}

type edgeJSON struct {
	Id          EdgeId         `json:"id"`
	Type        EdgeTypeTag    `json:"type"`
	Source      NodeId         `json:"source"`
	Target      NodeId         `json:"target"`
	Identifiers []Identifier   `json:"identifiers,omitempty"`
	Properties  EdgeProperties `json:"properties,omitempty"`
}

var edgeKnownKeys = map[string]bool{
	"id": true, "type": true, "source": true, "target": true, "identifiers": true, "properties": true,
}

func (e Edge) MarshalJSON() ([]byte, error) {
	j := edgeJSON{Id: e.Id, Type: e.EdgeType, Source: e.Source, Target: e.Target,
		Identifiers: e.Identifiers, Properties: e.Properties}
	return marshalWithExtra(j, e.Extra)
}

func (e *Edge) UnmarshalJSON(data []byte) error {
	var j edgeJSON
	extra, err := unmarshalWithExtra(data, &j, edgeKnownKeys)
	if err != nil {
		return err
	}
	e.Id, e.EdgeType, e.Source, e.Target = j.Id, j.Type, j.Source, j.Target
	e.Identifiers, e.Properties = j.Identifiers, j.Properties
	e.Extra = extra
	return nil
}

type fileJSON struct {
	OmtsfVersion        SemVer           `json:"omtsf_version"`
	SnapshotDate        CalendarDate     `json:"snapshot_date"`
	FileSalt            FileSalt         `json:"file_salt"`
	DisclosureScope     *DisclosureScope `json:"disclosure_scope,omitempty"`
	PreviousSnapshotRef *string          `json:"previous_snapshot_ref,omitempty"`
	SnapshotSequence    *int             `json:"snapshot_sequence,omitempty"`
	ReportingEntity     *NodeId          `json:"reporting_entity,omitempty"`
	Nodes               []Node           `json:"nodes"`
	Edges               []Edge           `json:"edges"`
}

var fileKnownKeys = map[string]bool{
	"omtsf_version": true, "snapshot_date": true, "file_salt": true, "disclosure_scope": true,
	"previous_snapshot_ref": true, "snapshot_sequence": true, "reporting_entity": true,
	"nodes": true, "edges": true,
}

func (f File) MarshalJSON() ([]byte, error) {
	j := fileJSON{
		OmtsfVersion: f.OmtsfVersion, SnapshotDate: f.SnapshotDate, FileSalt: f.FileSalt,
		DisclosureScope: f.DisclosureScope, PreviousSnapshotRef: f.PreviousSnapshotRef,
		SnapshotSequence: f.SnapshotSequence, ReportingEntity: f.ReportingEntity,
		Nodes: f.Nodes, Edges: f.Edges,
	}
	if j.Nodes == nil {
		j.Nodes = []Node{}
	}
	if j.Edges == nil {
		j.Edges = []Edge{}
	}
	return marshalWithExtra(j, f.Extra)
}

func (f *File) UnmarshalJSON(data []byte) error {
	var j fileJSON
	extra, err := unmarshalWithExtra(data, &j, fileKnownKeys)
	if err != nil {
		return err
	}
	f.OmtsfVersion, f.SnapshotDate, f.FileSalt = j.OmtsfVersion, j.SnapshotDate, j.FileSalt
	f.DisclosureScope, f.PreviousSnapshotRef = j.DisclosureScope, j.PreviousSnapshotRef
	f.SnapshotSequence, f.ReportingEntity = j.SnapshotSequence, j.ReportingEntity
	f.Nodes, f.Edges = j.Nodes, j.Edges
	f.Extra = extra
	return nil
}
