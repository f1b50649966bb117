package omtsf

// NodeType enumerates the core OMTSF node kinds (spec.md §1, §3.3).
type NodeType string

const (
	NodeTypeOrganization NodeType = "organization"
	NodeTypeFacility     NodeType = "facility"
	NodeTypeGood         NodeType = "good"
	NodeTypePerson       NodeType = "person"
	NodeTypeConsignment  NodeType = "consignment"
	NodeTypeAttestation  NodeType = "attestation"
	NodeTypeBoundaryRef  NodeType = "boundary_ref"
)

// NodeTypeTag is either a known core NodeType or an extension type string
// (reverse-domain form, contains a '.').
type NodeTypeTag struct {
	Known     NodeType
	Extension string // non-empty iff this tag is an extension type
}

func KnownNodeType(t NodeType) NodeTypeTag { return NodeTypeTag{Known: t} }
func ExtensionNodeType(s string) NodeTypeTag { return NodeTypeTag{Extension: s} }

func (t NodeTypeTag) IsExtension() bool { return t.Extension != "" }

func (t NodeTypeTag) String() string {
	if t.IsExtension() {
		return t.Extension
	}
	return string(t.Known)
}

// EdgeType enumerates the core OMTSF edge kinds (spec.md §4.2 table).
type EdgeType string

const (
	EdgeTypeOwnership            EdgeType = "ownership"
	EdgeTypeOperationalControl   EdgeType = "operational_control"
	EdgeTypeLegalParentage       EdgeType = "legal_parentage"
	EdgeTypeFormerIdentity       EdgeType = "former_identity"
	EdgeTypeBeneficialOwnership  EdgeType = "beneficial_ownership"
	EdgeTypeSupplies             EdgeType = "supplies"
	EdgeTypeSubcontracts         EdgeType = "subcontracts"
	EdgeTypeSellsTo              EdgeType = "sells_to"
	EdgeTypeTolls                EdgeType = "tolls"
	EdgeTypeBrokers              EdgeType = "brokers"
	EdgeTypeDistributes          EdgeType = "distributes"
	EdgeTypeOperates             EdgeType = "operates"
	EdgeTypeProduces             EdgeType = "produces"
	EdgeTypeComposedOf           EdgeType = "composed_of"
	EdgeTypeAttestedBy           EdgeType = "attested_by"
	EdgeTypeSameAs               EdgeType = "same_as"
)

// EdgeTypeTag is either a known core EdgeType or an extension type string.
type EdgeTypeTag struct {
	Known     EdgeType
	Extension string
}

func KnownEdgeType(t EdgeType) EdgeTypeTag { return EdgeTypeTag{Known: t} }
func ExtensionEdgeType(s string) EdgeTypeTag { return EdgeTypeTag{Extension: s} }

func (t EdgeTypeTag) IsExtension() bool { return t.Extension != "" }

func (t EdgeTypeTag) String() string {
	if t.IsExtension() {
		return t.Extension
	}
	return string(t.Known)
}

// DataQuality carries nested quality metadata compared with dotted field
// names by the diff engine (spec.md §4.4).
type DataQuality struct {
	Source     string
	Method     string
	Confidence *float64
	AsOf       *CalendarDate
	Extra      map[string]interface{}
}

// Label is a free-form (key, value) annotation. Diffed/merged as a set
// keyed by (key, value); a value change is a removal plus an addition,
// never an in-place "modify" (spec.md §4.4, §4.5).
type Label struct {
	Key   string
	Value *string // nil sorts before any Some value (spec.md §4.5 step 6).
}

// Geo is a node's optional geographic coordinate.
type Geo struct {
	Lat float64
	Lon float64
}

// Node is the superset struct covering every OMTSF node subtype. Unknown
// JSON fields round-trip through Extra (spec.md §6.1).
type Node struct {
	Id          NodeId
	NodeType    NodeTypeTag
	Identifiers []Identifier
	DataQuality *DataQuality
	Labels      []Label
	Name        *string
	Jurisdiction *CountryCode
	Status      *string

	// organization
	GovernanceStructure *string

	// facility
	Operator *string // NodeId of an organization, stored as string to avoid import cycles in callers
	Address  *string
	GeoCoord *Geo

	// good
	CommodityCode *string
	Unit          *string

	// person
	Role *string

	// attestation
	AttestationType   *string
	Standard          *string
	Issuer            *string
	ValidFrom         *CalendarDate
	ValidTo           OptionalDate
	Outcome           *string
	AttestationStatus *string
	Reference         *string
	RiskSeverity      *string
	RiskLikelihood    *string

	// consignment
	LotId                  *string
	Quantity               *float64
	ProductionDate         *CalendarDate
	OriginCountry          *CountryCode
	DirectEmissionsCO2e    *float64
	IndirectEmissionsCO2e  *float64
	EmissionFactorSource   *string
	InstallationId         *string

	Extra map[string]interface{}
}

// EdgeProperties is the superset struct covering every edge type's
// type-specific fields (spec.md §3.3, §4.2's identity-property table).
type EdgeProperties struct {
	DataQuality *DataQuality
	Labels      []Label
	ValidFrom   *CalendarDate
	ValidTo     OptionalDate

	// ownership / beneficial_ownership
	Percentage *float64
	Direct     *bool

	// operational_control / beneficial_ownership
	ControlType *string

	// legal_parentage
	ConsolidationBasis *string

	// former_identity
	EventType      *string
	EffectiveDate  *CalendarDate
	Description    *string

	// supplies / subcontracts / sells_to / tolls / brokers
	Commodity   *string
	ContractRef *string
	Volume      *float64
	VolumeUnit  *string

	AnnualValue    *float64
	ValueCurrency  *string
	Tier           *int
	ShareOfBuyerDemand *float64

	// distributes
	ServiceType *string

	// composed_of
	Quantity *float64
	Unit     *string

	// attested_by
	Scope *string

	// PropertySensitivity overrides the static default sensitivity table
	// per-field (spec.md §3.3's "_property_sensitivity map").
	PropertySensitivity map[string]Sensitivity

	Extra map[string]interface{}
}

// Edge is a directed, typed relationship between two nodes.
type Edge struct {
	Id          EdgeId
	EdgeType    EdgeTypeTag
	Source      NodeId
	Target      NodeId
	Identifiers []Identifier
	Properties  EdgeProperties
	Extra       map[string]interface{}
}

// File is one OMTSF snapshot: header fields plus the node/edge arrays
// (spec.md §3.4).
type File struct {
	OmtsfVersion        SemVer
	SnapshotDate        CalendarDate
	FileSalt            FileSalt
	DisclosureScope      *DisclosureScope
	PreviousSnapshotRef *string
	SnapshotSequence    *int
	ReportingEntity     *NodeId

	Nodes []Node
	Edges []Edge

	Extra map[string]interface{}
}

// NodeByID returns the node with the given id, or false if absent.
func (f *File) NodeByID(id NodeId) (*Node, bool) {
	for i := range f.Nodes {
		if f.Nodes[i].Id == id {
			return &f.Nodes[i], true
		}
	}
	return nil, false
}
