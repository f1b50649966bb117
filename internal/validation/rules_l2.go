package validation

import "github.com/BayFX/omtsf-sub000/internal/omtsf"

// iso3166Alpha2 is a static snapshot of the 249 officially assigned
// ISO 3166-1 alpha-2 codes, embedded to avoid pulling in a locale/country
// database dependency for one lookup table (spec.md §4.3's L2-EID-04).
var iso3166Alpha2 = map[string]bool{}

func init() {
	for _, c := range []string{
		"AD", "AE", "AF", "AG", "AI", "AL", "AM", "AO", "AQ", "AR", "AS", "AT", "AU", "AW", "AX",
		"AZ", "BA", "BB", "BD", "BE", "BF", "BG", "BH", "BI", "BJ", "BL", "BM", "BN", "BO", "BQ",
		"BR", "BS", "BT", "BV", "BW", "BY", "BZ", "CA", "CC", "CD", "CF", "CG", "CH", "CI", "CK",
		"CL", "CM", "CN", "CO", "CR", "CU", "CV", "CW", "CX", "CY", "CZ", "DE", "DJ", "DK", "DM",
		"DO", "DZ", "EC", "EE", "EG", "EH", "ER", "ES", "ET", "FI", "FJ", "FK", "FM", "FO", "FR",
		"GA", "GB", "GD", "GE", "GF", "GG", "GH", "GI", "GL", "GM", "GN", "GP", "GQ", "GR", "GS",
		"GT", "GU", "GW", "GY", "HK", "HM", "HN", "HR", "HT", "HU", "ID", "IE", "IL", "IM", "IN",
		"IO", "IQ", "IR", "IS", "IT", "JE", "JM", "JO", "JP", "KE", "KG", "KH", "KI", "KM", "KN",
		"KP", "KR", "KW", "KY", "KZ", "LA", "LB", "LC", "LI", "LK", "LR", "LS", "LT", "LU", "LV",
		"LY", "MA", "MC", "MD", "ME", "MF", "MG", "MH", "MK", "ML", "MM", "MN", "MO", "MP", "MQ",
		"MR", "MS", "MT", "MU", "MV", "MW", "MX", "MY", "MZ", "NA", "NC", "NE", "NF", "NG", "NI",
		"NL", "NO", "NP", "NR", "NU", "NZ", "OM", "PA", "PE", "PF", "PG", "PH", "PK", "PL", "PM",
		"PN", "PR", "PS", "PT", "PW", "PY", "QA", "RE", "RO", "RS", "RU", "RW", "SA", "SB", "SC",
		"SD", "SE", "SG", "SH", "SI", "SJ", "SK", "SL", "SM", "SN", "SO", "SR", "SS", "ST", "SV",
		"SX", "SY", "SZ", "TC", "TD", "TF", "TG", "TH", "TJ", "TK", "TL", "TM", "TN", "TO", "TR",
		"TT", "TV", "TW", "TZ", "UA", "UG", "UM", "US", "UY", "UZ", "VA", "VC", "VE", "VG", "VI",
		"VN", "VU", "WF", "WS", "YE", "YT", "ZA", "ZM", "ZW",
	} {
		iso3166Alpha2[c] = true
	}
}

// isValidISO3166Alpha2 reports whether code is one of the 249 officially
// assigned ISO 3166-1 alpha-2 country codes (case-sensitive, uppercase
// only — "EU" and lowercase forms are rejected).
func isValidISO3166Alpha2(code string) bool {
	return iso3166Alpha2[code]
}

// facilityIdsWithOrgConnection returns the set of facility node ids that
// have at least one edge connecting them to an organization node, either
// via an operates/operational_control edge (facility as target) or a
// tolls edge (facility as source), or via the node's Operator field.
func facilityIdsWithOrgConnection(file *omtsf.File) map[omtsf.NodeId]bool {
	orgIds := make(map[omtsf.NodeId]bool)
	for _, n := range file.Nodes {
		if !n.NodeType.IsExtension() && n.NodeType.Known == omtsf.NodeTypeOrganization {
			orgIds[n.Id] = true
		}
	}

	isFacility := make(map[omtsf.NodeId]bool)
	for _, n := range file.Nodes {
		if !n.NodeType.IsExtension() && n.NodeType.Known == omtsf.NodeTypeFacility {
			isFacility[n.Id] = true
		}
	}

	connected := make(map[omtsf.NodeId]bool)

	for _, node := range file.Nodes {
		if !isFacility[node.Id] {
			continue
		}
		if node.Operator != nil && orgIds[omtsf.NodeId(*node.Operator)] {
			connected[node.Id] = true
		}
	}

	for _, e := range file.Edges {
		if e.EdgeType.IsExtension() {
			continue
		}
		var facilitySide, orgSide omtsf.NodeId
		switch e.EdgeType.Known {
		case omtsf.EdgeTypeOperates, omtsf.EdgeTypeOperationalControl:
			facilitySide, orgSide = e.Target, e.Source
		case omtsf.EdgeTypeTolls:
			facilitySide, orgSide = e.Source, e.Target
		default:
			continue
		}
		if isFacility[facilitySide] && orgIds[orgSide] {
			connected[facilitySide] = true
		}
	}

	return connected
}

// L2Gdm01 — every facility node should be connected to an organization
// node via an edge or the operator property.
type L2Gdm01 struct{}

func (L2Gdm01) ID() RuleId   { return RuleL2Gdm01 }
func (L2Gdm01) Level() Level { return L2 }
func (L2Gdm01) Check(file *omtsf.File, diags *[]Diagnostic) {
	connected := facilityIdsWithOrgConnection(file)
	for _, node := range file.Nodes {
		if node.NodeType.IsExtension() || node.NodeType.Known != omtsf.NodeTypeFacility {
			continue
		}
		if connected[node.Id] {
			continue
		}
		*diags = append(*diags, newDiag(RuleL2Gdm01, L2, NodeLocation(string(node.Id), ""),
			"facility %q has no edge or operator field connecting it to an organization; consider adding an operates or operational_control edge",
			node.Id))
	}
}

// L2Gdm02 — ownership edges should carry valid_from.
type L2Gdm02 struct{}

func (L2Gdm02) ID() RuleId   { return RuleL2Gdm02 }
func (L2Gdm02) Level() Level { return L2 }
func (L2Gdm02) Check(file *omtsf.File, diags *[]Diagnostic) {
	for _, e := range file.Edges {
		if e.EdgeType.IsExtension() || e.EdgeType.Known != omtsf.EdgeTypeOwnership {
			continue
		}
		if e.Properties.ValidFrom == nil {
			*diags = append(*diags, newDiag(RuleL2Gdm02, L2, EdgeLocation(string(e.Id), "properties.valid_from"),
				"ownership edge %q is missing valid_from; temporal merge correctness requires a start date on ownership relationships",
				e.Id))
		}
	}
}

// L2Gdm03 — organization/facility nodes and supplies/subcontracts/tolls
// edges should carry data_quality.
type L2Gdm03 struct{}

func (L2Gdm03) ID() RuleId   { return RuleL2Gdm03 }
func (L2Gdm03) Level() Level { return L2 }
func (L2Gdm03) Check(file *omtsf.File, diags *[]Diagnostic) {
	for _, node := range file.Nodes {
		if node.NodeType.IsExtension() {
			continue
		}
		if node.NodeType.Known != omtsf.NodeTypeOrganization && node.NodeType.Known != omtsf.NodeTypeFacility {
			continue
		}
		if node.DataQuality == nil {
			*diags = append(*diags, newDiag(RuleL2Gdm03, L2, NodeLocation(string(node.Id), "data_quality"),
				"%s node %q is missing a data_quality object; provenance metadata is essential for merge conflict resolution",
				node.NodeType, node.Id))
		}
	}

	for _, e := range file.Edges {
		if e.EdgeType.IsExtension() {
			continue
		}
		switch e.EdgeType.Known {
		case omtsf.EdgeTypeSupplies, omtsf.EdgeTypeSubcontracts, omtsf.EdgeTypeTolls:
		default:
			continue
		}
		if e.Properties.DataQuality == nil {
			*diags = append(*diags, newDiag(RuleL2Gdm03, L2, EdgeLocation(string(e.Id), "properties.data_quality"),
				"%s edge %q is missing a data_quality object; provenance metadata is essential for merge conflict resolution",
				e.EdgeType, e.Id))
		}
	}
}

// L2Gdm04 — a supplies edge carrying tier should be anchored by a
// file-level reporting_entity.
type L2Gdm04 struct{}

func (L2Gdm04) ID() RuleId   { return RuleL2Gdm04 }
func (L2Gdm04) Level() Level { return L2 }
func (L2Gdm04) Check(file *omtsf.File, diags *[]Diagnostic) {
	if file.ReportingEntity != nil {
		return
	}
	for _, e := range file.Edges {
		if e.EdgeType.IsExtension() || e.EdgeType.Known != omtsf.EdgeTypeSupplies {
			continue
		}
		if e.Properties.Tier != nil {
			*diags = append(*diags, newDiag(RuleL2Gdm04, L2, EdgeLocation(string(e.Id), "properties.tier"),
				"supplies edge %q carries a tier property but the file has no reporting_entity; tier values are ambiguous without an anchor",
				e.Id))
		}
	}
}

// L2Eid01 — every organization node should have at least one external
// (non-internal) identifier.
type L2Eid01 struct{}

func (L2Eid01) ID() RuleId   { return RuleL2Eid01 }
func (L2Eid01) Level() Level { return L2 }
func (L2Eid01) Check(file *omtsf.File, diags *[]Diagnostic) {
	for _, node := range file.Nodes {
		if node.NodeType.IsExtension() || node.NodeType.Known != omtsf.NodeTypeOrganization {
			continue
		}
		hasExternal := false
		for _, id := range node.Identifiers {
			if !id.IsInternal() {
				hasExternal = true
				break
			}
		}
		if !hasExternal {
			*diags = append(*diags, newDiag(RuleL2Eid01, L2, NodeLocation(string(node.Id), "identifiers"),
				"organization %q has no external identifiers (non-internal scheme); cross-file merge requires at least one external identifier such as lei, duns, nat-reg, or vat",
				node.Id))
		}
	}
}

// L2Eid04 — vat authority values should be valid ISO 3166-1 alpha-2
// country codes. Missing authority is L1-EID-03's concern and is skipped
// here.
type L2Eid04 struct{}

func (L2Eid04) ID() RuleId   { return RuleL2Eid04 }
func (L2Eid04) Level() Level { return L2 }
func (L2Eid04) Check(file *omtsf.File, diags *[]Diagnostic) {
	for _, node := range file.Nodes {
		for idx, id := range node.Identifiers {
			if id.Scheme != "vat" || id.Authority == "" {
				continue
			}
			if !isValidISO3166Alpha2(id.Authority) {
				*diags = append(*diags, newDiag(RuleL2Eid04, L2, IdentifierLocation(string(node.Id), idx, "authority"),
					"node %q identifiers[%d]: vat authority %q is not a valid ISO 3166-1 alpha-2 country code",
					node.Id, idx, id.Authority))
			}
		}
	}
}
