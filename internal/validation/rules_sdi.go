package validation

import (
	"sort"

	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// L1Sdi01 — a boundary_ref node must carry exactly one identifier, with
// scheme "opaque" (spec.md §4.3's L1-SDI catalogue entry). No Rust source
// for this rule was available in the retrieval pack (rules_l1_sdi.rs is
// absent); grounded directly on spec.md's prose description.
type L1Sdi01 struct{}

func (L1Sdi01) ID() RuleId   { return RuleSdi01 }
func (L1Sdi01) Level() Level { return L1 }
func (L1Sdi01) Check(file *omtsf.File, diags *[]Diagnostic) {
	for _, node := range file.Nodes {
		if node.NodeType.IsExtension() || node.NodeType.Known != omtsf.NodeTypeBoundaryRef {
			continue
		}
		if len(node.Identifiers) != 1 {
			*diags = append(*diags, newDiag(RuleSdi01, L1, NodeLocation(string(node.Id), "identifiers"),
				"boundary_ref node %q must carry exactly one identifier, found %d", node.Id, len(node.Identifiers)))
			continue
		}
		if node.Identifiers[0].Scheme != "opaque" {
			*diags = append(*diags, newDiag(RuleSdi01, L1, IdentifierLocation(string(node.Id), 0, "scheme"),
				"boundary_ref node %q identifier scheme must be %q, found %q", node.Id, "opaque", node.Identifiers[0].Scheme))
		}
	}
}

// L1Sdi02 — when a file declares a disclosure_scope, no node or edge may
// carry an identifier or property whose effective sensitivity exceeds what
// that scope permits (spec.md §4.6's sensitivity gating table: public
// scope keeps only public-sensitivity data, partner also keeps restricted,
// internal keeps everything). A file is not yet redacted to its stated
// scope if it still carries data the scope would drop; this rule flags
// that inconsistency rather than silently redacting it. Grounded on
// spec.md's redaction gating table, since rules_l1_sdi.rs is absent from
// the retrieval pack.
type L1Sdi02 struct{}

func (L1Sdi02) ID() RuleId   { return RuleSdi02 }
func (L1Sdi02) Level() Level { return L1 }
func (L1Sdi02) Check(file *omtsf.File, diags *[]Diagnostic) {
	if file.DisclosureScope == nil {
		return
	}
	scope := *file.DisclosureScope

	for _, node := range file.Nodes {
		for idx, id := range node.Identifiers {
			effective := omtsf.EffectiveSensitivity(id, node.NodeType)
			if !sensitivityAllowed(effective, scope) {
				*diags = append(*diags, newDiag(RuleSdi02, L1, IdentifierLocation(string(node.Id), idx, "sensitivity"),
					"node %q identifiers[%d]: sensitivity %q is not permitted under disclosure_scope %q",
					node.Id, idx, effective, scope))
			}
		}
	}

	for _, edge := range file.Edges {
		fields := make([]string, 0, len(edge.Properties.PropertySensitivity))
		for field := range edge.Properties.PropertySensitivity {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			effective := omtsf.EffectivePropertySensitivity(edge, field)
			if !sensitivityAllowed(effective, scope) {
				*diags = append(*diags, newDiag(RuleSdi02, L1, EdgeLocation(string(edge.Id), field),
					"edge %q property %q: sensitivity %q is not permitted under disclosure_scope %q",
					edge.Id, field, effective, scope))
			}
		}
	}
}

// sensitivityAllowed implements spec.md §4.6's gating table.
func sensitivityAllowed(s omtsf.Sensitivity, scope omtsf.DisclosureScope) bool {
	switch scope {
	case omtsf.ScopeInternal:
		return true
	case omtsf.ScopePartner:
		return s != omtsf.SensitivityConfidential
	case omtsf.ScopePublic:
		return s == omtsf.SensitivityPublic
	default:
		return true
	}
}
