// Package validation implements the OMTSF validation engine (spec.md §4.3):
// a registry of stateless rules gated by severity level, dispatched once per
// file with every diagnostic collected (never early-exiting).
package validation

import (
	"fmt"

	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// Severity is the diagnostic's severity, determined by the rule's Level.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "E"
	case SeverityWarning:
		return "W"
	case SeverityInfo:
		return "I"
	default:
		return "?"
	}
}

// Level gates which rules run under a ValidationConfig and determines the
// severity of the diagnostics a rule at that level produces.
type Level int

const (
	L1 Level = iota
	L2
	L3
)

// Severity returns the diagnostic severity diagnostics at this level carry:
// L1 rules are structural errors, L2 are semantic warnings, L3 (external
// data required) are informational.
func (l Level) Severity() Severity {
	switch l {
	case L1:
		return SeverityError
	case L2:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// RuleId names a validation rule by its spec code (e.g. "L1-GDM-01").
// Extension rules (not defined by this module) and the sentinel "internal"
// id are represented the same way, as plain strings.
type RuleId string

const (
	RuleGdm01 RuleId = "L1-GDM-01"
	RuleGdm02 RuleId = "L1-GDM-02"
	RuleGdm03 RuleId = "L1-GDM-03"
	RuleGdm04 RuleId = "L1-GDM-04"
	RuleGdm05 RuleId = "L1-GDM-05"
	RuleGdm06 RuleId = "L1-GDM-06"

	RuleEid01 RuleId = "L1-EID-01"
	RuleEid02 RuleId = "L1-EID-02"
	RuleEid03 RuleId = "L1-EID-03"
	RuleEid04 RuleId = "L1-EID-04"
	RuleEid05 RuleId = "L1-EID-05"
	RuleEid06 RuleId = "L1-EID-06"
	RuleEid07 RuleId = "L1-EID-07"
	RuleEid08 RuleId = "L1-EID-08"
	RuleEid09 RuleId = "L1-EID-09"
	RuleEid10 RuleId = "L1-EID-10"
	RuleEid11 RuleId = "L1-EID-11"

	RuleSdi01 RuleId = "L1-SDI-01"
	RuleSdi02 RuleId = "L1-SDI-02"

	RuleL2Gdm01 RuleId = "L2-GDM-01"
	RuleL2Gdm02 RuleId = "L2-GDM-02"
	RuleL2Gdm03 RuleId = "L2-GDM-03"
	RuleL2Gdm04 RuleId = "L2-GDM-04"

	RuleL2Eid01 RuleId = "L2-EID-01"
	RuleL2Eid04 RuleId = "L2-EID-04"
)

// Code returns the rule's spec code string.
func (r RuleId) Code() string { return string(r) }

// LocationKind tags which variant a Location holds.
type LocationKind int

const (
	LocationHeader LocationKind = iota
	LocationNode
	LocationEdge
	LocationIdentifier
	LocationGlobal
)

// Location pinpoints where a diagnostic applies. Exactly the fields for
// its Kind are meaningful; construct via the Header/Node/Edge/Ident/Global
// helpers rather than the struct literal.
type Location struct {
	Kind   LocationKind
	Field  string // Header: required. Node/Edge/Identifier: optional, "" means unset.
	NodeId string // Node, Identifier
	EdgeId string // Edge
	Index  int    // Identifier
}

func HeaderLocation(field string) Location {
	return Location{Kind: LocationHeader, Field: field}
}

func NodeLocation(nodeId string, field string) Location {
	return Location{Kind: LocationNode, NodeId: nodeId, Field: field}
}

func EdgeLocation(edgeId string, field string) Location {
	return Location{Kind: LocationEdge, EdgeId: edgeId, Field: field}
}

func IdentifierLocation(nodeId string, index int, field string) Location {
	return Location{Kind: LocationIdentifier, NodeId: nodeId, Index: index, Field: field}
}

func GlobalLocation() Location {
	return Location{Kind: LocationGlobal}
}

func (l Location) String() string {
	switch l.Kind {
	case LocationHeader:
		return fmt.Sprintf("header.%s", l.Field)
	case LocationNode:
		if l.Field != "" {
			return fmt.Sprintf("node %q.%s", l.NodeId, l.Field)
		}
		return fmt.Sprintf("node %q", l.NodeId)
	case LocationEdge:
		if l.Field != "" {
			return fmt.Sprintf("edge %q.%s", l.EdgeId, l.Field)
		}
		return fmt.Sprintf("edge %q", l.EdgeId)
	case LocationIdentifier:
		if l.Field != "" {
			return fmt.Sprintf("node %q identifiers[%d].%s", l.NodeId, l.Index, l.Field)
		}
		return fmt.Sprintf("node %q identifiers[%d]", l.NodeId, l.Index)
	default:
		return "global"
	}
}

// Diagnostic is one validation finding.
type Diagnostic struct {
	RuleId   RuleId
	Severity Severity
	Location Location
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s %s: %s", d.Severity, d.RuleId.Code(), d.Location, d.Message)
}

func newDiag(id RuleId, level Level, loc Location, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		RuleId:   id,
		Severity: level.Severity(),
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	}
}

// ValidationResult is the full set of diagnostics produced by one Validate
// call.
type ValidationResult struct {
	Diagnostics []Diagnostic
}

func (r ValidationResult) Len() int     { return len(r.Diagnostics) }
func (r ValidationResult) IsEmpty() bool { return len(r.Diagnostics) == 0 }

// HasErrors reports whether any diagnostic carries Severity Error.
func (r ValidationResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// IsConformant reports whether the file has zero Error diagnostics
// (spec.md §4.3's definition of conformance).
func (r ValidationResult) IsConformant() bool { return !r.HasErrors() }

func (r ValidationResult) filterBySeverity(s Severity) []Diagnostic {
	out := make([]Diagnostic, 0)
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

func (r ValidationResult) Errors() []Diagnostic   { return r.filterBySeverity(SeverityError) }
func (r ValidationResult) Warnings() []Diagnostic { return r.filterBySeverity(SeverityWarning) }
func (r ValidationResult) Infos() []Diagnostic    { return r.filterBySeverity(SeverityInfo) }

// ByRule returns every diagnostic produced by the named rule.
func (r ValidationResult) ByRule(id RuleId) []Diagnostic {
	out := make([]Diagnostic, 0)
	for _, d := range r.Diagnostics {
		if d.RuleId == id {
			out = append(out, d)
		}
	}
	return out
}

// ValidationRule is a stateless check against one OMTSF file. Implementations
// must never early-exit: they report every violation they find.
//
// Rust's ValidationRule trait also threads an `external_data: Option<&dyn
// ExternalDataSource>` parameter through Check, for L3 rules that consult
// out-of-band registries. No L3 rule is ever wired into BuildRegistry
// regardless of ValidationConfig.RunL3, and every L1/L2 rule ignores the
// parameter, so this port omits it; a future L3 rule can take its external
// source via its own constructor instead of a per-call parameter.
type ValidationRule interface {
	ID() RuleId
	Level() Level
	Check(file *omtsf.File, diags *[]Diagnostic)
}

// ValidationConfig gates which rule levels BuildRegistry includes.
type ValidationConfig struct {
	RunL1 bool
	RunL2 bool
	RunL3 bool
}

// DefaultValidationConfig returns the spec.md §4.3 default: L1 and L2 on,
// L3 off.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{RunL1: true, RunL2: true, RunL3: false}
}

// BuildRegistry returns the ordered set of rules config enables. The order
// matches the teacher rule catalogue's declaration order (GDM before EID,
// L1 before L2); L3 is never wired, since no L3 rule is defined yet.
func BuildRegistry(config ValidationConfig) []ValidationRule {
	rules := make([]ValidationRule, 0, 23)
	if config.RunL1 {
		rules = append(rules,
			GdmRule01{}, GdmRule02{}, GdmRule03{}, GdmRule04{}, GdmRule05{}, GdmRule06{},
			L1Eid01{}, L1Eid02{}, L1Eid03{}, L1Eid04{}, L1Eid05{}, L1Eid06{},
			L1Eid07{}, L1Eid08{}, L1Eid09{}, L1Eid10{}, L1Eid11{},
			L1Sdi01{}, L1Sdi02{},
		)
	}
	if config.RunL2 {
		rules = append(rules,
			L2Gdm01{}, L2Gdm02{}, L2Gdm03{}, L2Gdm04{},
			L2Eid01{}, L2Eid04{},
		)
	}
	return rules
}

// Validate runs every rule config enables against file, collecting all
// diagnostics from every rule (no early exit).
func Validate(file *omtsf.File, config ValidationConfig) ValidationResult {
	registry := BuildRegistry(config)
	diags := make([]Diagnostic, 0)
	for _, rule := range registry {
		rule.Check(file, &diags)
	}
	return ValidationResult{Diagnostics: diags}
}
