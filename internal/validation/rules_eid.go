package validation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/BayFX/omtsf-sub000/internal/boundaryhash"
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// coreSchemes are the identifier schemes L1-EID-04 recognizes outright;
// any other scheme must contain a '.' to be accepted as an extension
// scheme.
var coreSchemes = map[string]bool{
	"lei":      true,
	"duns":     true,
	"gln":      true,
	"nat-reg":  true,
	"vat":      true,
	"internal": true,
	"opaque":   true,
}

// eachIdentifier calls fn for every (node, index, identifier) triple in
// the file, the common iteration shape every L1-EID rule needs.
func eachIdentifier(file *omtsf.File, fn func(node *omtsf.Node, index int, id omtsf.Identifier)) {
	for i := range file.Nodes {
		node := &file.Nodes[i]
		for idx, id := range node.Identifiers {
			fn(node, idx, id)
		}
	}
}

// L1Eid01 — an identifier's scheme must be non-empty.
type L1Eid01 struct{}

func (L1Eid01) ID() RuleId   { return RuleEid01 }
func (L1Eid01) Level() Level { return L1 }
func (L1Eid01) Check(file *omtsf.File, diags *[]Diagnostic) {
	eachIdentifier(file, func(node *omtsf.Node, index int, id omtsf.Identifier) {
		if id.Scheme == "" {
			*diags = append(*diags, newDiag(RuleEid01, L1, IdentifierLocation(string(node.Id), index, "scheme"),
				"node %q identifiers[%d]: scheme must not be empty", node.Id, index))
		}
	})
}

// L1Eid02 — an identifier's value must be non-empty.
type L1Eid02 struct{}

func (L1Eid02) ID() RuleId   { return RuleEid02 }
func (L1Eid02) Level() Level { return L1 }
func (L1Eid02) Check(file *omtsf.File, diags *[]Diagnostic) {
	eachIdentifier(file, func(node *omtsf.Node, index int, id omtsf.Identifier) {
		if id.Value == "" {
			*diags = append(*diags, newDiag(RuleEid02, L1, IdentifierLocation(string(node.Id), index, "value"),
				"node %q identifiers[%d]: value must not be empty", node.Id, index))
		}
	})
}

// L1Eid03 — nat-reg, vat, and internal schemes require a non-empty
// authority.
type L1Eid03 struct{}

func (L1Eid03) ID() RuleId   { return RuleEid03 }
func (L1Eid03) Level() Level { return L1 }
func (L1Eid03) Check(file *omtsf.File, diags *[]Diagnostic) {
	eachIdentifier(file, func(node *omtsf.Node, index int, id omtsf.Identifier) {
		if omtsf.SchemeRequiresAuthority(id.Scheme) && id.Authority == "" {
			*diags = append(*diags, newDiag(RuleEid03, L1, IdentifierLocation(string(node.Id), index, "authority"),
				"node %q identifiers[%d]: scheme %q requires a non-empty authority", node.Id, index, id.Scheme))
		}
	})
}

// L1Eid04 — scheme must be one of the recognized core schemes or contain
// a '.' (an extension scheme). Identifiers with an already-empty scheme
// are skipped; L1Eid01 reports that.
type L1Eid04 struct{}

func (L1Eid04) ID() RuleId   { return RuleEid04 }
func (L1Eid04) Level() Level { return L1 }
func (L1Eid04) Check(file *omtsf.File, diags *[]Diagnostic) {
	eachIdentifier(file, func(node *omtsf.Node, index int, id omtsf.Identifier) {
		if id.Scheme == "" {
			return
		}
		if coreSchemes[id.Scheme] || strings.Contains(id.Scheme, ".") {
			return
		}
		*diags = append(*diags, newDiag(RuleEid04, L1, IdentifierLocation(string(node.Id), index, "scheme"),
			"node %q identifiers[%d]: unrecognized scheme %q; extension schemes must contain a '.'", node.Id, index, id.Scheme))
	})
}

var leiShapePattern = regexp.MustCompile(`^[A-Z0-9]{18}[0-9]{2}$`)

// L1Eid05 — lei identifiers must match the LEI shape and pass the
// ISO 17442 MOD 97-10 check digit test.
type L1Eid05 struct{}

func (L1Eid05) ID() RuleId   { return RuleEid05 }
func (L1Eid05) Level() Level { return L1 }
func (L1Eid05) Check(file *omtsf.File, diags *[]Diagnostic) {
	eachIdentifier(file, func(node *omtsf.Node, index int, id omtsf.Identifier) {
		if id.Scheme != "lei" {
			return
		}
		if !leiShapePattern.MatchString(id.Value) {
			*diags = append(*diags, newDiag(RuleEid05, L1, IdentifierLocation(string(node.Id), index, "value"),
				"node %q identifiers[%d]: lei %q does not match ^[A-Z0-9]{18}[0-9]{2}$", node.Id, index, id.Value))
			return
		}
		if !boundaryhash.ValidLEI(id.Value) {
			*diags = append(*diags, newDiag(RuleEid05, L1, IdentifierLocation(string(node.Id), index, "value"),
				"node %q identifiers[%d]: lei %q fails the MOD 97-10 check digit test", node.Id, index, id.Value))
		}
	})
}

var dunsPattern = regexp.MustCompile(`^[0-9]{9}$`)

// L1Eid06 — duns identifiers must be exactly 9 digits.
type L1Eid06 struct{}

func (L1Eid06) ID() RuleId   { return RuleEid06 }
func (L1Eid06) Level() Level { return L1 }
func (L1Eid06) Check(file *omtsf.File, diags *[]Diagnostic) {
	eachIdentifier(file, func(node *omtsf.Node, index int, id omtsf.Identifier) {
		if id.Scheme != "duns" {
			return
		}
		if !dunsPattern.MatchString(id.Value) {
			*diags = append(*diags, newDiag(RuleEid06, L1, IdentifierLocation(string(node.Id), index, "value"),
				"node %q identifiers[%d]: duns %q does not match ^[0-9]{9}$", node.Id, index, id.Value))
		}
	})
}

var glnShapePattern = regexp.MustCompile(`^[0-9]{13}$`)

// L1Eid07 — gln identifiers must be exactly 13 digits and pass the GS1
// mod-10 check digit test.
type L1Eid07 struct{}

func (L1Eid07) ID() RuleId   { return RuleEid07 }
func (L1Eid07) Level() Level { return L1 }
func (L1Eid07) Check(file *omtsf.File, diags *[]Diagnostic) {
	eachIdentifier(file, func(node *omtsf.Node, index int, id omtsf.Identifier) {
		if id.Scheme != "gln" {
			return
		}
		if !glnShapePattern.MatchString(id.Value) {
			*diags = append(*diags, newDiag(RuleEid07, L1, IdentifierLocation(string(node.Id), index, "value"),
				"node %q identifiers[%d]: gln %q does not match ^[0-9]{13}$", node.Id, index, id.Value))
			return
		}
		if !boundaryhash.ValidGLN(id.Value) {
			*diags = append(*diags, newDiag(RuleEid07, L1, IdentifierLocation(string(node.Id), index, "value"),
				"node %q identifiers[%d]: gln %q fails the GS1 mod-10 check digit test", node.Id, index, id.Value))
		}
	})
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// isCalendarDateValid reports whether d (already known to match the
// YYYY-MM-DD shape) names a real calendar date: month in 1-12, day within
// the month's day count for that year.
func isCalendarDateValid(d omtsf.CalendarDate) bool {
	s := string(d)
	if len(s) != 10 {
		return false
	}
	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return false
	}
	month, err := strconv.Atoi(s[5:7])
	if err != nil {
		return false
	}
	day, err := strconv.Atoi(s[8:10])
	if err != nil {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysInMonth(year, month)
}

// L1Eid08 — valid_from and, when concretely dated, valid_to must name a
// real calendar date. An absent valid_to or an explicit open-ended
// valid_to (null) is not checked here: only a concrete date is checked.
type L1Eid08 struct{}

func (L1Eid08) ID() RuleId   { return RuleEid08 }
func (L1Eid08) Level() Level { return L1 }
func (L1Eid08) Check(file *omtsf.File, diags *[]Diagnostic) {
	eachIdentifier(file, func(node *omtsf.Node, index int, id omtsf.Identifier) {
		if id.ValidFrom != nil && !isCalendarDateValid(*id.ValidFrom) {
			*diags = append(*diags, newDiag(RuleEid08, L1, IdentifierLocation(string(node.Id), index, "valid_from"),
				"node %q identifiers[%d]: valid_from %q is not a valid calendar date", node.Id, index, *id.ValidFrom))
		}
		if id.ValidTo.Present && id.ValidTo.Value != nil && !isCalendarDateValid(*id.ValidTo.Value) {
			*diags = append(*diags, newDiag(RuleEid08, L1, IdentifierLocation(string(node.Id), index, "valid_to"),
				"node %q identifiers[%d]: valid_to %q is not a valid calendar date", node.Id, index, *id.ValidTo.Value))
		}
	})
}

// L1Eid09 — valid_from <= valid_to (lexicographic, equivalent to
// chronological for YYYY-MM-DD strings) when valid_to is concretely
// dated. An absent or explicitly open-ended valid_to skips the rule.
type L1Eid09 struct{}

func (L1Eid09) ID() RuleId   { return RuleEid09 }
func (L1Eid09) Level() Level { return L1 }
func (L1Eid09) Check(file *omtsf.File, diags *[]Diagnostic) {
	eachIdentifier(file, func(node *omtsf.Node, index int, id omtsf.Identifier) {
		if id.ValidFrom == nil || !id.ValidTo.Present || id.ValidTo.Value == nil {
			return
		}
		if string(*id.ValidFrom) > string(*id.ValidTo.Value) {
			*diags = append(*diags, newDiag(RuleEid09, L1, IdentifierLocation(string(node.Id), index, "valid_to"),
				"node %q identifiers[%d]: valid_from %q is after valid_to %q", node.Id, index, *id.ValidFrom, *id.ValidTo.Value))
		}
	})
}

// L1Eid10 — sensitivity must be a recognized enum value. In the Rust
// implementation this rule is a structural no-op: serde rejects an
// unrecognized sensitivity string at deserialization time, before
// validation ever runs, so the rule body never finds a violation. Identifier.
// Sensitivity's UnmarshalJSON (internal/omtsf) enforces the same membership
// at load time here, so this rule is kept as the equivalent no-op for
// behavioral parity rather than duplicating the check.
type L1Eid10 struct{}

func (L1Eid10) ID() RuleId                                      { return RuleEid10 }
func (L1Eid10) Level() Level                                    { return L1 }
func (L1Eid10) Check(file *omtsf.File, diags *[]Diagnostic) {}

// L1Eid11 — no node may carry two identifiers with the same
// (scheme, value, authority) tuple. Reports the 2nd and later occurrence
// of each duplicate.
type L1Eid11 struct{}

func (L1Eid11) ID() RuleId   { return RuleEid11 }
func (L1Eid11) Level() Level { return L1 }
func (L1Eid11) Check(file *omtsf.File, diags *[]Diagnostic) {
	type tuple struct{ scheme, value, authority string }
	for i := range file.Nodes {
		node := &file.Nodes[i]
		seen := make(map[tuple]bool, len(node.Identifiers))
		for idx, id := range node.Identifiers {
			t := tuple{id.Scheme, id.Value, id.Authority}
			if seen[t] {
				*diags = append(*diags, newDiag(RuleEid11, L1, IdentifierLocation(string(node.Id), idx, ""),
					"node %q identifiers[%d]: duplicate (scheme, value, authority) = (%q, %q, %q)",
					node.Id, idx, t.scheme, t.value, t.authority))
				continue
			}
			seen[t] = true
		}
	}
}
