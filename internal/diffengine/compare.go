package diffengine

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// numericEpsilon bounds float field comparisons (spec.md §4.4).
const numericEpsilon = 1e-9

// openEnded is the sentinel value recorded for a present-but-null valid_to
// (an explicit open-ended interval), distinguishing it from an absent
// field (nil).
type openEndedMarker struct{}

var openEnded = openEndedMarker{}

// normaliseDate zero-pads a YYYY-M-D date string to YYYY-MM-DD so that
// "2026-2-9" and "2026-02-09" compare equal. A CalendarDate is already
// zero-padded; this guards values coming from the Extra map.
func normaliseDate(s string) string {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return s
	}
	return parts[0] + "-" + pad2(parts[1]) + "-" + pad2(parts[2])
}

func pad2(s string) string {
	n, err := strconv.Atoi(strings.TrimLeft(s, "0"))
	if err != nil {
		return s
	}
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return 0, false
}

// valuesEqual reports semantic equality under the diff rules: numbers
// compare with epsilon, date-shaped strings are normalised before
// comparing, everything else uses deep equality.
func valuesEqual(a, b interface{}) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return math.Abs(af-bf) < numericEpsilon
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			if strings.Contains(as, "-") && strings.Contains(bs, "-") {
				return normaliseDate(as) == normaliseDate(bs)
			}
			return as == bs
		}
	}
	return reflect.DeepEqual(a, b)
}

// maybeChange appends a PropertyChange if old and new differ under
// valuesEqual, or if exactly one of them is present.
func maybeChange(field string, oldValue, newValue interface{}, out *[]PropertyChange) {
	equal := false
	switch {
	case oldValue == nil && newValue == nil:
		equal = true
	case oldValue != nil && newValue != nil:
		equal = valuesEqual(oldValue, newValue)
	}
	if !equal {
		*out = append(*out, PropertyChange{Field: field, OldValue: oldValue, NewValue: newValue})
	}
}

func strVal(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func floatVal(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func intVal(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func boolVal(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}

func dateVal(d *omtsf.CalendarDate) interface{} {
	if d == nil {
		return nil
	}
	return normaliseDate(string(*d))
}

func countryVal(c *omtsf.CountryCode) interface{} {
	if c == nil {
		return nil
	}
	return string(*c)
}

func geoVal(g *omtsf.Geo) interface{} {
	if g == nil {
		return nil
	}
	return *g
}

// optionalDateVal maps an OptionalDate to the three-way diff value: nil
// when the field is absent, openEnded when present-but-null, or the
// normalised date string.
func optionalDateVal(o omtsf.OptionalDate) interface{} {
	if !o.Present {
		return nil
	}
	if o.Value == nil {
		return openEnded
	}
	return normaliseDate(string(*o.Value))
}

func extraKeys(maps ...map[string]interface{}) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range maps {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// compareDataQuality compares the scalar sub-fields of a DataQuality
// object, prefixing each field name with fieldPrefix (spec.md §4.4).
func compareDataQuality(fieldPrefix string, a, b *omtsf.DataQuality, ignore map[string]bool, out *[]PropertyChange) {
	if ignore[fieldPrefix] {
		return
	}
	switch {
	case a == nil && b == nil:
		return
	case a != nil && b != nil:
		check := func(sub string, av, bv interface{}) {
			name := fieldPrefix + "." + sub
			if !ignore[name] {
				maybeChange(name, av, bv, out)
			}
		}
		check("confidence", floatVal(a.Confidence), floatVal(b.Confidence))
		check("source", strValNonEmpty(a.Source), strValNonEmpty(b.Source))
		check("method", strValNonEmpty(a.Method), strValNonEmpty(b.Method))
		check("as_of", dateVal(a.AsOf), dateVal(b.AsOf))
		for _, key := range extraKeys(a.Extra, b.Extra) {
			name := fieldPrefix + "." + key
			if ignore[name] {
				continue
			}
			maybeChange(name, a.Extra[key], b.Extra[key], out)
		}
	case a != nil:
		*out = append(*out, PropertyChange{Field: fieldPrefix, OldValue: *a, NewValue: nil})
	default:
		*out = append(*out, PropertyChange{Field: fieldPrefix, OldValue: nil, NewValue: *b})
	}
}

func strValNonEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// compareNodeProperties compares the scalar fields of two matched Nodes.
func compareNodeProperties(a, b *omtsf.Node, ignore map[string]bool) []PropertyChange {
	var changes []PropertyChange
	check := func(field string, av, bv interface{}) {
		if !ignore[field] {
			maybeChange(field, av, bv, &changes)
		}
	}

	check("name", strVal(a.Name), strVal(b.Name))
	check("jurisdiction", countryVal(a.Jurisdiction), countryVal(b.Jurisdiction))
	check("status", strVal(a.Status), strVal(b.Status))
	check("governance_structure", strVal(a.GovernanceStructure), strVal(b.GovernanceStructure))
	check("operator", strVal(a.Operator), strVal(b.Operator))
	check("address", strVal(a.Address), strVal(b.Address))
	check("geo", geoVal(a.GeoCoord), geoVal(b.GeoCoord))
	check("commodity_code", strVal(a.CommodityCode), strVal(b.CommodityCode))
	check("unit", strVal(a.Unit), strVal(b.Unit))
	check("role", strVal(a.Role), strVal(b.Role))
	check("attestation_type", strVal(a.AttestationType), strVal(b.AttestationType))
	check("standard", strVal(a.Standard), strVal(b.Standard))
	check("issuer", strVal(a.Issuer), strVal(b.Issuer))
	check("valid_from", dateVal(a.ValidFrom), dateVal(b.ValidFrom))
	check("valid_to", optionalDateVal(a.ValidTo), optionalDateVal(b.ValidTo))
	check("outcome", strVal(a.Outcome), strVal(b.Outcome))
	check("attestation_status", strVal(a.AttestationStatus), strVal(b.AttestationStatus))
	check("reference", strVal(a.Reference), strVal(b.Reference))
	check("risk_severity", strVal(a.RiskSeverity), strVal(b.RiskSeverity))
	check("risk_likelihood", strVal(a.RiskLikelihood), strVal(b.RiskLikelihood))
	check("lot_id", strVal(a.LotId), strVal(b.LotId))
	check("quantity", floatVal(a.Quantity), floatVal(b.Quantity))
	check("production_date", dateVal(a.ProductionDate), dateVal(b.ProductionDate))
	check("origin_country", countryVal(a.OriginCountry), countryVal(b.OriginCountry))
	check("direct_emissions_co2e", floatVal(a.DirectEmissionsCO2e), floatVal(b.DirectEmissionsCO2e))
	check("indirect_emissions_co2e", floatVal(a.IndirectEmissionsCO2e), floatVal(b.IndirectEmissionsCO2e))
	check("emission_factor_source", strVal(a.EmissionFactorSource), strVal(b.EmissionFactorSource))
	check("installation_id", strVal(a.InstallationId), strVal(b.InstallationId))

	compareDataQuality("data_quality", a.DataQuality, b.DataQuality, ignore, &changes)

	for _, key := range extraKeys(a.Extra, b.Extra) {
		if ignore[key] {
			continue
		}
		maybeChange(key, a.Extra[key], b.Extra[key], &changes)
	}

	return changes
}

// compareEdgeProps compares the scalar fields of two matched EdgeProperties.
func compareEdgeProps(a, b *omtsf.EdgeProperties, ignore map[string]bool) []PropertyChange {
	var changes []PropertyChange
	check := func(field string, av, bv interface{}) {
		if !ignore[field] {
			maybeChange(field, av, bv, &changes)
		}
	}

	check("valid_from", dateVal(a.ValidFrom), dateVal(b.ValidFrom))
	check("valid_to", optionalDateVal(a.ValidTo), optionalDateVal(b.ValidTo))
	check("percentage", floatVal(a.Percentage), floatVal(b.Percentage))
	check("volume", floatVal(a.Volume), floatVal(b.Volume))
	check("annual_value", floatVal(a.AnnualValue), floatVal(b.AnnualValue))
	check("share_of_buyer_demand", floatVal(a.ShareOfBuyerDemand), floatVal(b.ShareOfBuyerDemand))
	check("quantity", floatVal(a.Quantity), floatVal(b.Quantity))
	check("direct", boolVal(a.Direct), boolVal(b.Direct))
	check("control_type", strVal(a.ControlType), strVal(b.ControlType))
	check("consolidation_basis", strVal(a.ConsolidationBasis), strVal(b.ConsolidationBasis))
	check("event_type", strVal(a.EventType), strVal(b.EventType))
	check("effective_date", dateVal(a.EffectiveDate), dateVal(b.EffectiveDate))
	check("description", strVal(a.Description), strVal(b.Description))
	check("commodity", strVal(a.Commodity), strVal(b.Commodity))
	check("contract_ref", strVal(a.ContractRef), strVal(b.ContractRef))
	check("volume_unit", strVal(a.VolumeUnit), strVal(b.VolumeUnit))
	check("value_currency", strVal(a.ValueCurrency), strVal(b.ValueCurrency))
	check("tier", intVal(a.Tier), intVal(b.Tier))
	check("service_type", strVal(a.ServiceType), strVal(b.ServiceType))
	check("unit", strVal(a.Unit), strVal(b.Unit))
	check("scope", strVal(a.Scope), strVal(b.Scope))

	compareDataQuality("data_quality", a.DataQuality, b.DataQuality, ignore, &changes)

	for _, key := range extraKeys(a.Extra, b.Extra) {
		if ignore[key] {
			continue
		}
		maybeChange(key, a.Extra[key], b.Extra[key], &changes)
	}

	return changes
}

// compareIdentifiers diffs two identifier slices, keyed by canonical
// string. The reserved "internal" scheme is excluded from matching and
// thus from this diff, mirroring the matching exclusion (spec.md §3.2).
func compareIdentifiers(aIds, bIds []omtsf.Identifier) IdentifierSetDiff {
	aMap := make(map[string]omtsf.Identifier)
	for _, id := range aIds {
		if !id.IsInternal() {
			aMap[id.CanonicalKey()] = id
		}
	}
	bMap := make(map[string]omtsf.Identifier)
	for _, id := range bIds {
		if !id.IsInternal() {
			bMap[id.CanonicalKey()] = id
		}
	}

	diff := IdentifierSetDiff{}
	for key, id := range aMap {
		if _, ok := bMap[key]; !ok {
			diff.Removed = append(diff.Removed, id)
		}
	}
	for key, id := range bMap {
		if _, ok := aMap[key]; !ok {
			diff.Added = append(diff.Added, id)
		}
	}
	for key, idA := range aMap {
		idB, ok := bMap[key]
		if !ok {
			continue
		}
		var fieldChanges []PropertyChange
		maybeChange("valid_from", dateVal(idA.ValidFrom), dateVal(idB.ValidFrom), &fieldChanges)
		maybeChange("valid_to", optionalDateVal(idA.ValidTo), optionalDateVal(idB.ValidTo), &fieldChanges)
		maybeChange("sensitivity", strValNonEmpty(string(idA.Sensitivity)), strValNonEmpty(string(idB.Sensitivity)), &fieldChanges)
		maybeChange("verification_status", strValNonEmpty(idA.VerificationStatus), strValNonEmpty(idB.VerificationStatus), &fieldChanges)
		maybeChange("verification_date", dateVal(idA.VerificationDate), dateVal(idB.VerificationDate), &fieldChanges)
		maybeChange("authority", strValNonEmpty(idA.Authority), strValNonEmpty(idB.Authority), &fieldChanges)
		for _, extraKey := range extraKeys(idA.Extra, idB.Extra) {
			maybeChange(extraKey, idA.Extra[extraKey], idB.Extra[extraKey], &fieldChanges)
		}
		if len(fieldChanges) > 0 {
			diff.Modified = append(diff.Modified, IdentifierFieldDiff{CanonicalKey: key, FieldChanges: fieldChanges})
		}
	}
	return diff
}

func labelKey(l omtsf.Label) string {
	if l.Value == nil {
		return l.Key + "\x00"
	}
	return l.Key + "\x00" + *l.Value
}

// compareLabels diffs two label slices, matched by (key, value) pair. A
// value change for an existing key surfaces as a removal plus an addition,
// never an in-place modification (spec.md §4.4).
func compareLabels(aLabels, bLabels []omtsf.Label) LabelSetDiff {
	bSet := make(map[string]bool, len(bLabels))
	for _, l := range bLabels {
		bSet[labelKey(l)] = true
	}
	aSet := make(map[string]bool, len(aLabels))
	for _, l := range aLabels {
		aSet[labelKey(l)] = true
	}

	diff := LabelSetDiff{}
	for _, l := range aLabels {
		if !bSet[labelKey(l)] {
			diff.Removed = append(diff.Removed, l)
		}
	}
	for _, l := range bLabels {
		if !aSet[labelKey(l)] {
			diff.Added = append(diff.Added, l)
		}
	}
	return diff
}
