package merge

import (
	"fmt"
	"sort"

	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// scalarInput pairs an optional value with the source file label that
// contributed it.
type scalarInput[T comparable] struct {
	value  *T
	source string
}

// scalarResult is the outcome of mergeScalars: either every source agreed
// (possibly on absence) or they conflicted.
type scalarResult[T comparable] struct {
	agreed    bool
	value     *T
	conflicts []ConflictEntry
}

// mergeScalars compares N optional scalar values from a merge group. If
// every present value is equal (or none are present), the common value is
// agreed. Otherwise one ConflictEntry per distinct (source, value) pair is
// returned, sorted by (source_file, value-as-string) for determinism
// (spec.md §4.5 step 4).
func mergeScalars[T comparable](inputs []scalarInput[T]) scalarResult[T] {
	var present []scalarInput[T]
	for _, in := range inputs {
		if in.value != nil {
			present = append(present, in)
		}
	}
	if len(present) == 0 {
		return scalarResult[T]{agreed: true}
	}

	first := *present[0].value
	allEqual := true
	for _, p := range present {
		if *p.value != first {
			allEqual = false
			break
		}
	}
	if allEqual {
		v := first
		return scalarResult[T]{agreed: true, value: &v}
	}

	entries := make([]ConflictEntry, 0, len(present))
	for _, p := range present {
		entries = append(entries, ConflictEntry{Value: *p.value, SourceFile: p.source})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SourceFile != entries[j].SourceFile {
			return entries[i].SourceFile < entries[j].SourceFile
		}
		return fmt.Sprint(entries[i].Value) < fmt.Sprint(entries[j].Value)
	})

	deduped := entries[:0]
	for i, e := range entries {
		if i > 0 && e.SourceFile == entries[i-1].SourceFile && e.Value == entries[i-1].Value {
			continue
		}
		deduped = append(deduped, e)
	}

	return scalarResult[T]{agreed: false, conflicts: deduped}
}

// resolveScalarMerge merges inputs for one named field, returning the
// agreed value (nil on disagreement) plus a *Conflict record when the
// sources disagreed.
func resolveScalarMerge[T comparable](inputs []scalarInput[T], fieldName string) (*T, *Conflict) {
	result := mergeScalars(inputs)
	if result.agreed {
		return result.value, nil
	}
	return nil, &Conflict{Field: fieldName, Values: result.conflicts}
}

// validToScalarInput projects an edge's tri-state ValidTo into the plain
// *string shape resolveScalarMerge compares: absent stays nil (no
// information contributed), open-ended becomes the sentinel "open", and a
// dated value becomes its date string.
func validToScalarInput(v omtsf.OptionalDate, source string) scalarInput[string] {
	if !v.Present {
		return scalarInput[string]{source: source}
	}
	s := "open"
	if v.Value != nil {
		s = string(*v.Value)
	}
	return scalarInput[string]{value: &s, source: source}
}

// validToFromScalar reverses validToScalarInput's projection: nil (absent
// or conflicting) maps back to NoDate, "open" to an open-ended OptionalDate,
// anything else to a dated OptionalDate.
func validToFromScalar(s *string) omtsf.OptionalDate {
	if s == nil {
		return omtsf.NoDate
	}
	if *s == "open" {
		return omtsf.OpenEnded()
	}
	d := omtsf.CalendarDate(*s)
	return omtsf.DatedTo(d)
}

// mergeIdentifiers merges multiple Identifier slices into a deduplicated,
// sorted union. Deduplication uses the canonical key string; the merged
// slice is sorted by that same string (spec.md §4.5 step 4's identifier
// rule, reusing internal/omtsf's CanonicalKey).
func mergeIdentifiers(inputs [][]omtsf.Identifier) []omtsf.Identifier {
	seen := make(map[string]bool)
	type keyed struct {
		key string
		id  omtsf.Identifier
	}
	var result []keyed
	for _, ids := range inputs {
		for _, id := range ids {
			key := id.CanonicalKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, keyed{key, id})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].key < result[j].key })

	out := make([]omtsf.Identifier, len(result))
	for i, k := range result {
		out[i] = k.id
	}
	return out
}

// mergeLabels merges multiple Label slices into a deduplicated, sorted
// union, keyed by (key, value). Sort order: key ascending, then value
// ascending with an absent value sorting before any present value
// (spec.md §4.5 step 4).
func mergeLabels(inputs [][]omtsf.Label) []omtsf.Label {
	type labelKey struct {
		key   string
		value string
		has   bool
	}
	seen := make(map[labelKey]bool)
	var result []omtsf.Label
	for _, labels := range inputs {
		for _, l := range labels {
			lk := labelKey{key: l.Key, has: l.Value != nil}
			if l.Value != nil {
				lk.value = *l.Value
			}
			if seen[lk] {
				continue
			}
			seen[lk] = true
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		switch {
		case a.Value == nil && b.Value == nil:
			return false
		case a.Value == nil:
			return true
		case b.Value == nil:
			return false
		default:
			return *a.Value < *b.Value
		}
	})
	return result
}

// buildConflictsValue sorts conflicts by field name and returns them, or
// nil when there are none — callers use a nil result to mean "write no
// _conflicts key" (spec.md §4.5 step 4).
func buildConflictsValue(conflicts []Conflict) []Conflict {
	if len(conflicts) == 0 {
		return nil
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Field < conflicts[j].Field })
	return conflicts
}
