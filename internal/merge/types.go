// Package merge implements the deduplicating multi-file merge pipeline
// (spec.md §4.5): identifier-based and same_as-based entity resolution via
// union-find, per-group scalar/identifier/label merge with conflict
// recording, deterministic output ordering, and post-merge L1
// revalidation.
package merge

import "github.com/BayFX/omtsf-sub000/internal/omtsf"

// SameAsThreshold configures which same_as edges are honoured during
// union-find processing (spec.md §4.5 step 3). The default is Definite,
// the most conservative setting.
type SameAsThreshold int

const (
	// Definite honours only same_as edges carrying confidence "definite".
	Definite SameAsThreshold = iota
	// Probable honours "definite" and "probable".
	Probable
	// Possible honours every same_as edge regardless of confidence.
	Possible
)

type sameAsLevel int

const (
	levelDefinite sameAsLevel = iota
	levelProbable
	levelPossible
)

func sameAsLevelFromString(s string) sameAsLevel {
	switch s {
	case "definite":
		return levelDefinite
	case "probable":
		return levelProbable
	default:
		return levelPossible
	}
}

// Honours reports whether a same_as edge carrying the given confidence
// string should be unioned under this threshold. An absent confidence
// (empty string) is treated as "possible", the weakest level.
func (t SameAsThreshold) Honours(confidence string) bool {
	if confidence == "" {
		confidence = "possible"
	}
	level := sameAsLevelFromString(confidence)
	switch t {
	case Definite:
		return level == levelDefinite
	case Probable:
		return level == levelDefinite || level == levelProbable
	default:
		return true
	}
}

// ConflictEntry is a single conflicting value observed in a merge group,
// with its provenance.
type ConflictEntry struct {
	Value      interface{}
	SourceFile string
}

// Conflict is a recorded disagreement on one scalar property within a
// merge group. When two or more source nodes/edges disagree, the property
// is omitted from the merged output and a Conflict is appended to the
// output's "_conflicts" extra entry instead (spec.md §4.5 step 4).
type Conflict struct {
	Field  string
	Values []ConflictEntry
}

// MergeMetadata is the provenance record written into the merged file's
// "merge_metadata" extra entry.
type MergeMetadata struct {
	// MergeID uniquely identifies this merge run, for audit trails that
	// need to correlate a merged file back to the run that produced it.
	MergeID           string
	SourceFiles       []string
	ReportingEntities []string
	Timestamp         string
	MergedNodeCount   int
	MergedEdgeCount   int
	ConflictCount     int
}

// Config configures the merge pipeline.
type Config struct {
	// GroupSizeLimit is the maximum number of nodes allowed in a single
	// merge group before an OversizedMergeGroup warning is emitted.
	// Default: 50.
	GroupSizeLimit int
	// SameAsThreshold gates which same_as edges extend merge groups.
	// Default: Definite.
	SameAsThreshold SameAsThreshold
	// DefaultSourceLabel is not read by MergeWithConfig: conflict entries
	// and merge metadata always label inputs by position ("file_0",
	// "file_1", ...). Default: "<unknown>".
	DefaultSourceLabel string
}

// DefaultConfig returns the default merge configuration.
func DefaultConfig() Config {
	return Config{
		GroupSizeLimit:     50,
		SameAsThreshold:    Definite,
		DefaultSourceLabel: "<unknown>",
	}
}

// Output is the result of a successful merge.
type Output struct {
	File          *omtsf.File
	Metadata      MergeMetadata
	Warnings      []OversizedMergeGroup
	ConflictCount int
}

// OversizedMergeGroup warns that a merge group exceeded the configured
// size limit, which may indicate a false-positive identifier match pulling
// unrelated entities together.
type OversizedMergeGroup struct {
	RepresentativeOrdinal int
	GroupSize             int
	Limit                 int
}
