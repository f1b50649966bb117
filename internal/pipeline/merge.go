package pipeline

import (
	"fmt"

	"github.com/BayFX/omtsf-sub000/internal/logging"
	"github.com/BayFX/omtsf-sub000/internal/merge"
)

// MergeOptions controls a single merge invocation.
type MergeOptions struct {
	GroupSizeLimit  int
	SameAsThreshold string
}

func parseSameAsThreshold(s string) merge.SameAsThreshold {
	switch s {
	case "probable":
		return merge.Probable
	case "possible":
		return merge.Possible
	default:
		return merge.Definite
	}
}

// Merge loads every path and runs the merge pipeline, logging any
// oversized-group warnings at the component level (core pipelines never
// log directly).
func Merge(paths []string, opts MergeOptions) (*merge.Output, error) {
	files, err := LoadFiles(paths)
	if err != nil {
		return nil, err
	}
	cfg := merge.Config{
		GroupSizeLimit:     opts.GroupSizeLimit,
		SameAsThreshold:    parseSameAsThreshold(opts.SameAsThreshold),
		DefaultSourceLabel: "<unknown>",
	}
	if cfg.GroupSizeLimit <= 0 {
		cfg.GroupSizeLimit = merge.DefaultConfig().GroupSizeLimit
	}
	output, err := merge.MergeWithConfig(files, cfg)
	if err != nil {
		return nil, err
	}
	log := logging.With("component", "pipeline.merge", "inputs", fmt.Sprint(len(paths)))
	for _, w := range output.Warnings {
		log.Warn("oversized merge group", "group_size", w.GroupSize, "limit", w.Limit)
	}
	log.Info("merged files", "merge_id", output.Metadata.MergeID, "nodes", output.Metadata.MergedNodeCount,
		"edges", output.Metadata.MergedEdgeCount, "conflicts", output.Metadata.ConflictCount)
	return output, nil
}
