package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BayFX/omtsf-sub000/internal/pipeline"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <file>...",
	Short: "Deduplicate and merge two or more OMTSF files into one",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMerge,
}

func init() {
	mergeCmd.Flags().Int("group-size-limit", 0, "maximum merge group size before a warning (default: 50)")
	mergeCmd.Flags().String("same-as-threshold", "definite", "same_as confidence honoured: definite, probable, or possible")
	mergeCmd.Flags().String("out", "", "output path (default: stdout)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	groupSizeLimit, _ := cmd.Flags().GetInt("group-size-limit")
	sameAsThreshold, _ := cmd.Flags().GetString("same-as-threshold")
	out, _ := cmd.Flags().GetString("out")

	output, err := pipeline.Merge(args, pipeline.MergeOptions{
		GroupSizeLimit:  groupSizeLimit,
		SameAsThreshold: sameAsThreshold,
	})
	if err != nil {
		return err
	}
	for _, w := range output.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: merge group of size %d exceeds limit %d\n", w.GroupSize, w.Limit)
	}
	return pipeline.SaveFile(output.File, out)
}
