package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BayFX/omtsf-sub000/internal/diffengine"
	"github.com/BayFX/omtsf-sub000/internal/pipeline"
)

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Show structural differences between two OMTSF snapshots",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().StringSlice("ignore-field", nil, "property field to exclude from comparison (repeatable)")
	diffCmd.Flags().StringSlice("node-type", nil, "restrict comparison to these node types (repeatable)")
	diffCmd.Flags().String("format", "", "output format: json or text (default: config's output_format)")
}

func runDiff(cmd *cobra.Command, args []string) error {
	ignoreFields, _ := cmd.Flags().GetStringSlice("ignore-field")
	nodeTypes, _ := cmd.Flags().GetStringSlice("node-type")

	result, err := pipeline.Diff(args[0], args[1], pipeline.DiffOptions{
		NodeTypes:    nodeTypes,
		IgnoreFields: ignoreFields,
	})
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "text" {
		printDiffText(result)
		return nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printDiffText(result *diffengine.Result) {
	s := result.Summary()
	fmt.Printf("nodes: +%d -%d ~%d =%d\n", s.NodesAdded, s.NodesRemoved, s.NodesModified, s.NodesUnchanged)
	fmt.Printf("edges: +%d -%d ~%d =%d\n", s.EdgesAdded, s.EdgesRemoved, s.EdgesModified, s.EdgesUnchanged)
	for _, w := range result.Warnings {
		fmt.Println(ansiColor("33", "warning: "+w))
	}
}
