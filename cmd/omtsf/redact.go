package main

import (
	"github.com/spf13/cobra"

	"github.com/BayFX/omtsf-sub000/internal/pipeline"
)

var redactCmd = &cobra.Command{
	Use:   "redact <file>",
	Short: "Redact an OMTSF file down to a disclosure scope",
	Args:  cobra.ExactArgs(1),
	RunE:  runRedact,
}

func init() {
	redactCmd.Flags().String("scope", "", "target disclosure scope: partner or public (required)")
	redactCmd.Flags().StringSlice("retain", nil, "node id to retain in full regardless of scope (repeatable)")
	redactCmd.Flags().String("out", "", "output path (default: stdout)")
	_ = redactCmd.MarkFlagRequired("scope")
}

func runRedact(cmd *cobra.Command, args []string) error {
	scope, _ := cmd.Flags().GetString("scope")
	retain, _ := cmd.Flags().GetStringSlice("retain")
	out, _ := cmd.Flags().GetString("out")

	file, err := pipeline.Redact(args[0], scope, retain)
	if err != nil {
		return err
	}
	return pipeline.SaveFile(file, out)
}
