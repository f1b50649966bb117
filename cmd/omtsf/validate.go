package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BayFX/omtsf-sub000/internal/pipeline"
	"github.com/BayFX/omtsf-sub000/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Run L1/L2/L3 validation rules against one or more OMTSF files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().Bool("l3", false, "also run L3 (external-data) rules")
	validateCmd.Flags().Bool("no-l2", false, "skip L2 (cross-reference) rules")
	validateCmd.Flags().String("format", "", "output format: json or text (default: config's output_format)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	l3, _ := cmd.Flags().GetBool("l3")
	noL2, _ := cmd.Flags().GetBool("no-l2")
	opts := pipeline.ValidateOptions{RunL2: !noL2, RunL3: l3}

	if len(args) == 1 {
		result, err := pipeline.Validate(args[0], opts)
		if err != nil {
			return err
		}
		if err := printValidateResult(cmd, args[0], result); err != nil {
			return err
		}
		if !result.IsConformant() {
			return fmt.Errorf("%s is not conformant", args[0])
		}
		return nil
	}

	results, err := pipeline.ValidateBatch(ctx, args, opts)
	if err != nil && results == nil {
		return err
	}
	failed := false
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%s: %v\n", r.Path, r.Err)
			failed = true
			continue
		}
		if err := printValidateResult(cmd, r.Path, r.Result); err != nil {
			return err
		}
		if !r.Result.IsConformant() {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("validation failed for one or more files")
	}
	return nil
}

func printValidateResult(cmd *cobra.Command, path string, result validation.ValidationResult) error {
	if outputFormat(cmd) == "text" {
		printValidateText(path, result)
		return nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printValidateText(path string, result validation.ValidationResult) {
	fmt.Printf("%s: %d diagnostics, conformant=%v\n", path, result.Len(), result.IsConformant())
	for _, d := range result.Diagnostics {
		fmt.Println(" ", severityColor(d.Severity, d.String()))
	}
}
