package main

import (
	"github.com/spf13/cobra"

	"github.com/BayFX/omtsf-sub000/internal/pipeline"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Extract a subgraph from an OMTSF file",
}

var queryInducedCmd = &cobra.Command{
	Use:   "induced <file>",
	Short: "Induced subgraph over an explicit node set",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueryInduced,
}

var queryEgoCmd = &cobra.Command{
	Use:   "ego <file>",
	Short: "Ego graph around a center node within a radius",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueryEgo,
}

var querySelectCmd = &cobra.Command{
	Use:   "select <file>",
	Short: "Subgraph matched by node-type/label/identifier selectors, optionally expanded",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuerySelect,
}

func init() {
	queryCmd.PersistentFlags().String("cache", "", "bbolt cache file for the built graph index")
	queryCmd.PersistentFlags().String("out", "", "output path (default: stdout)")

	queryInducedCmd.Flags().StringSlice("node", nil, "node id to include (repeatable, required)")
	_ = queryInducedCmd.MarkFlagRequired("node")

	queryEgoCmd.Flags().String("center", "", "center node id (required)")
	queryEgoCmd.Flags().Int("radius", 1, "traversal radius in hops")
	queryEgoCmd.Flags().String("direction", "out", "traversal direction: out, in, or both")
	_ = queryEgoCmd.MarkFlagRequired("center")

	querySelectCmd.Flags().StringSlice("node-type", nil, "node type selector (repeatable)")
	querySelectCmd.Flags().Int("expand", 0, "BFS expansion hops around the selector match")

	queryCmd.AddCommand(queryInducedCmd, queryEgoCmd, querySelectCmd)
}

func openQueryCache(cmd *cobra.Command) (*pipeline.GraphCache, error) {
	path, _ := cmd.Flags().GetString("cache")
	if path == "" {
		return nil, nil
	}
	return pipeline.OpenGraphCache(path)
}

func runQueryInduced(cmd *cobra.Command, args []string) error {
	nodes, _ := cmd.Flags().GetStringSlice("node")
	out, _ := cmd.Flags().GetString("out")
	cache, err := openQueryCache(cmd)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}
	file, err := pipeline.QueryInduced(cmd.Context(), args[0], nodes, cache)
	if err != nil {
		return err
	}
	return pipeline.SaveFile(file, out)
}

func runQueryEgo(cmd *cobra.Command, args []string) error {
	center, _ := cmd.Flags().GetString("center")
	radius, _ := cmd.Flags().GetInt("radius")
	direction, _ := cmd.Flags().GetString("direction")
	out, _ := cmd.Flags().GetString("out")
	cache, err := openQueryCache(cmd)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}
	file, err := pipeline.QueryEgo(cmd.Context(), args[0], center, radius, direction, cache)
	if err != nil {
		return err
	}
	return pipeline.SaveFile(file, out)
}

func runQuerySelect(cmd *cobra.Command, args []string) error {
	nodeTypes, _ := cmd.Flags().GetStringSlice("node-type")
	expand, _ := cmd.Flags().GetInt("expand")
	out, _ := cmd.Flags().GetString("out")
	cache, err := openQueryCache(cmd)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}
	file, err := pipeline.QuerySelect(cmd.Context(), args[0], pipeline.QuerySelectOptions{
		NodeTypes: nodeTypes,
		Expand:    expand,
	}, cache)
	if err != nil {
		return err
	}
	return pipeline.SaveFile(file, out)
}
