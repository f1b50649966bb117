package pipeline

import (
	"github.com/BayFX/omtsf-sub000/internal/diffengine"
	"github.com/BayFX/omtsf-sub000/internal/logging"
)

// DiffOptions controls a single diff invocation.
type DiffOptions struct {
	NodeTypes    []string
	EdgeTypes    []string
	IgnoreFields []string
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// Diff loads both paths and runs diffengine.DiffFiltered according to opts.
func Diff(pathA, pathB string, opts DiffOptions) (*diffengine.Result, error) {
	a, err := LoadFile(pathA)
	if err != nil {
		return nil, err
	}
	b, err := LoadFile(pathB)
	if err != nil {
		return nil, err
	}
	filter := &diffengine.Filter{
		NodeTypes:    toSet(opts.NodeTypes),
		EdgeTypes:    toSet(opts.EdgeTypes),
		IgnoreFields: toSet(opts.IgnoreFields),
	}
	result := diffengine.DiffFiltered(a, b, filter)
	summary := result.Summary()
	logging.With("component", "pipeline.diff", "a", pathA, "b", pathB).
		Info("diffed files",
			"nodes_added", summary.NodesAdded, "nodes_removed", summary.NodesRemoved,
			"nodes_modified", summary.NodesModified,
			"edges_added", summary.EdgesAdded, "edges_removed", summary.EdgesRemoved,
			"edges_modified", summary.EdgesModified)
	return result, nil
}
