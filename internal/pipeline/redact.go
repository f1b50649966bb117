package pipeline

import (
	omtsferrors "github.com/BayFX/omtsf-sub000/internal/errors"
	"github.com/BayFX/omtsf-sub000/internal/logging"
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
	"github.com/BayFX/omtsf-sub000/internal/redaction"
)

func parseScope(s string) (omtsf.DisclosureScope, error) {
	switch s {
	case "partner":
		return omtsf.ScopePartner, nil
	case "public":
		return omtsf.ScopePublic, nil
	case "internal":
		return omtsf.ScopeInternal, nil
	default:
		return "", omtsferrors.Newf(omtsferrors.ErrorTypeValidation, omtsferrors.SeverityHigh,
			"unknown disclosure scope %q", s)
	}
}

// Redact loads path and redacts it to scope, retaining the given node ids
// unconditionally.
func Redact(path string, scope string, retainIDs []string) (*omtsf.File, error) {
	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	targetScope, err := parseScope(scope)
	if err != nil {
		return nil, err
	}
	retain := make(map[omtsf.NodeId]bool, len(retainIDs))
	for _, id := range retainIDs {
		retain[omtsf.NodeId(id)] = true
	}
	out, err := redaction.Redact(file, targetScope, retain)
	if err != nil {
		return nil, err
	}
	logging.With("component", "pipeline.redact", "file", path, "scope", scope).
		Info("redacted file", "nodes", len(out.Nodes), "edges", len(out.Edges))
	return out, nil
}
