package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/BayFX/omtsf-sub000/internal/logging"
	"github.com/BayFX/omtsf-sub000/internal/validation"
)

// ValidateOptions controls a single validate invocation.
type ValidateOptions struct {
	RunL2 bool
	RunL3 bool
}

// Validate loads path and runs the configured rule levels against it.
func Validate(path string, opts ValidateOptions) (validation.ValidationResult, error) {
	file, err := LoadFile(path)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	cfg := validation.ValidationConfig{RunL1: true, RunL2: opts.RunL2, RunL3: opts.RunL3}
	result := validation.Validate(file, cfg)
	logging.With("component", "pipeline.validate", "file", path).
		Info("validated file", "diagnostics", result.Len(), "conformant", result.IsConformant())
	return result, nil
}

// BatchResult pairs a validate invocation's input path with its outcome.
type BatchResult struct {
	Path   string
	Result validation.ValidationResult
	Err    error
}

// ValidateBatch validates every path concurrently via errgroup, bounding
// the fan-out to avoid exhausting file descriptors on large batches.
func ValidateBatch(ctx context.Context, paths []string, opts ValidateOptions) ([]BatchResult, error) {
	results := make([]BatchResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = BatchResult{Path: p, Err: ctx.Err()}
				return ctx.Err()
			default:
			}
			result, err := Validate(p, opts)
			results[i] = BatchResult{Path: p, Result: result, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
