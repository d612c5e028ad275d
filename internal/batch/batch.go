// Package batch runs one generation per document with bounded parallelism.
package batch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kolah/openapi2postman/internal/engine"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Func processes one document. The returned result may be nil on error.
type Func func(ctx context.Context, path string) (*engine.Result, error)

// Outcome is the result of one document.
type Outcome struct {
	Path     string
	Filename string
	Metrics  engine.Metrics
	Err      error
}

type Summary struct {
	Outcomes []Outcome
	// Duplicates lists paths given more than once; each is processed once.
	Duplicates []string
}

// Run calls fn for each distinct path, at most concurrency at a time. A failing
// document never stops the others; outcomes keep the order of paths.
func Run(ctx context.Context, paths []string, concurrency int, fn Func) *Summary {
	unique, duplicates := dedupe(paths)
	summary := &Summary{
		Outcomes:   make([]Outcome, len(unique)),
		Duplicates: duplicates,
	}

	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, path := range unique {
		g.Go(func() error {
			out := Outcome{Path: path}
			if err := ctx.Err(); err != nil {
				out.Err = err
				summary.Outcomes[i] = out
				return nil
			}

			result, err := fn(ctx, path)
			switch {
			case err != nil:
				out.Err = err
			case result == nil:
				out.Err = fmt.Errorf("%s: no result", path)
			default:
				out.Filename = result.Filename
				out.Metrics = result.Metrics
			}
			summary.Outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	return summary
}

// dedupe drops repeated paths, comparing cleaned forms.
func dedupe(paths []string) ([]string, []string) {
	seen := make(map[string]struct{}, len(paths))
	var unique, duplicates []string
	for _, p := range paths {
		key := filepath.Clean(p)
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, p)
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}
	return unique, duplicates
}

// Failed returns the outcomes that carry an error.
func (s *Summary) Failed() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Status is success when every document succeeded, failed when none did.
func (s *Summary) Status() Status {
	failed := len(s.Failed())
	switch {
	case failed == 0:
		return StatusSuccess
	case failed == len(s.Outcomes):
		return StatusFailed
	default:
		return StatusPartial
	}
}

// Totals sums the metrics of the successful documents.
func (s *Summary) Totals() engine.Metrics {
	var m engine.Metrics
	for _, o := range s.Outcomes {
		if o.Err != nil {
			continue
		}
		m.Endpoints += o.Metrics.Endpoints
		m.Resources += o.Metrics.Resources
		m.Operations += o.Metrics.Operations
		m.TestRequests += o.Metrics.TestRequests
	}
	return m
}
