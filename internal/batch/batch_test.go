package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kolah/openapi2postman/internal/engine"
	"github.com/stretchr/testify/require"
)

func fakeResult(path string) *engine.Result {
	return &engine.Result{
		Filename: path + ".postman_collection.json",
		Metrics:  engine.Metrics{Endpoints: 1, Resources: 1, Operations: 2, TestRequests: 3},
	}
}

func TestRunStatus(t *testing.T) {
	errBroken := errors.New("broken")

	tests := []struct {
		name   string
		paths  []string
		failOn map[string]bool
		want   Status
	}{
		{"all succeed", []string{"a.json", "b.json"}, nil, StatusSuccess},
		{"some fail", []string{"a.json", "b.json"}, map[string]bool{"b.json": true}, StatusPartial},
		{"all fail", []string{"a.json", "b.json"}, map[string]bool{"a.json": true, "b.json": true}, StatusFailed},
		{"nothing to do", nil, nil, StatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Run(context.Background(), tt.paths, 2, func(_ context.Context, path string) (*engine.Result, error) {
				if tt.failOn[path] {
					return nil, errBroken
				}
				return fakeResult(path), nil
			})

			require.Equal(t, tt.want, summary.Status())
			require.Len(t, summary.Outcomes, len(tt.paths))
			for i, o := range summary.Outcomes {
				require.Equal(t, tt.paths[i], o.Path)
				if tt.failOn[o.Path] {
					require.ErrorIs(t, o.Err, errBroken)
				} else {
					require.NoError(t, o.Err)
					require.Equal(t, o.Path+".postman_collection.json", o.Filename)
				}
			}
		})
	}
}

func TestRunDuplicates(t *testing.T) {
	var calls atomic.Int32
	summary := Run(context.Background(), []string{"a.json", "./a.json", "b.json", "a.json"}, 1, func(_ context.Context, path string) (*engine.Result, error) {
		calls.Add(1)
		return fakeResult(path), nil
	})

	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, []string{"./a.json", "a.json"}, summary.Duplicates)
	require.Equal(t, engine.Metrics{Endpoints: 2, Resources: 2, Operations: 4, TestRequests: 6}, summary.Totals())
}

func TestRunRespectsConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	paths := []string{"a", "b", "c", "d", "e", "f"}

	Run(context.Background(), paths, 2, func(_ context.Context, path string) (*engine.Result, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
		return fakeResult(path), nil
	})

	require.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := Run(ctx, []string{"a.json"}, 1, func(context.Context, string) (*engine.Result, error) {
		t.Error("should not be called")
		return nil, nil
	})

	require.ErrorIs(t, summary.Outcomes[0].Err, context.Canceled)
	require.Equal(t, StatusFailed, summary.Status())
}

func TestRunNilResult(t *testing.T) {
	summary := Run(context.Background(), []string{"a.json"}, 1, func(context.Context, string) (*engine.Result, error) {
		return nil, nil
	})

	require.Error(t, summary.Outcomes[0].Err)
	require.Len(t, summary.Failed(), 1)
}
