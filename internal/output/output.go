// Package output renders generation results into the files written to disk
// or returned over HTTP.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kolah/openapi2postman/internal/engine"
)

// MetricsSuffix is appended to the collection name to form the metrics file name.
const MetricsSuffix = ".metrics.json"

type Output struct {
	Filename string
	Content  string
}

// Render produces the collection document followed by the metrics document.
func Render(result *engine.Result) ([]Output, error) {
	collection, err := engine.PrettyJSON(result.Collection)
	if err != nil {
		return nil, fmt.Errorf("rendering collection: %w", err)
	}

	metrics, err := engine.PrettyJSON(result.Metrics)
	if err != nil {
		return nil, fmt.Errorf("rendering metrics: %w", err)
	}

	return []Output{
		{
			Filename: result.Filename,
			Content:  collection + "\n",
		},
		{
			Filename: MetricsFilename(result.Filename),
			Content:  metrics + "\n",
		},
	}, nil
}

// MetricsFilename derives the metrics file name from a collection file name.
func MetricsFilename(collectionFile string) string {
	return strings.TrimSuffix(collectionFile, engine.CollectionSuffix) + MetricsSuffix
}

// Write stores outputs under dir, creating it when needed, and returns the written paths.
func Write(dir string, outputs []Output) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		path := filepath.Join(dir, out.Filename)
		if err := os.WriteFile(path, []byte(out.Content), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
