package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kolah/openapi2postman/internal/engine"
	"github.com/kolah/openapi2postman/internal/postman"
	"github.com/stretchr/testify/require"
)

func sampleResult(t *testing.T) *engine.Result {
	t.Helper()
	coll := postman.New("id-1", "Café <Shop>")
	item, err := engine.BuildRequest(engine.RequestTemplate{
		StatusCode: "200",
		Method:     "GET",
		HostURL:    "https://api.example.com",
		Endpoint:   "/orders",
		TestScript: "pm.expect(a < b).to.be.true;",
	}, "OK", engine.NewObject())
	require.NoError(t, err)
	coll.AddToOperation("Orders", "List", item)

	return &engine.Result{
		Filename:   "Café <Shop>.postman_collection.json",
		Collection: coll,
		Metrics:    engine.Metrics{Endpoints: 1, Resources: 1, Operations: 1, TestRequests: 1},
	}
}

func TestRender(t *testing.T) {
	outputs, err := Render(sampleResult(t))
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	require.Equal(t, "Café <Shop>.postman_collection.json", outputs[0].Filename)
	require.Contains(t, outputs[0].Content, "\n    \"info\": {\n        \"_postman_id\": \"id-1\",\n        \"name\": \"Café <Shop>\",")
	require.Contains(t, outputs[0].Content, "pm.expect(a < b).to.be.true;")

	var coll postman.Collection
	require.NoError(t, json.Unmarshal([]byte(outputs[0].Content), &coll))
	require.Equal(t, 1, coll.RequestCount())

	require.Equal(t, "Café <Shop>.metrics.json", outputs[1].Filename)
	require.Equal(t, "{\n    \"endpoints\": 1,\n    \"resources\": 1,\n    \"operations\": 1,\n    \"testRequests\": 1\n}\n", outputs[1].Content)
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	outputs := []Output{
		{Filename: "a.postman_collection.json", Content: "{}\n"},
		{Filename: "a.metrics.json", Content: "{}\n"},
	}

	paths, err := Write(dir, outputs)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.postman_collection.json"), filepath.Join(dir, "a.metrics.json")}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	require.Equal(t, "{}\n", string(data))
}

func TestMetricsFilename(t *testing.T) {
	require.Equal(t, "Shop.metrics.json", MetricsFilename("Shop.postman_collection.json"))
	require.Equal(t, "odd.json.metrics.json", MetricsFilename("odd.json"))
}
