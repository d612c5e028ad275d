package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	root := RootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func testdata(t *testing.T, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)
	return path
}

func TestGenerateWritesFiles(t *testing.T) {
	spec := testdata(t, "orders.json")
	out := t.TempDir()

	_, stderr, err := execute(t, "generate", spec, "-o", out, "-e", "Production", "-b", "-r", "-a", "oauth")
	require.NoError(t, err, stderr)
	require.Contains(t, stderr, "Status: success")

	data, err := os.ReadFile(filepath.Join(out, "Orders.metrics.json"))
	require.NoError(t, err)
	require.JSONEq(t, `{"endpoints":1,"resources":1,"operations":2,"testRequests":5}`, string(data))

	data, err = os.ReadFile(filepath.Join(out, "Orders.postman_collection.json"))
	require.NoError(t, err)

	var coll map[string]any
	require.NoError(t, json.Unmarshal(data, &coll))
	orders := coll["item"].([]any)[0].(map[string]any)
	require.Equal(t, "Orders", orders["name"])
	require.Len(t, orders["item"], 2)
}

func TestGenerateDryRun(t *testing.T) {
	spec := testdata(t, "orders.json")
	out := filepath.Join(t.TempDir(), "never")

	stdout, _, err := execute(t, "generate", spec, "-o", out, "--dry-run")
	require.NoError(t, err)
	require.Contains(t, stdout, "// Orders.postman_collection.json\n")
	require.Contains(t, stdout, "// Orders.metrics.json\n")

	_, err = os.Stat(out)
	require.True(t, os.IsNotExist(err))
}

func TestGeneratePartialFailure(t *testing.T) {
	out := t.TempDir()

	_, stderr, err := execute(t, "generate", testdata(t, "orders.json"), testdata(t, "untagged.json"), "-o", out)
	require.ErrorContains(t, err, "1 of 2 documents failed")
	require.Contains(t, stderr, "Status: partial")
	require.Contains(t, stderr, "operation declares no tags")

	_, err = os.Stat(filepath.Join(out, "Orders.postman_collection.json"))
	require.NoError(t, err)
}

func TestGenerateUnknownEnvironment(t *testing.T) {
	_, stderr, err := execute(t, "generate", testdata(t, "orders.json"), "-o", t.TempDir(), "-e", "Staging")
	require.Error(t, err)
	require.Contains(t, stderr, `environment "Staging" is not defined`)
	require.Contains(t, stderr, "Status: failed")
}

func TestGenerateSuccessBody(t *testing.T) {
	out := t.TempDir()
	body := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(body, []byte(`{"name":"Widget","price":9.99}`), 0o644))

	_, _, err := execute(t, "generate", testdata(t, "orders.json"), "-o", out, "-b", "-s", body)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "Orders.postman_collection.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `\"price\": 9.99`)
}

func TestGenerateMissingSuccessBodyIsNotFatal(t *testing.T) {
	_, stderr, err := execute(t, "generate", testdata(t, "orders.json"), "-o", t.TempDir(), "-b", "-s", filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Contains(t, stderr, "ignoring success body")
}

func TestGenerateValidation(t *testing.T) {
	_, _, err := execute(t, "generate")
	require.ErrorContains(t, err, "at least one spec file is required")

	_, _, err = execute(t, "generate", "a.json", "b.json", "-u", "https://api.example.com")
	require.ErrorContains(t, err, "host-url applies to a single spec")
}
