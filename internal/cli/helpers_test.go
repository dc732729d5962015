package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const yardSpec = `package specs

constraint: slowZone: {
	description: "Crawl through the loading bay"
	kind:        "rectangular_region"
	bottom_left: {x: 0, y: 0}
	top_right: {x: 10, y: 10}
	inner: {kind: "max_velocity", max_velocity: 3}
}

constraint: turns: {
	kind:                         "centripetal_acceleration"
	max_centripetal_acceleration: 2
}
`

const threeSamples = `samples:
  - {x: 5, y: 5, velocity: 1}
  - {x: 12, y: 5, velocity: 4}
  - {x: 10, y: 0, velocity: 2}
`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeSpecs creates a specs directory holding yardSpec.
func writeSpecs(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "specs")
	writeFile(t, dir, "yard.cue", yardSpec)
	return dir
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeResponse parses a JSON CLIResponse, decoding Data into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data), string(raw.Data))
	}
	return raw.CLIResponse
}

// recordRun evaluates samples against constraint into db and returns the
// run id.
func recordRun(t *testing.T, specs, db, constraint, samples string) string {
	t.Helper()
	path := writeFile(t, t.TempDir(), "samples.yaml", samples)

	out, err := execute(t, NewEvalCommand(&RootOptions{Format: "json"}),
		specs, "--constraint", constraint, "--samples", path, "--db", db)
	require.NoError(t, err, out)

	resp := decodeResponse(t, out, nil)
	require.NotEmpty(t, resp.RunID)
	return resp.RunID
}
