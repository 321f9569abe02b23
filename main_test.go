// main_test.go
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jshaughn/bloodline/cytoscope"
)

const lineage = `
name: Original
year: 1000
offspring:
  - name: Ansel
    year: 1100
    offspring:
      - name: Sarah
        year: 1200
      - name: Elgort
        year: 1985
        offspring:
          - name: Andrew
            year: 2001
  - name: Sarah's Friend
    year: 1990
`

func writeLineage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lineage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(lineage), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQueries(t *testing.T) {
	file := writeLineage(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"offspring", "Ansel"}, "Ansel (1100) created 2 vampires\nSarah (1200)\nElgort (1985)\n"},
		{[]string{"offspring", "Andrew"}, "Andrew (2001) created 0 vampires\n"},
		{[]string{"depth", "Andrew"}, "3\n"},
		{[]string{"depth", "Original"}, "0\n"},
		{[]string{"senior", "Sarah's Friend", "Andrew"}, "Sarah's Friend is more senior than Andrew\n"},
		{[]string{"senior", "Ansel", "Sarah's Friend"}, "Ansel is not more senior than Sarah's Friend\n"},
		{[]string{"find", "Elgort"}, "Elgort (1985), created by Ansel (1100)\n"},
		{[]string{"find", "Original"}, "Original (1000), an original vampire\n"},
		{[]string{"descendants", "Original"}, "5\n"},
		{[]string{"after", "1985"}, "Andrew (2001)\nSarah's Friend (1990)\n"},
		{[]string{"after", "1980", "--from", "Ansel"}, "Elgort (1985)\nAndrew (2001)\n"},
		{[]string{"after", "3000"}, ""},
		{[]string{"millennials"}, "Elgort (1985)\nAndrew (2001)\nSarah's Friend (1990)\n"},
		{[]string{"ancestor", "Sarah", "Andrew"}, "Ansel (1100)\n"},
		{[]string{"ancestor", "Andrew", "Sarah's Friend"}, "Original (1000)\n"},
		{[]string{"ancestor", "Ansel", "Andrew"}, "Ansel (1100)\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, append(tt.args, "--file", file)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestQueries_Errors(t *testing.T) {
	file := writeLineage(t)

	_, err := run(t, "depth", "Dracula", "--file", file)
	assert.ErrorIs(t, err, errNotFound)
	assert.ErrorContains(t, err, `vampire "Dracula"`)

	_, err = run(t, "after", "soon", "--file", file)
	assert.ErrorContains(t, err, "invalid year")

	_, err = run(t, "export", "--format", "svg", "--file", file)
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "depth", "Ansel", "--file", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "depth", "Ansel", "--file", file, "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestExport(t *testing.T) {
	file := writeLineage(t)

	out, err := run(t, "export", "--file", file, "--from", "Elgort")
	require.NoError(t, err)
	var cfg cytoscope.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Len(t, cfg.Elements.Nodes, 2)
	assert.Len(t, cfg.Elements.Edges, 1)

	out, err = run(t, "export", "--file", file, "--format", "yaml", "--from", "Elgort")
	require.NoError(t, err)
	assert.Equal(t, "name: Elgort\nyear: 1985\noffspring:\n    - name: Andrew\n      year: 2001\n", out)

	for _, format := range []string{"cx", "vizceral"} {
		out, err = run(t, "export", "--file", file, "--format", format)
		require.NoError(t, err, format)
		assert.True(t, json.Valid([]byte(out)), format)
	}
}

func TestMetricsFile(t *testing.T) {
	file := writeLineage(t)
	metricsFile := filepath.Join(t.TempDir(), "bloodline.prom")

	_, err := run(t, "depth", "Sarah", "--file", file, "--metrics-file", metricsFile)
	require.NoError(t, err)

	b, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), `bloodline_queries_total{op="depth"} 1`)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("BLOODLINE_FILE", writeLineage(t))

	out, err := run(t, "descendants", "Ansel")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestDurationOption(t *testing.T) {
	assert.Equal(t, 30*time.Minute, durationOption("30m"))
	assert.Equal(t, 48*time.Hour, durationOption("2d"))
	assert.Equal(t, time.Duration(0), durationOption("later"))
}

func TestValidateOptions(t *testing.T) {
	assert.Error(t, validateOptions(options{}))
	assert.NoError(t, validateOptions(options{server: "http://localhost:9090"}))
	assert.NoError(t, validateOptions(options{file: "lineage.yaml"}))
}

func TestHelpSkipsLoading(t *testing.T) {
	unreachable := "http://127.0.0.1:1"

	out, err := run(t, "help", "depth", "--server", unreachable)
	require.NoError(t, err)
	assert.Contains(t, out, "depth NAME")

	out, err = run(t, "completion", "bash", "--server", unreachable)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = run(t, "depth", "Ansel", "--server", unreachable)
	assert.Error(t, err, "queries still load the lineage")
}

func TestPrometheusServerEnvironment(t *testing.T) {
	t.Setenv("BLOODLINE_SERVER", "")
	t.Setenv("PROMETHEUS_SERVER", "http://prometheus.example:9090")

	a := newApp()
	assert.Equal(t, "http://prometheus.example:9090", a.parseOptions().server)

	t.Setenv("BLOODLINE_SERVER", "http://bloodline.example:9090")
	assert.Equal(t, "http://bloodline.example:9090", a.parseOptions().server)
}

func TestServerDefault(t *testing.T) {
	t.Setenv("BLOODLINE_SERVER", "")
	t.Setenv("PROMETHEUS_SERVER", "")

	assert.Equal(t, "http://localhost:9090", newApp().parseOptions().server)
}
