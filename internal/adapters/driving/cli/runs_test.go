package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

func sampleRuns() []domain.RunRecord {
	started := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	return []domain.RunRecord{
		{
			ID:         "run-2",
			DocumentID: "doc-2",
			Filename:   "QA-0000002_1.0_Effective_en.json",
			Profile:    "sop",
			State:      domain.RunStateMapped,
			Source:     domain.SourceFallback,
			Output:     map[string]any{"Name": "QA-0000002", "Scope": "Site"},
			StartedAt:  started,
			FinishedAt: started.Add(1500 * time.Millisecond),
		},
		{
			ID:         "run-1",
			DocumentID: "doc-1",
			Filename:   "notes.md",
			Profile:    "generic",
			State:      domain.RunStateFailed,
			Error:      "run failed: notes.md in state cleaned: empty",
			StartedAt:  started.Add(-time.Hour),
			FinishedAt: started.Add(-time.Hour),
		},
	}
}

func TestRunsCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range runsCmd.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["show"])
	assert.True(t, names["delete"])
}

func TestRunsListCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.runs.runs = sampleRuns()

	out, err := execute(t, "runs", "list", "--failed", "--filename", "notes.md", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, domain.RunFilter{Filename: "notes.md", FailedOnly: true, Limit: 5}, ts.runs.filter)

	var got []domain.RunRecord
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, domain.RunStateMapped, got[0].State)
	assert.Equal(t, domain.RunStateFailed, got[1].State)
}

func TestRunsListCmd_DefaultLimit(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "runs", "list")

	require.NoError(t, err)
	assert.Equal(t, 20, ts.runs.filter.Limit)
}

func TestRunsListCmd_Table(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	fakeTerminal()
	ts.runs.runs = sampleRuns()

	out, err := execute(t, "runs", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Run")
	assert.Contains(t, out, "run-2")
	assert.Contains(t, out, "mapped")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "1.5s")
}

func TestRunsListCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	fakeTerminal()

	out, err := execute(t, "runs", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No runs found.")
}

func TestRunsListCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.runs.err = errors.New("database locked")

	_, err := execute(t, "runs", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list runs")
}

func TestRunsShowCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	fakeTerminal()
	ts.runs.runs = sampleRuns()

	out, err := execute(t, "runs", "show", "run-2")

	require.NoError(t, err)
	assert.Contains(t, out, "QA-0000002_1.0_Effective_en.json")
	assert.Contains(t, out, "fallback")
	assert.Contains(t, out, "Scope")
	assert.Contains(t, out, "Site")
}

func TestRunsShowCmd_Failed(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	fakeTerminal()
	ts.runs.runs = sampleRuns()

	out, err := execute(t, "runs", "show", "run-1")

	require.NoError(t, err)
	assert.Contains(t, out, "in state cleaned")
}

func TestRunsShowCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "runs", "show", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunsDeleteCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "runs", "delete", "run-1")

	require.NoError(t, err)
	assert.Equal(t, "run-1", ts.runs.deleted)
	assert.Contains(t, out, "Deleted run run-1")
}

func TestRunsCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	for _, args := range [][]string{
		{"runs", "list"},
		{"runs", "show", "x"},
		{"runs", "delete", "x"},
		{"export"},
	} {
		_, err := execute(t, args...)
		assert.EqualError(t, err, "run service not configured", "args %v", args)
	}
}

func TestExportCmd_Flags(t *testing.T) {
	flag := exportCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "xlsx", flag.DefValue)
	assert.NotNil(t, exportCmd.Flags().Lookup("columns"))
	assert.NotNil(t, exportCmd.Flags().Lookup("output"))
}

func TestExportCmd_WritesFile(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "out.xlsx")
	out, err := execute(t, "export", "-o", path, "--columns", "Name,Scope", "--failed")

	require.NoError(t, err)
	assert.Contains(t, out, "Exported runs to "+path)
	assert.Equal(t, "xlsx", ts.runs.format)
	assert.Equal(t, []string{"Name", "Scope"}, ts.runs.columns)
	assert.True(t, ts.runs.filter.FailedOnly)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "exported:xlsx", string(data))
}

func TestExportCmd_Stdout(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "export", "--format", "JSON", "-o", "-")

	require.NoError(t, err)
	assert.Equal(t, "exported:json", out)
}

func TestExportCmd_UnsupportedFormat(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "export", "--format", "csv", "-o", "-")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "available: json, xlsx")
}
