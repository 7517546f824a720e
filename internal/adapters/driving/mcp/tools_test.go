package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

func TestServer_handleExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("returns projected metadata", func(t *testing.T) {
		extraction := &mockExtractionService{
			result: &domain.RunResult{
				RunID:      "run-1",
				DocumentID: "doc-1",
				Filename:   "report.md",
				Output:     map[string]any{"Title": "Quarterly report"},
				Source:     domain.SourcePrimary,
			},
		}
		server, err := NewServer(&Ports{Extraction: extraction})
		require.NoError(t, err)

		_, output, err := server.handleExtract(ctx, nil, ExtractInput{
			Filename: "report.md",
			Content:  "# Quarterly report",
		})

		require.NoError(t, err)
		assert.Equal(t, "run-1", output.RunID)
		assert.Equal(t, "doc-1", output.DocumentID)
		assert.Equal(t, "primary", output.Source)
		assert.Equal(t, "Quarterly report", output.Metadata["Title"])
		assert.Equal(t, "report.md", extraction.got.Filename)
		assert.Equal(t, []byte("# Quarterly report"), extraction.got.Content)
	})

	t.Run("path is passed through", func(t *testing.T) {
		extraction := &mockExtractionService{result: &domain.RunResult{}}
		server, err := NewServer(&Ports{Extraction: extraction})
		require.NoError(t, err)

		_, _, err = server.handleExtract(ctx, nil, ExtractInput{Filename: "a.txt", Path: "/tmp/a.txt"})

		require.NoError(t, err)
		assert.Equal(t, "/tmp/a.txt", extraction.got.Path)
		assert.Nil(t, extraction.got.Content)
	})

	t.Run("filename is required", func(t *testing.T) {
		server, err := NewServer(&Ports{Extraction: &mockExtractionService{}})
		require.NoError(t, err)

		_, _, err = server.handleExtract(ctx, nil, ExtractInput{Content: "text"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("some input is required", func(t *testing.T) {
		server, err := NewServer(&Ports{Extraction: &mockExtractionService{}})
		require.NoError(t, err)

		_, _, err = server.handleExtract(ctx, nil, ExtractInput{Filename: "a.txt"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("run failure reports state", func(t *testing.T) {
		extraction := &mockExtractionService{
			err: &domain.RunFailedError{
				Filename: "a.txt",
				State:    domain.RunStateCleaned,
				Err:      errors.New("empty document"),
			},
		}
		server, err := NewServer(&Ports{Extraction: extraction})
		require.NoError(t, err)

		_, _, err = server.handleExtract(ctx, nil, ExtractInput{Filename: "a.txt", Content: " "})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "cleaned")
		assert.Contains(t, err.Error(), "empty document")
	})
}

func TestServer_handleListRuns(t *testing.T) {
	ctx := context.Background()

	t.Run("default limit", func(t *testing.T) {
		runs := &mockRunService{
			runs: []domain.RunRecord{
				{ID: "r1", Filename: "a.txt", Profile: "generic", State: domain.RunStateMapped, Source: domain.SourcePrimary},
				{ID: "r2", Filename: "b.txt", Profile: "generic", State: domain.RunStateFailed, Error: "boom"},
			},
		}
		server, err := NewServer(&Ports{Extraction: &mockExtractionService{}, Runs: runs})
		require.NoError(t, err)

		_, output, err := server.handleListRuns(ctx, nil, ListRunsInput{})

		require.NoError(t, err)
		assert.Equal(t, defaultRunLimit, runs.filter.Limit)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "mapped", output.Runs[0].State)
		assert.Equal(t, "failed", output.Runs[1].State)
		assert.Equal(t, "boom", output.Runs[1].Error)
	})

	t.Run("filters are forwarded", func(t *testing.T) {
		runs := &mockRunService{}
		server, err := NewServer(&Ports{Extraction: &mockExtractionService{}, Runs: runs})
		require.NoError(t, err)

		_, output, err := server.handleListRuns(ctx, nil, ListRunsInput{Filename: "a.txt", FailedOnly: true, Limit: 5})

		require.NoError(t, err)
		assert.Equal(t, domain.RunFilter{Filename: "a.txt", FailedOnly: true, Limit: 5}, runs.filter)
		assert.Empty(t, output.Runs)
	})

	t.Run("store error", func(t *testing.T) {
		runs := &mockRunService{err: errors.New("database error")}
		server, err := NewServer(&Ports{Extraction: &mockExtractionService{}, Runs: runs})
		require.NoError(t, err)

		_, _, err = server.handleListRuns(ctx, nil, ListRunsInput{})

		assert.Error(t, err)
	})
}
