package mcp

import (
	"context"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// mockExtractionService is a mock implementation of driving.ExtractionService.
type mockExtractionService struct {
	result *domain.RunResult
	err    error
	got    domain.RawSource
}

func (m *mockExtractionService) Extract(_ context.Context, src domain.RawSource) (*domain.RunResult, error) {
	m.got = src
	return m.result, m.err
}

// mockRunService is a mock implementation of driving.RunService.
type mockRunService struct {
	runs   []domain.RunRecord
	run    *domain.RunRecord
	err    error
	filter domain.RunFilter
}

func (m *mockRunService) List(_ context.Context, filter domain.RunFilter) ([]domain.RunRecord, error) {
	m.filter = filter
	return m.runs, m.err
}

func (m *mockRunService) Get(_ context.Context, _ string) (*domain.RunRecord, error) {
	return m.run, m.err
}

func (m *mockRunService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockRunService) Export(_ context.Context, _ domain.RunFilter, _ string, _ []string) ([]byte, error) {
	return nil, m.err
}
