package export

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure JSONExporter implements the interface.
var _ driven.Exporter = (*JSONExporter)(nil)

// JSONExporter writes runs as an indented JSON array.
// When columns are given, outputs are narrowed to them.
type JSONExporter struct{}

// NewJSONExporter creates an exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Format returns "json".
func (e *JSONExporter) Format() string {
	return "json"
}

// Export renders runs.
func (e *JSONExporter) Export(ctx context.Context, runs []domain.RunRecord, columns []string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.RunRecord, len(runs))
	for i, run := range runs {
		if len(columns) > 0 && run.Output != nil {
			narrowed := make(map[string]any, len(columns))
			for _, c := range columns {
				if v, ok := run.Output[c]; ok {
					narrowed[c] = v
				}
			}
			run.Output = narrowed
		}
		out[i] = run
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json export: %w", err)
	}
	return data, nil
}
