// Package export renders run history as tabular files.
package export

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// Run columns written before the output columns.
var runColumns = []string{"run_id", "filename", "profile", "state", "source", "started_at", "error"}

// ListSeparator joins list values in a single cell.
const ListSeparator = "; "

// OutputColumns returns columns when given, otherwise every output name
// across runs in first-seen order.
func OutputColumns(runs []domain.RunRecord, columns []string) []string {
	if len(columns) > 0 {
		return columns
	}
	seen := make(map[string]bool)
	var out []string
	for _, run := range runs {
		for _, k := range slices.Sorted(maps.Keys(run.Output)) {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

func header(columns []string) []string {
	return append(append([]string{}, runColumns...), columns...)
}

// row renders one run as cell strings.
func row(run domain.RunRecord, columns []string) []string {
	cells := []string{
		run.ID,
		run.Filename,
		run.Profile,
		run.State.String(),
		string(run.Source),
		formatTime(run.StartedAt),
		run.Error,
	}
	for _, c := range columns {
		cells = append(cells, cell(run.Output[c]))
	}
	return cells
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ListSeparator)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, cell(item))
		}
		return strings.Join(parts, ListSeparator)
	default:
		return ""
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
