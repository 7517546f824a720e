package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	tableEdge  = lipgloss.NewStyle().Foreground(lipgloss.Color("#45475A"))
)

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// useJSON reports whether a command should print JSON: when asked to or
// when the output is not a terminal.
func useJSON(cmd *cobra.Command, flag bool) bool {
	return flag || !isTerminal(cmd.OutOrStdout())
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// renderTable draws rows under headers with a rounded border.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableEdge).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			return cellStyle
		}).
		String()
}

// renderMetadata prints metadata fields one per line, sorted by name.
func renderMetadata(cmd *cobra.Command, output map[string]any) {
	keys := make([]string, 0, len(output))
	width := 0
	for k := range output {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	slices.Sort(keys)

	for _, k := range keys {
		label := keyStyle.Render(fmt.Sprintf("%-*s", width, k))
		cmd.Printf("  %s  %s\n", label, formatValue(output[k]))
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return mutedStyle.Render("-")
	case string:
		if x == "" {
			return mutedStyle.Render("-")
		}
		return x
	case []string:
		if len(x) == 0 {
			return mutedStyle.Render("-")
		}
		return strings.Join(x, "; ")
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, fmt.Sprint(e))
		}
		if len(parts) == 0 {
			return mutedStyle.Render("-")
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(x)
	}
}

func stateLabel(state domain.RunState) string {
	switch state {
	case domain.RunStateMapped:
		return okStyle.Render(state.String())
	case domain.RunStateFailed:
		return failStyle.Render(state.String())
	default:
		return state.String()
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
