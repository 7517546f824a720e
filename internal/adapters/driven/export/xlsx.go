package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure XLSXExporter implements the interface.
var _ driven.Exporter = (*XLSXExporter)(nil)

// SheetName is the worksheet holding the runs.
const SheetName = "Runs"

// XLSXExporter writes one worksheet row per run.
type XLSXExporter struct{}

// NewXLSXExporter creates an exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Format returns "xlsx".
func (e *XLSXExporter) Format() string {
	return "xlsx"
}

// Export renders runs as a workbook with a bold, frozen header row.
func (e *XLSXExporter) Export(ctx context.Context, runs []domain.RunRecord, columns []string) ([]byte, error) {
	columns = OutputColumns(runs, columns)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headers := header(columns)
	if err := writeRow(f, 1, headers); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, style); err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for i, run := range runs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeRow(f, i+2, row(run, columns)); err != nil {
			return nil, err
		}
	}

	// Widen the text-heavy columns
	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(SheetName, "A", "A", 38)
	_ = f.SetColWidth(SheetName, "B", "B", 40)
	if len(headers) > len(runColumns) {
		first, _ := excelize.ColumnNumberToName(len(runColumns) + 1)
		_ = f.SetColWidth(SheetName, first, last, 30)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, rowNum int, cells []string) error {
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("xlsx cell: %w", err)
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("xlsx row %d: %w", rowNum, err)
	}
	return nil
}
