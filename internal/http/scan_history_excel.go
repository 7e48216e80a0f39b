package httpapi

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"quickfirstaid/internal/models"

	"github.com/xuri/excelize/v2"
)

const scanHistorySheet = "Scan History"

// ScanHistoryExportHeader is the header row of the history export.
var ScanHistoryExportHeader = []string{
	"ID",
	"Date",
	"Scanned At",
	"Type",
	"Status",
	"Finding",
	"First Aid",
	"Image URI",
}

// GenerateScanHistoryExport renders the history as an xlsx workbook, newest
// scan first. Images are not embedded; the URI column points at them.
func GenerateScanHistoryExport(history []models.ScanHistoryEntry) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(scanHistorySheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FDE2E2"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range ScanHistoryExportHeader {
		if err := setCellValue(f, scanHistorySheet, col+1, 1, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header %q: %w", header, err)
		}
	}
	if err := f.SetCellStyle(scanHistorySheet, "A1", "H1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	widths := []float64{16, 12, 20, 20, 12, 50, 60, 40}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(scanHistorySheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, entry := range history {
		row := i + 2
		values := []any{
			entry.ID,
			entry.Date,
			time.UnixMilli(entry.ID).UTC().Format("2006-01-02 15:04:05"),
			entry.Result.String("type"),
			entry.Result.String("status"),
			entry.Result.String("finding"),
			strings.Join(entry.Result.Strings("first_aid"), "\n"),
			entry.URI,
		}
		for col, v := range values {
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			if err := setCellValue(f, scanHistorySheet, col+1, row, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell at row %d, col %d: %w", row, col+1, err)
			}
		}
	}

	if err := f.SetPanes(scanHistorySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func setCellValue(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
