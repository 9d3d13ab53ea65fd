package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

var leadBookHeaders = []string{
	"ID", "First Name", "Last Name", "Email", "Phone", "Source",
	"Status", "Score", "Lifecycle Stage", "Assigned To",
	"Last Activity", "Created At",
}

// WriteLeadBookCSV streams the lead book as CSV.
func WriteLeadBookCSV(w io.Writer, rows []LeadRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(leadBookHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.ID,
			row.FirstName,
			row.LastName,
			strOrEmpty(row.Email),
			strOrEmpty(row.Phone),
			row.Source,
			row.Status,
			fmt.Sprintf("%d", row.Score),
			row.LifecycleStage,
			strOrEmpty(row.AssignedTo),
			timeOrEmpty(row.LastActivity),
			row.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteLeadBookXLSX writes the lead book as a single-sheet workbook.
func WriteLeadBookXLSX(w io.Writer, rows []LeadRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Leads"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for i, header := range leadBookHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		values := []any{
			row.ID, row.FirstName, row.LastName,
			strOrEmpty(row.Email), strOrEmpty(row.Phone),
			row.Source, row.Status, row.Score, row.LifecycleStage,
			strOrEmpty(row.AssignedTo),
			timeOrEmpty(row.LastActivity),
			row.CreatedAt.UTC().Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	for i := range leadBookHeaders {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		f.SetColWidth(sheet, col, col, 18)
	}
	f.SetActiveSheet(index)

	_, err = f.WriteTo(w)
	return err
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
