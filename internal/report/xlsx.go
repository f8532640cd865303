package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/testgen/internal/model"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// WriteXLSX writes the tabular export as a workbook with a Results sheet
// (same columns as the CSV) and a Summary sheet.
func WriteXLSX(w io.Writer, rep model.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	header := make([]any, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(resultsSheet, "A1", "E1", bold); err != nil {
		return err
	}
	for i, e := range rep.Entries {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{rep.UserName, e.Question, e.GivenText(), e.Correct, e.Marker()}
		if err := f.SetSheetRow(resultsSheet, cellName, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(resultsSheet, "B", "D", 40); err != nil {
		return err
	}

	summary := [][]any{
		{"user", rep.UserName},
		{"date", rep.GeneratedAt.Format(TextTimeLayout)},
		{"correct", rep.Summary.Correct},
		{"incorrect", rep.Summary.Incorrect},
		{"omitted", rep.Summary.Omitted},
		{"total", rep.Summary.Total},
	}
	for i, row := range summary {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cellName, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
