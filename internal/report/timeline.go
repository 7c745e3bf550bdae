// Package report renders patient data as spreadsheets for download.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/hospital-api/internal/model"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const timelineSheet = "Timeline"

var timelineHeader = []string{"#", "Timestamp", "Type", "Title", "Description"}

var timelineColumnWidths = []float64{6, 22, 12, 28, 60}

// TimelineFilename is the attachment name used for a patient's export.
func TimelineFilename(patientID int64) string {
	return fmt.Sprintf("patient-%d-timeline.xlsx", patientID)
}

// TimelineWorkbook builds a one-sheet workbook with a summary block for the
// patient followed by the events in the order given. The caller owns the
// returned file and must Close it.
func TimelineWorkbook(patient *model.Patient, events []*model.TimelineEvent) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(timelineSheet)
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
			Color:   []string{"#E6F3FF"},
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

	summary := [][2]interface{}{
		{"Patient", patient.Name},
		{"Patient ID", patient.ID},
		{"Status", patient.Status},
		{"Admitted", patient.AdmissionDate.Format(time.RFC3339)},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(timelineSheet, fmt.Sprintf("A%d", i+1), &[]interface{}{row[0], row[1]}); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	headerRow := len(summary) + 2
	for col, title := range timelineHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(timelineSheet, cell, title); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(timelineSheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, width := range timelineColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(timelineSheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, ev := range events {
		cell, err := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := []interface{}{
			i + 1,
			ev.Timestamp.UTC().Format(time.RFC3339),
			string(ev.Type),
			ev.Title,
			model.StringValue(ev.Description),
		}
		if err := f.SetSheetRow(timelineSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write event row: %w", err)
		}
	}

	return f, nil
}
