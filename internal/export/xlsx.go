package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"servicehours/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Slots"
	ClosedLabel = "closed"

	titleRow  = 1
	headerRow = 2
	firstRow  = 3
)

var ErrNoDays = errors.New("nothing to export")

// WriteWorkbook writes one sheet with a column per date and the slot times listed downward.
func WriteWorkbook(w io.Writer, r *models.Restaurant, days []models.DaySlots) error {
	f, err := build(r, days)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes the workbook into dir and returns the file path.
func SaveWorkbook(dir string, r *models.Restaurant, days []models.DaySlots) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := build(r, days)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, FileName(r, days))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return path, nil
}

// FileName is slots_<restaurant>_<from>_<to>.xlsx.
func FileName(r *models.Restaurant, days []models.DaySlots) string {
	if len(days) == 0 {
		return fmt.Sprintf("slots_%d.xlsx", r.ID)
	}
	return fmt.Sprintf("slots_%d_%s_%s.xlsx", r.ID,
		days[0].Date.Format(models.DateLayout),
		days[len(days)-1].Date.Format(models.DateLayout))
}

func build(r *models.Restaurant, days []models.DaySlots) (*excelize.File, error) {
	if len(days) == 0 {
		return nil, ErrNoDays
	}

	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("error naming sheet: %w", err)
	}

	if err := writeTitle(f, r, days); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	closedStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, day := range days {
		col := i + 1
		header, _ := excelize.CoordinatesToCellName(col, headerRow)
		_ = f.SetCellValue(SheetName, header, fmt.Sprintf("%s %s", day.Date.Format(models.DateLayout), models.DayName(day.Date)))
		_ = f.SetCellStyle(SheetName, header, header, headerStyle)

		if len(day.Slots) == 0 {
			cell, _ := excelize.CoordinatesToCellName(col, firstRow)
			_ = f.SetCellValue(SheetName, cell, ClosedLabel)
			_ = f.SetCellStyle(SheetName, cell, cell, closedStyle)
			continue
		}

		for j, slot := range day.Slots {
			cell, _ := excelize.CoordinatesToCellName(col, firstRow+j)
			_ = f.SetCellValue(SheetName, cell, slot)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(days))
	_ = f.SetColWidth(SheetName, "A", lastCol, 20)

	return f, nil
}

func writeTitle(f *excelize.File, r *models.Restaurant, days []models.DaySlots) error {
	title := fmt.Sprintf("%s: %s - %s", r.Name,
		days[0].Date.Format(models.DateLayout),
		days[len(days)-1].Date.Format(models.DateLayout))
	if err := f.SetCellValue(SheetName, "A1", title); err != nil {
		return fmt.Errorf("error writing title: %w", err)
	}

	if len(days) > 1 {
		lastCol, _ := excelize.ColumnNumberToName(len(days))
		_ = f.MergeCell(SheetName, "A1", fmt.Sprintf("%s%d", lastCol, titleRow))
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(SheetName, "A1", "A1", style)
	return nil
}
