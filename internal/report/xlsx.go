package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet  = "Dates"
	variantsSheet = "OCR Text"
)

// XLSX renders r as a workbook with one row per image. When the report
// carries variant texts a second sheet lists them.
func XLSX(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Image", "Day", "Date", "Month", "Year", "Width", "Height", "Format", "Error"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(resultsSheet, cell, h)
	}

	hasVariants := false
	for i, e := range r.Images {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(resultsSheet, cell, v)
		}

		write(1, e.Image)
		if e.Components != nil {
			write(2, strings.Join(e.Components.Day, ", "))
			write(3, strings.Join(e.Components.Date, ", "))
			write(4, strings.Join(e.Components.Month, ", "))
			write(5, strings.Join(e.Components.Year, ", "))
		}
		if e.Info != nil {
			write(6, e.Info.Width)
			write(7, e.Info.Height)
			write(8, e.Info.Format)
		}
		write(9, e.Error)

		if len(e.Variants) > 0 {
			hasVariants = true
		}
	}

	_ = f.SetColWidth(resultsSheet, "A", "A", 32)
	_ = f.SetColWidth(resultsSheet, "B", "E", 24)
	_ = f.SetColWidth(resultsSheet, "F", "H", 10)
	_ = f.SetColWidth(resultsSheet, "I", "I", 48)

	if hasVariants {
		if err := writeVariantsSheet(f, r); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeVariantsSheet(f *excelize.File, r *Report) error {
	if _, err := f.NewSheet(variantsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	for i, h := range []string{"Image", "Variant", "Text"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(variantsSheet, cell, h)
	}

	row := 2
	for _, e := range r.Images {
		for _, v := range e.Variants {
			for col, val := range []string{e.Image, v.Title, v.Text} {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(variantsSheet, cell, val)
			}
			row++
		}
	}

	_ = f.SetColWidth(variantsSheet, "A", "A", 32)
	_ = f.SetColWidth(variantsSheet, "B", "B", 22)
	_ = f.SetColWidth(variantsSheet, "C", "C", 80)
	return nil
}

// WriteXLSXFile writes the workbook for r to path.
func WriteXLSXFile(path string, r *Report) error {
	data, err := XLSX(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
