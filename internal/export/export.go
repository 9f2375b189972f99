package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ytget/soql-studio/internal/model"
	"github.com/ytget/soql-studio/internal/platform"
)

// Format is an export file type
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DefaultSheetName is used when no sheet name is given
const DefaultSheetName = "Results"

const defaultColumnWidth = 18

// ErrEmptyTable is returned when there is nothing to export
var ErrEmptyTable = errors.New("no results to export")

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName builds an export file name such as abcd-1234-20240102-150405.xlsx
func FileName(dataset string, format Format, at time.Time) string {
	base := strings.Trim(unsafeName.ReplaceAllString(dataset, "_"), "_")
	if base == "" {
		base = "results"
	}
	return fmt.Sprintf("%s-%s.%s", base, at.Format("20060102-150405"), format)
}

// Export writes table into dir using format and returns the file path.
func Export(table model.Table, dir, dataset string, format Format) (string, error) {
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, FileName(dataset, format, time.Now()))
	switch format {
	case FormatXLSX:
		return path, ToXLSX(table, path, dataset)
	case FormatCSV:
		return path, ToCSV(table, path)
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

// ToXLSX writes table to an Excel file with a styled header row.
func ToXLSX(table model.Table, filePath, sheetName string) error {
	if len(table) == 0 {
		return ErrEmptyTable
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName = sheetTitle(sheetName)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for rowIdx, row := range table {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to set %s: %w", cell, err)
			}
			if rowIdx == 0 {
				_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
			}
		}
	}

	if cols := table.Columns(); cols > 0 {
		last, err := excelize.ColumnNumberToName(cols)
		if err != nil {
			return err
		}
		_ = f.SetColWidth(sheetName, "A", last, defaultColumnWidth)
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// ToCSV writes table to a CSV file
func ToCSV(table model.Table, filePath string) error {
	if len(table) == 0 {
		return ErrEmptyTable
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(table); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return file.Close()
}

// sheetTitle trims a name to what Excel accepts
func sheetTitle(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return DefaultSheetName
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}
