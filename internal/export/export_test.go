package export

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ytget/soql-studio/internal/model"
)

var sample = model.Table{
	{"id", "name"},
	{"1", "Smith, J"},
	{"2", "Doe"},
}

func TestToXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	if err := ToXLSX(sample, path, "abcd-1234"); err != nil {
		t.Fatalf("ToXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	if name := f.GetSheetName(0); name != "abcd-1234" {
		t.Errorf("Expected sheet abcd-1234, got %s", name)
	}
	if n := len(f.GetSheetList()); n != 1 {
		t.Errorf("Expected a single sheet, got %d", n)
	}

	rows, err := f.GetRows("abcd-1234")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if !reflect.DeepEqual(model.Table(rows), sample) {
		t.Errorf("Expected %v, got %v", sample, rows)
	}
}

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := ToCSV(sample, path); err != nil {
		t.Fatalf("ToCSV failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !reflect.DeepEqual(model.Table(rows), sample) {
		t.Errorf("Expected %v, got %v", sample, rows)
	}
}

func TestEmptyTable(t *testing.T) {
	dir := t.TempDir()
	if err := ToXLSX(nil, filepath.Join(dir, "a.xlsx"), ""); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("Expected ErrEmptyTable, got %v", err)
	}
	if err := ToCSV(model.Table{}, filepath.Join(dir, "a.csv")); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("Expected ErrEmptyTable, got %v", err)
	}
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	for _, format := range []Format{FormatXLSX, FormatCSV} {
		path, err := Export(sample, dir, "abcd-1234", format)
		if err != nil {
			t.Fatalf("Export(%s) failed: %v", format, err)
		}
		if !strings.HasSuffix(path, "."+string(format)) {
			t.Errorf("Expected .%s file, got %s", format, path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected exported file at %s: %v", path, err)
		}
	}

	if _, err := Export(sample, dir, "abcd-1234", Format("pdf")); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		dataset  string
		format   Format
		expected string
	}{
		{"abcd-1234", FormatXLSX, "abcd-1234-20240102-150405.xlsx"},
		{"", FormatCSV, "results-20240102-150405.csv"},
		{"a/b c", FormatCSV, "a_b_c-20240102-150405.csv"},
	}

	for _, test := range tests {
		if got := FileName(test.dataset, test.format, at); got != test.expected {
			t.Errorf("FileName(%q, %s) = %s, expected %s", test.dataset, test.format, got, test.expected)
		}
	}
}

func TestSheetTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", DefaultSheetName},
		{"abcd-1234", "abcd-1234"},
		{"a/b:c", "a_b_c"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}

	for _, test := range tests {
		if got := sheetTitle(test.input); got != test.expected {
			t.Errorf("sheetTitle(%q) = %s, expected %s", test.input, got, test.expected)
		}
	}
}
