package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported export file format")

// Writer persists an export table to a file, replacing any previous file.
type Writer interface {
	Write(path string, table [][]string) error
}

// ForFile picks a Writer from the file extension.
func ForFile(path, sheetName string) (Writer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return &XLSXWriter{SheetName: sheetName}, nil
	case ".csv":
		return &CSVWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ContentType returns the MIME type of an export file.
func ContentType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

type XLSXWriter struct {
	SheetName string
}

func (w *XLSXWriter) Write(path string, table [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if w.SheetName != "" && w.SheetName != sheet {
		if err := f.SetSheetName(sheet, w.SheetName); err != nil {
			return fmt.Errorf("error naming sheet: %w", err)
		}
		sheet = w.SheetName
	}

	for i, row := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving workbook %s: %w", path, err)
	}
	return nil
}

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, table [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(table); err != nil {
		return fmt.Errorf("error writing CSV records: %w", err)
	}
	return file.Close()
}
