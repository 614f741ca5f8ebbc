package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/runesbridge/staking-pipeline/internal/models"
)

var ErrUnsupportedFormat = errors.New("unsupported ingest file format")

// Parser reads a transaction table from a file. The header row is returned
// like any other row.
type Parser interface {
	Parse(filePath string) ([]models.Row, error)
}

// ForFile picks a Parser from the file extension.
func ForFile(filePath string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		return NewCSVParser(), nil
	case ".xlsx", ".xlsm":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
	}
}

// ParseFile reads filePath with the Parser matching its extension.
func ParseFile(filePath string) ([]models.Row, error) {
	p, err := ForFile(filePath)
	if err != nil {
		return nil, err
	}
	return p.Parse(filePath)
}

type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse returns every CSV record as a row of strings; empty fields become nil.
func (p *CSVParser) Parse(filePath string) ([]models.Row, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv %s: %w", filePath, err)
	}

	rows := make([]models.Row, 0, len(records))
	for _, record := range records {
		row := make(models.Row, len(record))
		for i, field := range record {
			if field != "" {
				row[i] = field
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// XLSXParser reads the first worksheet of a workbook.
type XLSXParser struct{}

func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse keeps numbers as float64 so date serials survive, text as string and
// blanks as nil.
func (p *XLSXParser) Parse(filePath string) ([]models.Row, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", filePath, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filePath)
	}
	sheet := sheets[0]

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	rows := make([]models.Row, 0, len(raw))
	for r, values := range raw {
		row := make(models.Row, len(values))
		for c, value := range values {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("reading type of %s: %w", cell, err)
			}
			row[c] = typedCell(cellType, value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func typedCell(cellType excelize.CellType, value string) any {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return value
	case excelize.CellTypeBool:
		return value == "1" || strings.EqualFold(value, "true")
	default:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
		return value
	}
}
