// Package dataset loads tabular feature data into dense matrices: one row
// per point, one named column per feature.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"
)

// ErrUnsupportedFormat reports a file extension Load cannot handle.
var ErrUnsupportedFormat = errors.New("dataset: unsupported file format")

// Table is a numeric dataset with named feature columns.
type Table struct {
	Names []string
	Data  *mat.Dense
}

// Dims returns the point and feature counts.
func (t *Table) Dims() (rows, cols int) {
	return t.Data.Dims()
}

// Load reads a dataset from path. Supported formats: .csv, zstd-compressed
// CSV (.csv.zst or .zst), and .xlsx (first sheet). A first row that does not
// parse as numbers is treated as the header; otherwise column names are
// synthesized as col0, col1, ...
func Load(path string) (*Table, error) {
	switch lower := strings.ToLower(path); {
	case strings.HasSuffix(lower, ".xlsx"):
		return loadXLSX(path)
	case strings.HasSuffix(lower, ".zst"):
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		defer f.Close()

		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("dataset: zstd decoder: %w", err)
		}
		defer dec.Close()
		return readCSV(dec)
	case strings.HasSuffix(lower, ".csv"):
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		defer f.Close()
		return readCSV(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func loadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("dataset: reading sheet %q: %w", sheet, err)
	}
	return fromRows(rows)
}

func readCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: reading csv: %w", err)
	}
	return fromRows(records)
}

func fromRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.New("dataset: no rows")
	}

	names, body := splitHeader(rows)
	if len(body) == 0 {
		return nil, errors.New("dataset: no data rows")
	}

	cols := len(body[0])
	if cols == 0 {
		return nil, errors.New("dataset: no columns")
	}
	if len(names) != cols {
		return nil, fmt.Errorf("dataset: header has %d fields, data rows have %d", len(names), cols)
	}

	data := make([]float64, 0, len(body)*cols)
	for i, row := range body {
		if len(row) != cols {
			return nil, fmt.Errorf("dataset: row %d has %d fields, want %d", i, len(row), cols)
		}
		for j, field := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: row %d column %q: %w", i, names[j], err)
			}
			data = append(data, v)
		}
	}

	return &Table{Names: names, Data: mat.NewDense(len(body), cols, data)}, nil
}

// splitHeader treats the first row as column names when any of its fields
// fails to parse as a number.
func splitHeader(rows [][]string) ([]string, [][]string) {
	first := rows[0]
	numeric := true
	for _, field := range first {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
			numeric = false
			break
		}
	}

	names := make([]string, len(first))
	if numeric {
		for j := range names {
			names[j] = fmt.Sprintf("col%d", j)
		}
		return names, rows
	}

	for j, field := range first {
		names[j] = strings.TrimSpace(field)
	}
	return names, rows[1:]
}

// Columns resolves feature names to column indices, preserving order.
func (t *Table) Columns(names ...string) ([]int, error) {
	idx := make([]int, 0, len(names))
	for _, name := range names {
		found := -1
		for j, candidate := range t.Names {
			if candidate == name {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("dataset: unknown column %q (have %s)", name, strings.Join(t.Names, ", "))
		}
		idx = append(idx, found)
	}
	return idx, nil
}

// Subset materializes a copy of the chosen columns, in the given order.
func (t *Table) Subset(cols []int) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, errors.New("dataset: empty column selection")
	}

	rows, width := t.Data.Dims()
	out := mat.NewDense(rows, len(cols), nil)
	for j, c := range cols {
		if c < 0 || c >= width {
			return nil, fmt.Errorf("dataset: column %d out of range [0, %d)", c, width)
		}
		out.SetCol(j, mat.Col(nil, c, t.Data))
	}
	return out, nil
}
