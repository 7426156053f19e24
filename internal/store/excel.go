// Package store persists the dataset as a single Excel workbook with a
// fixed column layout. Save is a full atomic replace; Load of a saved
// dataset reproduces it exactly.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/guregu/null/v6"
	"github.com/xuri/excelize/v2"

	"FuelWatch/internal/model"
)

// ErrCorruptStore means the spreadsheet exists but cannot be parsed
// into the expected row/column shape.
var ErrCorruptStore = errors.New("corrupt spreadsheet store")

const sheetName = "Prices"

var columns = []string{
	"Date",
	"ISO Week",
	"Crude (USD/bbl)",
	"Diesel (USD/bbl)",
	"Crude Change",
	"Diesel Change",
	"Crude MA7",
	"Crude MA30",
	"Diesel MA7",
	"Diesel MA30",
	"Report Flag",
	"Weekly Spread (USD)",
	"Weekly Spread (%)",
}

// Store is the narrow repository interface over the persisted dataset.
type Store interface {
	Load() (model.Dataset, error)
	Save(model.Dataset) error
	Path() string
}

// ExcelStore implements Store on a single .xlsx file.
type ExcelStore struct {
	path string
}

func NewExcelStore(path string) *ExcelStore {
	return &ExcelStore{path: path}
}

func (s *ExcelStore) Path() string { return s.path }

// Load reads the workbook. A missing file yields an empty dataset; a
// file that exists but does not match the expected shape yields
// ErrCorruptStore.
func (s *ExcelStore) Load() (model.Dataset, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return model.Dataset{}, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("%w: open %s: %v", ErrCorruptStore, s.path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("%w: read rows: %v", ErrCorruptStore, err)
	}
	if len(rows) == 0 {
		return model.Dataset{}, nil
	}
	if err := checkHeader(rows[0]); err != nil {
		return model.Dataset{}, err
	}

	ds := model.Dataset{Rows: make([]model.Row, 0, len(rows)-1)}
	for n, cells := range rows[1:] {
		row, err := parseRow(cells)
		if err != nil {
			return model.Dataset{}, fmt.Errorf("%w: row %d: %v", ErrCorruptStore, n+2, err)
		}
		if len(ds.Rows) > 0 && !ds.Rows[len(ds.Rows)-1].Date.Before(row.Date) {
			return model.Dataset{}, fmt.Errorf("%w: row %d: date %s out of order", ErrCorruptStore, n+2, model.FormatDay(row.Date))
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// Save rewrites the whole workbook: temp file in the target directory,
// then rename into place, so a crash mid-write never leaves a
// truncated store.
func (s *ExcelStore) Save(ds model.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	_ = f.SetSheetName(sheet, sheetName)
	sheet = sheetName

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "M", 16)

	for c, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, row := range ds.Rows {
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create sheet dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".fuelwatch-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp sheet: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp sheet: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp sheet: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace sheet: %w", err)
	}
	return nil
}

func checkHeader(cells []string) error {
	if len(cells) != len(columns) {
		return fmt.Errorf("%w: header has %d columns, want %d", ErrCorruptStore, len(cells), len(columns))
	}
	for i, name := range columns {
		if cells[i] != name {
			return fmt.Errorf("%w: header column %d is %q, want %q", ErrCorruptStore, i+1, cells[i], name)
		}
	}
	return nil
}

func parseRow(cells []string) (model.Row, error) {
	// GetRows trims trailing empty cells; missing cells are absent values.
	padded := make([]string, len(columns))
	copy(padded, cells)
	if len(cells) > len(columns) {
		return model.Row{}, fmt.Errorf("has %d columns, want at most %d", len(cells), len(columns))
	}

	date, err := model.ParseDay(padded[0])
	if err != nil {
		return model.Row{}, fmt.Errorf("bad date %q", padded[0])
	}

	row := model.Row{Date: date}
	ints := map[int]*null.Int{1: &row.Week, 10: &row.ReportFlag}
	floats := map[int]*null.Float{
		2: &row.Crude, 3: &row.Diesel,
		4: &row.CrudeChange, 5: &row.DieselChange,
		6: &row.CrudeMA7, 7: &row.CrudeMA30,
		8: &row.DieselMA7, 9: &row.DieselMA30,
		11: &row.SpreadAbs, 12: &row.SpreadRel,
	}
	for i, dst := range ints {
		if padded[i] == "" {
			continue
		}
		v, err := strconv.ParseInt(padded[i], 10, 64)
		if err != nil {
			return model.Row{}, fmt.Errorf("bad integer %q in column %q", padded[i], columns[i])
		}
		*dst = null.IntFrom(v)
	}
	for i, dst := range floats {
		if padded[i] == "" {
			continue
		}
		v, err := strconv.ParseFloat(padded[i], 64)
		if err != nil {
			return model.Row{}, fmt.Errorf("bad number %q in column %q", padded[i], columns[i])
		}
		*dst = null.FloatFrom(v)
	}
	return row, nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, row model.Row) error {
	set := func(col int, v interface{}) error {
		cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
		return f.SetCellValue(sheet, cell, v)
	}

	if err := set(0, model.FormatDay(row.Date)); err != nil {
		return err
	}
	for col, v := range map[int]null.Int{1: row.Week, 10: row.ReportFlag} {
		if !v.Valid {
			continue
		}
		if err := set(col, v.Int64); err != nil {
			return err
		}
	}
	for col, v := range map[int]null.Float{
		2: row.Crude, 3: row.Diesel,
		4: row.CrudeChange, 5: row.DieselChange,
		6: row.CrudeMA7, 7: row.CrudeMA30,
		8: row.DieselMA7, 9: row.DieselMA30,
		11: row.SpreadAbs, 12: row.SpreadRel,
	} {
		if !v.Valid {
			continue
		}
		if err := set(col, v.Float64); err != nil {
			return err
		}
	}
	return nil
}
