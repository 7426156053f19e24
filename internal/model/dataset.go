package model

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"
)

// Row is one spreadsheet row: both series' prices for a single day plus
// the derived and report columns. Invalid cells are absent, never zero.
type Row struct {
	Date         time.Time
	Week         null.Int
	Crude        null.Float
	Diesel       null.Float
	CrudeChange  null.Float
	DieselChange null.Float
	CrudeMA7     null.Float
	CrudeMA30    null.Float
	DieselMA7    null.Float
	DieselMA30   null.Float
	ReportFlag   null.Int
	SpreadAbs    null.Float
	SpreadRel    null.Float
}

// Value returns the price cell for the given series.
func (r *Row) Value(s SeriesID) null.Float {
	if s == SeriesDiesel {
		return r.Diesel
	}
	return r.Crude
}

// SetValue sets the price cell for the given series.
func (r *Row) SetValue(s SeriesID, v null.Float) {
	if s == SeriesDiesel {
		r.Diesel = v
	} else {
		r.Crude = v
	}
}

// Dataset is the persisted table: one row per date, ascending, no
// duplicate dates.
type Dataset struct {
	Rows []Row
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	rows := make([]Row, len(d.Rows))
	copy(rows, d.Rows)
	return Dataset{Rows: rows}
}

// IndexOf returns the position of the row for the given day, or the
// insertion point and false when no such row exists.
func (d Dataset) IndexOf(day time.Time) (int, bool) {
	i := sort.Search(len(d.Rows), func(i int) bool {
		return !d.Rows[i].Date.Before(day)
	})
	if i < len(d.Rows) && d.Rows[i].Date.Equal(day) {
		return i, true
	}
	return i, false
}

// LastDate returns the most recent row date, if any.
func (d Dataset) LastDate() (time.Time, bool) {
	if len(d.Rows) == 0 {
		return time.Time{}, false
	}
	return d.Rows[len(d.Rows)-1].Date, true
}
