// Package dataset holds the reconciliation logic between freshly
// fetched observations and the persisted spreadsheet: a two-way merge
// keyed on date with per-cell "last non-absent value wins" semantics.
package dataset

import (
	"FuelWatch/internal/model"
)

// MergeStats summarizes what a merge changed.
type MergeStats struct {
	Inserted int // rows created
	Amended  int // price cells set or overwritten on pre-existing rows
}

// Merge reconciles incoming observations into the existing dataset and
// returns the result; the input dataset is not modified.
//
// Rules, applied independently per series column:
//   - a date with no row is inserted at its sorted position, the other
//     series' cell left absent;
//   - a non-absent incoming value sets the cell, overwriting any
//     previous value (latest fetch wins);
//   - an absent incoming value never erases a recorded one;
//   - rows are never deleted.
//
// Merging the same batch twice yields the same dataset as merging it
// once.
func Merge(existing model.Dataset, incoming []model.Observation) (model.Dataset, MergeStats) {
	out := existing.Clone()
	var stats MergeStats

	for _, obs := range incoming {
		day := model.Day(obs.Date)
		i, found := out.IndexOf(day)

		if !found {
			if !obs.Value.Valid {
				continue // nothing to record for this day yet
			}
			row := model.Row{Date: day}
			row.SetValue(obs.Series, obs.Value)
			out.Rows = append(out.Rows, model.Row{})
			copy(out.Rows[i+1:], out.Rows[i:])
			out.Rows[i] = row
			stats.Inserted++
			continue
		}

		if !obs.Value.Valid {
			continue // absence must not erase recorded data
		}
		cell := out.Rows[i].Value(obs.Series)
		if cell.Valid && cell.Float64 == obs.Value.Float64 {
			continue
		}
		out.Rows[i].SetValue(obs.Series, obs.Value)
		stats.Amended++
	}

	return out, stats
}
