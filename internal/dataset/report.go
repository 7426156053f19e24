package dataset

import (
	"time"

	"github.com/guregu/null/v6"

	"FuelWatch/internal/model"
)

// StampReport marks the row for the given day as a report row: sets the
// report flag and the diesel-over-crude spread columns. These are data,
// not derived values; Recompute leaves them alone so historical report
// rows keep the figures they were mailed with.
//
// A missing row or an absent price leaves the dataset unchanged.
func StampReport(ds model.Dataset, day time.Time) model.Dataset {
	out := ds.Clone()
	i, found := out.IndexOf(model.Day(day))
	if !found {
		return out
	}
	row := &out.Rows[i]
	if !row.Diesel.Valid || !row.Crude.Valid || row.Crude.Float64 == 0 {
		return out
	}
	row.ReportFlag = null.IntFrom(1)
	row.SpreadAbs = null.FloatFrom(row.Diesel.Float64 - row.Crude.Float64)
	row.SpreadRel = null.FloatFrom(row.Diesel.Float64/row.Crude.Float64 - 1)
	return out
}
