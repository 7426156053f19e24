package dataset

import (
	"github.com/guregu/null/v6"

	"FuelWatch/internal/model"
)

// Recompute fills the derived columns (ISO week, day-over-day change,
// trailing means) from the price columns. It is deterministic: applying
// it twice yields the same dataset, and it never touches the price or
// report columns.
func Recompute(ds model.Dataset) model.Dataset {
	out := ds.Clone()

	crude := priceColumn(out.Rows, model.SeriesCrude)
	diesel := priceColumn(out.Rows, model.SeriesDiesel)

	for i := range out.Rows {
		_, week := out.Rows[i].Date.ISOWeek()
		out.Rows[i].Week = null.IntFrom(int64(week))

		out.Rows[i].CrudeChange = fractionalChange(crude, i)
		out.Rows[i].DieselChange = fractionalChange(diesel, i)

		out.Rows[i].CrudeMA7 = trailingMean(crude, i, 7)
		out.Rows[i].CrudeMA30 = trailingMean(crude, i, 30)
		out.Rows[i].DieselMA7 = trailingMean(diesel, i, 7)
		out.Rows[i].DieselMA30 = trailingMean(diesel, i, 30)
	}

	return out
}

func priceColumn(rows []model.Row, s model.SeriesID) []null.Float {
	col := make([]null.Float, len(rows))
	for i := range rows {
		col[i] = rows[i].Value(s)
	}
	return col
}

// fractionalChange returns v[i]/prev - 1 against the most recent earlier
// value in the column, absent when either side is absent.
func fractionalChange(col []null.Float, i int) null.Float {
	if !col[i].Valid {
		return null.Float{}
	}
	for j := i - 1; j >= 0; j-- {
		if col[j].Valid {
			if col[j].Float64 == 0 {
				return null.Float{}
			}
			return null.FloatFrom(col[i].Float64/col[j].Float64 - 1)
		}
	}
	return null.Float{}
}

// trailingMean averages the last period cells ending at index i. The
// result is absent until a full window of present values exists.
func trailingMean(col []null.Float, i, period int) null.Float {
	if i+1 < period {
		return null.Float{}
	}
	sum := 0.0
	for j := i - period + 1; j <= i; j++ {
		if !col[j].Valid {
			return null.Float{}
		}
		sum += col[j].Float64
	}
	return null.FloatFrom(sum / float64(period))
}
