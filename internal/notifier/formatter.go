package notifier

import (
	"fmt"
	"strings"

	"FuelWatch/internal/model"
)

// FormatReportBody renders the plain-text body of the report email from
// the latest rows of the dataset.
func FormatReportBody(ds model.Dataset) string {
	var b strings.Builder

	b.WriteString("FuelWatch weekly report\n\n")

	if len(ds.Rows) == 0 {
		b.WriteString("No observations recorded yet.\n")
		return b.String()
	}

	last := ds.Rows[len(ds.Rows)-1]
	b.WriteString(fmt.Sprintf("Latest date: %s\n", model.FormatDay(last.Date)))
	if last.Crude.Valid {
		b.WriteString(fmt.Sprintf("Crude:  %.2f USD/bbl\n", last.Crude.Float64))
	}
	if last.Diesel.Valid {
		b.WriteString(fmt.Sprintf("Diesel: %.2f USD/bbl\n", last.Diesel.Float64))
	}
	if last.SpreadAbs.Valid {
		b.WriteString(fmt.Sprintf("Diesel-crude spread: %.2f USD/bbl", last.SpreadAbs.Float64))
		if last.SpreadRel.Valid {
			b.WriteString(fmt.Sprintf(" (%+.1f%%)", last.SpreadRel.Float64*100))
		}
		b.WriteString("\n")
	}
	if last.CrudeMA7.Valid && last.DieselMA7.Valid {
		b.WriteString(fmt.Sprintf("7-day means: crude %.2f, diesel %.2f\n",
			last.CrudeMA7.Float64, last.DieselMA7.Float64))
	}

	b.WriteString(fmt.Sprintf("\nRows on file: %d\n", len(ds.Rows)))
	b.WriteString("The full spreadsheet is attached.\n")
	return b.String()
}
