package report

import (
	"encoding/csv"
	"io"
)

// utf8BOM keeps spreadsheet apps from mangling the Japanese headers.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{"日付", "担当者", "場所", "業務内容"}

// WriteCSV projects an already-filtered report set into delimited text:
// BOM, localized header row, then one row per report in date/person/
// location/content order. Callers pass exactly the records currently
// visible; WriteCSV never re-queries.
func WriteCSV(w io.Writer, reports []Report) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range reports {
		if err := cw.Write([]string{r.Date, r.Person, r.Location, r.Content}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename encodes the export's target period, taken from the resolved date
// predicate of the active filter.
func Filename(pred DatePredicate) string {
	switch {
	case pred.Exact != "":
		return "nippo_" + pred.Exact + ".csv"
	case pred.From != "":
		return "nippo_" + pred.From + "_" + pred.To + ".csv"
	default:
		return "nippo_" + pred.Prefix + ".csv"
	}
}
