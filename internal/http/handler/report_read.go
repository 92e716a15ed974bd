package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nippo/internal/auth"
	"nippo/internal/report"
)

type ReportReadHandler struct {
	Svc *report.Service
}

type reportDTO struct {
	ID       uint64 `json:"id"`
	Date     string `json:"date"`
	Person   string `json:"person"`
	Location string `json:"location"`
	Content  string `json:"content"`
	Label    string `json:"label"`
}

func toDTO(r report.Report) reportDTO {
	return reportDTO{
		ID:       r.ID,
		Date:     r.Date,
		Person:   r.Person,
		Location: r.Location,
		Content:  r.Content,
		Label:    r.SelectionLabel(),
	}
}

// filterFromQuery reads the listing criteria: year+month, from+to, date,
// person, q (keyword). Absent criteria mean "current month".
func filterFromQuery(r *http.Request) (report.Filter, error) {
	var f report.Filter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return report.Filter{}, err
		}
		f.Year = n
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return report.Filter{}, err
		}
		f.Month = n
	}

	f.From = strings.TrimSpace(q.Get("from"))
	f.To = strings.TrimSpace(q.Get("to"))
	f.Date = strings.TrimSpace(q.Get("date"))
	f.Person = strings.TrimSpace(q.Get("person"))
	f.Keyword = q.Get("q")

	return f, nil
}

func (h *ReportReadHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	f, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, "invalid filter", http.StatusBadRequest)
		return
	}

	rows, err := h.Svc.List(r.Context(), sess.UserID, f)
	if err != nil {
		writeReportErr(w, err)
		return
	}

	out := make([]reportDTO, 0, len(rows))
	for _, rec := range rows {
		out = append(out, toDTO(rec))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *ReportReadHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	id, ok := reportID(w, r)
	if !ok {
		return
	}

	rec, err := h.Svc.Get(r.Context(), sess.UserID, id)
	if err != nil {
		writeReportErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toDTO(rec))
}

// Export streams the currently filtered set as CSV. Same filter params as
// List, so the file reflects exactly what the listing shows.
func (h *ReportReadHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	f, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, "invalid filter", http.StatusBadRequest)
		return
	}

	rows, err := h.Svc.List(r.Context(), sess.UserID, f)
	if err != nil {
		writeReportErr(w, err)
		return
	}

	pred, err := f.DatePredicate(time.Now())
	if err != nil {
		writeReportErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename(pred)+`"`)
	if err := report.WriteCSV(w, rows); err != nil {
		// headers are gone; nothing useful left to send
		return
	}
}
