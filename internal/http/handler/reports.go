package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"nippo/internal/auth"
	"nippo/internal/report"

	"github.com/go-chi/chi/v5"
)

type ReportHandler struct {
	Svc *report.Service
}

type reportReq struct {
	Date     string `json:"date"`
	Person   string `json:"person"`
	Location string `json:"location"`
	Content  string `json:"content"`
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	var req reportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	id, err := h.Svc.Create(r.Context(), sess.UserID, report.CreateInput{
		Date:     req.Date,
		Person:   req.Person,
		Location: req.Location,
		Content:  req.Content,
	})
	if err != nil {
		writeReportErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": id})
}

func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	id, ok := reportID(w, r)
	if !ok {
		return
	}

	var req reportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	err := h.Svc.Update(r.Context(), sess.UserID, id, report.UpdateInput{
		Date:     req.Date,
		Person:   req.Person,
		Location: req.Location,
		Content:  req.Content,
	})
	if err != nil {
		writeReportErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	id, ok := reportID(w, r)
	if !ok {
		return
	}

	if err := h.Svc.Delete(r.Context(), sess.UserID, id); err != nil {
		writeReportErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func reportID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeReportErr maps domain errors to status codes. Every error is terminal
// for the action; the client re-attempts manually.
func writeReportErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, report.ErrIncompleteRange):
		http.Error(w, "incomplete date selection", http.StatusBadRequest)
	case errors.Is(err, report.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, report.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "store error", http.StatusInternalServerError)
	}
}
