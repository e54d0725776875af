package http

import (
	"net/http"

	"finledger/internal/core"
)

type reminderRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req reminderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	due, err := parseOptionalDate(req.DueDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	reminder := &core.Reminder{UserID: uid, Title: req.Title, DueDate: due}
	if err := s.reminders.Create(r.Context(), reminder); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, renderReminder(*reminder))
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	page, err := queryPage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, total, err := s.reminders.List(r.Context(), uid, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]reminderView, 0, len(rows))
	for _, rem := range rows {
		views = append(views, renderReminder(rem))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reminders": views,
		"meta":      metaFor(page, total),
	})
}

func (s *Server) handleCompleteReminder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.reminders.Complete(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
