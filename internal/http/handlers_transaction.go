package http

import (
	"net/http"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

type recurrenceRequest struct {
	FrequencyID int64  `json:"frequency_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type transactionRequest struct {
	CategoryID  int64              `json:"category_id"`
	Kind        string             `json:"kind"`
	Description string             `json:"description"`
	Amount      string             `json:"amount"`
	Date        string             `json:"date"`
	Recurrence  *recurrenceRequest `json:"recurrence"`
}

func (req transactionRequest) toDomain(uid int64) (*core.Transaction, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	t := &core.Transaction{
		UserID:      uid,
		CategoryID:  req.CategoryID,
		Kind:        core.TransactionKind(req.Kind),
		Description: req.Description,
		Amount:      amount,
		Date:        date,
	}
	if req.Recurrence != nil {
		start, err := parseOptionalDate(req.Recurrence.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parseOptionalDate(req.Recurrence.EndDate)
		if err != nil {
			return nil, err
		}
		if start.IsZero() {
			start = date
		}
		t.Recurrence = &core.Recurrence{
			FrequencyID: req.Recurrence.FrequencyID,
			StartDate:   start,
			EndDate:     end,
		}
	}
	return t, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := req.toDomain(uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.transactions.Create(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, renderTransaction(*t))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	t, err := s.transactions.Get(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderTransaction(*t))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	page, err := queryPage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter := ledger.TransactionFilter{
		Kind: core.TransactionKind(r.URL.Query().Get("kind")),
		Page: page,
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := queryInt(r, "category_id", 0)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.CategoryID = int64(id)
	}
	if r.URL.Query().Get("from") != "" || r.URL.Query().Get("to") != "" {
		period, err := queryPeriod(r, time.Now())
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Period = &period
	}

	rows, total, err := s.transactions.List(r.Context(), uid, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]transactionView, 0, len(rows))
	for _, t := range rows {
		views = append(views, renderTransaction(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": views,
		"meta":         metaFor(page, total),
	})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := req.toDomain(uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t.ID = id
	if err := s.transactions.Update(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderTransaction(*t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.transactions.Delete(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}

	kind := core.TransactionKind(r.URL.Query().Get("kind"))
	cats, err := s.transactions.ListCategories(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		views = append(views, renderCategory(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": views})
}
