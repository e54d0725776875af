package http

import (
	"net/http"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

type budgetRequest struct {
	Name        string `json:"name"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	TotalAmount string `json:"total_amount"`
	Description string `json:"description"`
}

func (req budgetRequest) toDomain(uid int64) (*core.Budget, error) {
	amount, err := core.ParseAmount(req.TotalAmount)
	if err != nil {
		return nil, err
	}
	return &core.Budget{
		UserID:      uid,
		Name:        req.Name,
		Month:       req.Month,
		Year:        req.Year,
		TotalAmount: amount,
		Description: req.Description,
	}, nil
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req budgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	b, err := req.toDomain(uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.budgets.Create(r.Context(), b); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, renderBudget(*b))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	b, err := s.budgets.Get(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderBudget(*b))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	page, err := queryPage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	month, err := queryInt(r, "month", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, err := queryInt(r, "year", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, total, err := s.budgets.List(r.Context(), uid, ledger.BudgetFilter{
		Month: month, Year: year, Page: page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]budgetView, 0, len(rows))
	for _, b := range rows {
		views = append(views, renderBudget(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"budgets": views,
		"meta":    metaFor(page, total),
	})
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	existing, err := s.budgets.Get(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req budgetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := core.ParseAmount(req.TotalAmount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	existing.Name = req.Name
	existing.TotalAmount = amount
	existing.Description = req.Description
	if err := s.budgets.Update(r.Context(), existing); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderBudget(*existing))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.budgets.Delete(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type allocationRequest struct {
	Allocated string `json:"allocated"`
}

func (s *Server) handleSetAllocation(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	budgetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}
	var req allocationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Allocated)
	if err != nil {
		writeError(w, r, err)
		return
	}
	alloc, err := s.budgets.SetAllocation(r.Context(), uid, budgetID, categoryID, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderAllocation(*alloc))
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	progress, err := s.budgets.Progress(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderBudgetProgress(*progress))
}
