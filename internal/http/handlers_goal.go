package http

import (
	"net/http"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

type goalRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Target      string `json:"target"`
	StartDate   string `json:"start_date"`
	TargetDate  string `json:"target_date"`
	Status      string `json:"status"`
}

func (req goalRequest) toDomain(uid int64) (*core.SavingsGoal, error) {
	target, err := core.ParseAmount(req.Target)
	if err != nil {
		return nil, err
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	targetDate, err := parseOptionalDate(req.TargetDate)
	if err != nil {
		return nil, err
	}
	return &core.SavingsGoal{
		UserID:      uid,
		Name:        req.Name,
		Description: req.Description,
		Target:      target,
		StartDate:   start,
		TargetDate:  targetDate,
		Status:      core.GoalStatus(req.Status),
	}, nil
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	g, err := req.toDomain(uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.savings.CreateGoal(r.Context(), g); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, renderGoal(*g))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	g, err := s.savings.GetGoal(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// The detail view carries the ten most recent ledger entries.
	latest, _, err := s.savings.ListMovements(r.Context(), uid, id, ledger.Page{Limit: 10})
	if err != nil {
		writeError(w, r, err)
		return
	}
	view := renderGoal(*g)
	view.Movements = make([]movementView, 0, len(latest))
	for _, m := range latest {
		view.Movements = append(view.Movements, renderMovement(m))
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	page, err := queryPage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, total, err := s.savings.ListGoals(r.Context(), uid, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]goalView, 0, len(rows))
	for _, g := range rows {
		views = append(views, renderGoal(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"goals": views,
		"meta":  metaFor(page, total),
	})
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req goalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	g, err := req.toDomain(uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	g.ID = id
	if err := s.savings.UpdateGoal(r.Context(), g); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.savings.GetGoal(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderGoal(*updated))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.savings.DeleteGoal(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type movementRequest struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Place       string `json:"place"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

func (s *Server) handleAddMovement(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	goalID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req movementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	m := &core.SavingsMovement{
		GoalID:      goalID,
		UserID:      uid,
		Kind:        core.MovementKind(req.Kind),
		Name:        req.Name,
		Place:       req.Place,
		Description: req.Description,
		Amount:      amount,
		Date:        date,
	}
	goal, err := s.savings.AddMovement(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"movement": renderMovement(*m),
		"goal":     renderGoal(*goal),
	})
}

func (s *Server) handleListMovements(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	goalID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	page, err := queryPage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, total, err := s.savings.ListMovements(r.Context(), uid, goalID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]movementView, 0, len(rows))
	for _, m := range rows {
		views = append(views, renderMovement(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"movements": views,
		"meta":      metaFor(page, total),
	})
}
