package http

import (
	"net/http"
	"time"

	"finledger/internal/core"
)

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	overview, err := s.summaries.Overview(r.Context(), uid, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderOverview(*overview))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	period, err := queryPeriod(r, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.summaries.PeriodSummary(r.Context(), uid, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderPeriodSummary(*summary))
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	kind := core.TransactionKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = core.KindExpense
	}
	period, err := queryPeriod(r, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := s.summaries.Breakdown(r.Context(), uid, kind, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderBreakdown(*report))
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	months, err := queryInt(r, "months", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	series, err := s.trends.Trends(r.Context(), uid, months, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": renderMonthSummaries(series)})
}

func (s *Server) handleBalanceHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	months, err := queryInt(r, "months", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	series, err := s.trends.HistoricalBalance(r.Context(), uid, months, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": renderMonthSummaries(series)})
}
