package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain sentinels to status codes. Unrecognized errors are
// logged and reported as a bare 500 to avoid leaking internals.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, core.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// userID reads the caller identity from X-User-ID. Authentication happens
// upstream; a missing or malformed header is a 401.
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get("X-User-ID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid X-User-ID header"})
		return 0, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid %s", name)})
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

// parseDate accepts "2006-01-02" or RFC 3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: malformed date %q", core.ErrValidation, s)
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseDate(s)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed %s %q", core.ErrValidation, name, raw)
	}
	return n, nil
}

func queryPage(r *http.Request) (ledger.Page, error) {
	number, err := queryInt(r, "page", 0)
	if err != nil {
		return ledger.Page{}, err
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return ledger.Page{}, err
	}
	return ledger.Page{Number: number, Limit: limit}, nil
}

// queryPeriod reads from/to query parameters; both default to the current
// calendar month when absent.
func queryPeriod(r *http.Request, now time.Time) (core.Period, error) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" && to == "" {
		return core.MonthWindow(now.UTC().Year(), now.UTC().Month()), nil
	}
	if from == "" || to == "" {
		return core.Period{}, fmt.Errorf("%w: from and to must be given together", core.ErrValidation)
	}

	start, err := parseDate(from)
	if err != nil {
		return core.Period{}, err
	}
	end, err := parseDate(to)
	if err != nil {
		return core.Period{}, err
	}
	// Stretch the end bound to cover its whole day.
	end = end.Add(24*time.Hour - time.Second)
	return core.NewPeriod(start, end)
}

type listMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func metaFor(p ledger.Page, total int64) listMeta {
	n := p.Normalize()
	return listMeta{Total: total, Page: n.Number, Limit: n.Limit}
}
