// Package http exposes the engine over a JSON API. The caller identifies
// itself with the X-User-ID header; authentication sits in front of this
// service.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"finledger/internal/services"
)

// Server wires the engine services into an http.Server.
type Server struct {
	http.Server

	transactions *services.TransactionService
	summaries    *services.SummaryService
	trends       *services.TrendService
	budgets      *services.BudgetService
	savings      *services.SavingsService
	reminders    *services.ReminderService

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string,
	transactions *services.TransactionService,
	summaries *services.SummaryService,
	trends *services.TrendService,
	budgets *services.BudgetService,
	savings *services.SavingsService,
	reminders *services.ReminderService,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		transactions: transactions,
		summaries:    summaries,
		trends:       trends,
		budgets:      budgets,
		savings:      savings,
		reminders:    reminders,
		rateLimiter:  newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/overview", s.wrap(s.handleOverview))
	mux.HandleFunc("GET /api/summary", s.wrap(s.handleSummary))
	mux.HandleFunc("GET /api/breakdown", s.wrap(s.handleBreakdown))
	mux.HandleFunc("GET /api/trends", s.wrap(s.handleTrends))
	mux.HandleFunc("GET /api/balance-history", s.wrap(s.handleBalanceHistory))

	mux.HandleFunc("GET /api/categories", s.wrap(s.handleListCategories))

	mux.HandleFunc("POST /api/transactions", s.wrap(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.wrap(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", s.wrap(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.wrap(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.wrap(s.handleDeleteTransaction))

	mux.HandleFunc("POST /api/budgets", s.wrap(s.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets", s.wrap(s.handleListBudgets))
	mux.HandleFunc("GET /api/budgets/{id}", s.wrap(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.wrap(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.wrap(s.handleDeleteBudget))
	mux.HandleFunc("PUT /api/budgets/{id}/allocations/{categoryID}", s.wrap(s.handleSetAllocation))
	mux.HandleFunc("GET /api/budgets/{id}/progress", s.wrap(s.handleBudgetProgress))

	mux.HandleFunc("POST /api/goals", s.wrap(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals", s.wrap(s.handleListGoals))
	mux.HandleFunc("GET /api/goals/{id}", s.wrap(s.handleGetGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.wrap(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.wrap(s.handleDeleteGoal))
	mux.HandleFunc("POST /api/goals/{id}/movements", s.wrap(s.handleAddMovement))
	mux.HandleFunc("GET /api/goals/{id}/movements", s.wrap(s.handleListMovements))

	mux.HandleFunc("POST /api/reminders", s.wrap(s.handleCreateReminder))
	mux.HandleFunc("GET /api/reminders", s.wrap(s.handleListReminders))
	mux.HandleFunc("POST /api/reminders/{id}/complete", s.wrap(s.handleCompleteReminder))

	return s
}

// wrap adds request IDs, logging, security headers and write rate limiting.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter captures the status code for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the rate limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
