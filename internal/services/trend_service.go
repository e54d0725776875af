package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

const (
	// DefaultTrendMonths is used when the caller does not ask for a length.
	DefaultTrendMonths = 6
	// DefaultHistoryMonths is the default depth of the balance history.
	DefaultHistoryMonths = 12
	maxTrendMonths       = 60
)

// TrendService builds month-by-month series ending at the current month.
type TrendService struct {
	store   ledger.Store
	summary *SummaryService
}

func NewTrendService(store ledger.Store) *TrendService {
	return &TrendService{store: store, summary: NewSummaryService(store)}
}

// Trends returns the last n month summaries, oldest first. Months are
// aggregated concurrently; each entry covers its full calendar month so the
// oldest entry is complete even when n months ago falls mid-month.
func (s *TrendService) Trends(ctx context.Context, userID int64, n int, ref time.Time) ([]core.MonthSummary, error) {
	if n == 0 {
		n = DefaultTrendMonths
	}
	if n < 1 || n > maxTrendMonths {
		return nil, fmt.Errorf("%w: months must be between 1 and %d", core.ErrValidation, maxTrendMonths)
	}

	months := core.MonthsEndingAt(ref, n)
	out := make([]core.MonthSummary, len(months))

	g, ctx := errgroup.WithContext(ctx)
	for i, ym := range months {
		g.Go(func() error {
			ms, err := s.summary.MonthSummary(ctx, userID, ym)
			if err != nil {
				return fmt.Errorf("month %s: %w", ym.Key(), err)
			}
			out[i] = *ms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// HistoricalBalance is the deeper variant of Trends used for the balance
// chart: the same month series with a 12-month default depth.
func (s *TrendService) HistoricalBalance(ctx context.Context, userID int64, n int, ref time.Time) ([]core.MonthSummary, error) {
	if n == 0 {
		n = DefaultHistoryMonths
	}
	return s.Trends(ctx, userID, n, ref)
}
