package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/ledger"
	"finledger/internal/ledger/memory"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []*amqp.Event
}

func (p *capturePublisher) Publish(_ context.Context, e *amqp.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) byType(eventType string) []*amqp.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*amqp.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func expenseCategory(t *testing.T, store ledger.Store) core.Category {
	t.Helper()
	return categoryOfKind(t, store, core.KindExpense, 0)
}

func categoryOfKind(t *testing.T, store ledger.Store, kind core.TransactionKind, index int) core.Category {
	t.Helper()
	cats, err := store.ListCategories(context.Background(), kind)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) <= index {
		t.Fatalf("need %d %s categories, have %d", index+1, kind, len(cats))
	}
	return cats[index]
}

func addTransaction(t *testing.T, store ledger.Store, userID int64, kind core.TransactionKind, categoryID, cents int64, date time.Time) *core.Transaction {
	t.Helper()
	tr := &core.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		Kind:       kind,
		Amount:     core.Money{Cents: cents},
		Date:       date,
	}
	if err := store.CreateTransaction(context.Background(), tr); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tr
}

func newTestStore(t *testing.T) ledger.Store {
	t.Helper()
	return memory.New()
}
