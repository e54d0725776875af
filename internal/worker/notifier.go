// Package worker runs the notification side of the engine: it consumes
// engine events from the queue and scans for reminders coming due.
package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"finledger/internal/amqp"
	"finledger/internal/ledger"
	"finledger/internal/log"
)

// EventBus is the queue surface the notifier needs. *amqp.Client satisfies
// it.
type EventBus interface {
	Publish(ctx context.Context, e *amqp.Event) error
	Consume(ctx context.Context, handler func(*amqp.Event) error) error
}

// Notifier consumes engine events and publishes reminder.due for reminders
// whose day has arrived.
type Notifier struct {
	store        ledger.ReminderStore
	client       EventBus
	logger       *log.Logger
	scanInterval time.Duration

	// published tracks which reminders were announced on which day, so a
	// reminder fires once per day instead of once per scan.
	published map[int64]string
}

func NewNotifier(store ledger.ReminderStore, client EventBus, logger *log.Logger, scanInterval time.Duration) *Notifier {
	return &Notifier{
		store:        store,
		client:       client,
		logger:       logger.WithComponent(log.ComponentWorker),
		scanInterval: scanInterval,
		published:    make(map[int64]string),
	}
}

// Run blocks until ctx is cancelled, consuming events and scanning for due
// reminders concurrently.
func (n *Notifier) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := n.client.Consume(ctx, n.handleEvent)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return n.scanLoop(ctx)
	})

	return g.Wait()
}

// handleEvent acknowledges engine events. Delivery channels (mail, push)
// would hang off this dispatch; for now each event type is logged.
func (n *Notifier) handleEvent(e *amqp.Event) error {
	switch e.Type {
	case amqp.EventGoalCompleted:
		n.logger.Info("Savings goal completed",
			log.FieldUserID, e.UserID,
			log.FieldGoalID, e.GoalID,
			"goal_name", e.GoalName,
			log.FieldAmountCents, e.TargetCents)
	case amqp.EventBudgetExceeded:
		n.logger.Info("Budget exceeded",
			log.FieldUserID, e.UserID,
			log.FieldBudgetID, e.BudgetID,
			log.FieldMonth, e.Month,
			log.FieldYear, e.Year,
			"spent_cents", e.SpentCents,
			"limit_cents", e.LimitCents)
	case amqp.EventReminderDue:
		n.logger.Info("Reminder due",
			log.FieldUserID, e.UserID,
			log.FieldReminderID, e.ReminderID,
			"title", e.ReminderTitle)
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}

func (n *Notifier) scanLoop(ctx context.Context) error {
	ticker := time.NewTicker(n.scanInterval)
	defer ticker.Stop()

	// First scan immediately so restarts do not delay notifications.
	n.scanDueReminders(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			n.scanDueReminders(ctx, now)
		}
	}
}

func (n *Notifier) scanDueReminders(ctx context.Context, now time.Time) {
	due, err := n.store.ListDueReminders(ctx, now)
	if err != nil {
		n.logger.ErrorContext(ctx, "Failed to list due reminders", log.FieldError, err)
		return
	}

	day := now.UTC().Format("2006-01-02")
	for _, r := range due {
		if n.published[r.ID] == day {
			continue
		}
		event := amqp.NewReminderDueEvent(r.UserID, r.ID, r.Title)
		if err := n.client.Publish(ctx, event); err != nil {
			n.logger.ErrorContext(ctx, "Failed to publish reminder.due",
				log.FieldReminderID, r.ID, log.FieldError, err)
			continue
		}
		n.published[r.ID] = day
	}

	// Drop yesterday's entries so the map does not grow unbounded.
	for id, publishedDay := range n.published {
		if publishedDay != day {
			delete(n.published, id)
		}
	}
}
