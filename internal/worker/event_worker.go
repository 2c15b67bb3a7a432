// Package worker consumes budget events and runs the periodic analytics
// export. Events carry only an ID; the worker refetches the current state
// so it never acts on stale payloads.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/store"
)

// AnalyticsProvider computes the dashboard aggregate for a period.
type AnalyticsProvider interface {
	Compute(ctx context.Context, period core.Period, userID *int64) (core.Analytics, error)
}

// SummaryExporter pushes one analytics snapshot to an external sink.
type SummaryExporter interface {
	ExportSummary(ctx context.Context, a core.Analytics) error
}

// EventWorker reacts to budget events and owns the export loop.
type EventWorker struct {
	store     store.Store
	analytics AnalyticsProvider
	exporter  SummaryExporter
	logger    *log.Logger
}

func NewEventWorker(st store.Store, analytics AnalyticsProvider, exporter SummaryExporter, logger *log.Logger) *EventWorker {
	return &EventWorker{
		store:     st,
		analytics: analytics,
		exporter:  exporter,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes one budget event. A missing entity is not an
// error: the entity was deleted between publish and delivery, and
// requeueing would loop forever.
func (w *EventWorker) HandleEvent(ctx context.Context, msg *amqp.BudgetEventMessage) error {
	switch msg.Kind {
	case amqp.EventOperationCreated:
		return w.handleOperationCreated(ctx, msg.ID)
	case amqp.EventOperationDeleted:
		w.logger.InfoContext(ctx, "operation deleted",
			log.FieldOperationID, msg.ID)
		return nil
	case amqp.EventGoalFunded:
		return w.handleGoalFunded(ctx, msg.ID)
	default:
		w.logger.WarnContext(ctx, "ignoring unknown event kind",
			log.FieldEventKind, string(msg.Kind))
		return nil
	}
}

func (w *EventWorker) handleOperationCreated(ctx context.Context, id int64) error {
	op, err := w.store.GetOperation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, "operation vanished before processing",
			log.FieldOperationID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get operation %d: %w", id, err)
	}

	w.logger.InfoContext(ctx, "operation recorded",
		log.FieldOperationID, op.ID,
		log.FieldCategoryID, op.CategoryID,
		log.FieldAmountCents, op.Amount.Cents)

	if op.Type != core.Expense {
		return nil
	}

	l, err := w.store.GetActiveLimitByCategory(ctx, op.CategoryID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get limit for category %d: %w", op.CategoryID, err)
	}

	if l.CurrentAmount.Cents >= l.LimitAmount.Cents {
		w.logger.WarnContext(ctx, "spending limit reached",
			log.FieldCategoryID, op.CategoryID,
			log.FieldLimitID, l.ID,
			"current_cents", l.CurrentAmount.Cents,
			"limit_cents", l.LimitAmount.Cents)
	}
	return nil
}

func (w *EventWorker) handleGoalFunded(ctx context.Context, id int64) error {
	g, err := w.store.GetGoal(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, "goal vanished before processing",
			log.FieldGoalID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get goal %d: %w", id, err)
	}

	if g.Completed() {
		w.logger.InfoContext(ctx, "goal completed",
			log.FieldGoalID, g.ID,
			"title", g.Title,
			log.FieldAmountCents, g.CurrentAmount.Cents)
	} else {
		w.logger.InfoContext(ctx, "goal funded",
			log.FieldGoalID, g.ID,
			"title", g.Title,
			log.FieldAmountCents, g.CurrentAmount.Cents)
	}
	return nil
}

// RunPeriodicExport exports the current-month analytics on every tick
// until ctx is cancelled. Without an exporter it returns immediately.
func (w *EventWorker) RunPeriodicExport(ctx context.Context, interval time.Duration) {
	if w.exporter == nil {
		w.logger.Info("no exporter configured, export loop disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "export loop stopped", "reason", ctx.Err())
			return
		case <-ticker.C:
			w.ExportOnce(ctx)
		}
	}
}

// ExportOnce computes and exports one snapshot. Failures are logged; the
// next tick retries.
func (w *EventWorker) ExportOnce(ctx context.Context) {
	a, err := w.analytics.Compute(ctx, core.PeriodCurrentMonth, nil)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to compute analytics for export",
			log.FieldError, err)
		return
	}
	if err := w.exporter.ExportSummary(ctx, a); err != nil {
		w.logger.ErrorContext(ctx, "failed to export analytics",
			log.FieldError, err)
	}
}
