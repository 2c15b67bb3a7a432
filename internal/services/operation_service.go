package services

import (
	"context"
	"fmt"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/store"
)

// OperationService records income and expense events. The store keeps
// limit running totals consistent inside the same write; this layer adds
// validation and event publication.
type OperationService struct {
	store     store.Store
	publisher EventPublisher
	logger    *log.Logger
}

func NewOperationService(st store.Store, publisher EventPublisher, logger *log.Logger) *OperationService {
	return &OperationService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentOperation),
	}
}

// Create validates the operation against its category and persists it.
// The operation type must match the category type exactly.
func (s *OperationService) Create(ctx context.Context, op core.Operation) (core.Operation, error) {
	if err := op.Validate(); err != nil {
		return core.Operation{}, err
	}

	cat, err := s.store.GetCategory(ctx, op.CategoryID)
	if err != nil {
		return core.Operation{}, fmt.Errorf("resolve category %d: %w", op.CategoryID, err)
	}
	if op.Type != cat.Type {
		return core.Operation{}, core.ErrTypeMismatch
	}

	if err := s.store.AddOperation(ctx, &op); err != nil {
		return core.Operation{}, fmt.Errorf("add operation: %w", err)
	}

	s.publish(ctx, amqp.EventOperationCreated, op.ID)
	return op, nil
}

func (s *OperationService) Get(ctx context.Context, id int64) (core.Operation, error) {
	return s.store.GetOperation(ctx, id)
}

func (s *OperationService) List(ctx context.Context, f store.OperationFilter) ([]core.Operation, error) {
	return s.store.ListOperations(ctx, f)
}

// Delete removes the operation. For expenses the active limit of the
// category is decremented in the same store write, clamped at zero.
func (s *OperationService) Delete(ctx context.Context, id int64) error {
	removed, err := s.store.RemoveOperation(ctx, id)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "operation deleted",
		log.FieldOperationID, removed.ID,
		log.FieldCategoryID, removed.CategoryID,
		log.FieldAmountCents, removed.Amount.Cents)

	s.publish(ctx, amqp.EventOperationDeleted, id)
	return nil
}

// publish is best-effort: the write already committed, so a bus outage
// only delays downstream processing.
func (s *OperationService) publish(ctx context.Context, kind amqp.EventKind, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, kind, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event",
			log.FieldEventKind, string(kind), log.FieldOperationID, id, log.FieldError, err)
	}
}
