package services

import (
	"context"
	"fmt"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/store"
)

// GoalService manages savings goals and their incremental funding.
type GoalService struct {
	store     store.Store
	publisher EventPublisher
	logger    *log.Logger
}

func NewGoalService(st store.Store, publisher EventPublisher, logger *log.Logger) *GoalService {
	return &GoalService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentGoal),
	}
}

func (s *GoalService) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.CreateGoal(ctx, &g); err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (s *GoalService) Get(ctx context.Context, id int64) (core.Goal, error) {
	return s.store.GetGoal(ctx, id)
}

func (s *GoalService) List(ctx context.Context) ([]core.Goal, error) {
	return s.store.ListGoals(ctx)
}

// Update replaces the goal's mutable fields. CreatedAt and CurrentAmount
// are preserved; funding goes through Fund only.
func (s *GoalService) Update(ctx context.Context, g core.Goal) (core.Goal, error) {
	prev, err := s.store.GetGoal(ctx, g.ID)
	if err != nil {
		return core.Goal{}, err
	}
	g.CreatedAt = prev.CreatedAt
	g.CurrentAmount = prev.CurrentAmount

	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return g, nil
}

func (s *GoalService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteGoal(ctx, id)
}

// Fund adds amount to the goal's saved total as one atomic store update.
// There is no upper clamp; a goal may be funded past its target.
func (s *GoalService) Fund(ctx context.Context, id int64, amount core.Money) (core.Goal, error) {
	if err := amount.Validate(); err != nil {
		return core.Goal{}, err
	}

	g, err := s.store.AddGoalProgress(ctx, id, amount)
	if err != nil {
		return core.Goal{}, err
	}

	if g.Completed() {
		s.logger.InfoContext(ctx, "goal reached its target",
			log.FieldGoalID, g.ID, log.FieldAmountCents, g.CurrentAmount.Cents)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, amqp.EventGoalFunded, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish event",
				log.FieldEventKind, string(amqp.EventGoalFunded), log.FieldGoalID, id, log.FieldError, err)
		}
	}
	return g, nil
}
