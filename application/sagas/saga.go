package sagas

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step is a single unit of work in a saga. Compensate undoes the step
// when a later one fails; it may be nil for read-only steps.
type Step struct {
	Name       string
	Execute    func(ctx context.Context, data interface{}) (interface{}, error)
	Compensate func(ctx context.Context, data interface{}) error
	MaxRetries int
	RetryDelay time.Duration
}

// State represents the current state of a saga execution
type State string

const (
	StatePending      State = "PENDING"
	StateRunning      State = "RUNNING"
	StateCompleted    State = "COMPLETED"
	StateFailed       State = "FAILED"
	StateCompensating State = "COMPENSATING"
	StateCompensated  State = "COMPENSATED"
)

// Saga orchestrates a series of steps with compensation logic. Each
// step receives the output of the previous one.
type Saga struct {
	id            string
	name          string
	steps         []Step
	compensations []func(ctx context.Context) error
	state         State
	logger        *zap.Logger
}

// New creates a new saga instance
func New(name string, logger *zap.Logger) *Saga {
	return &Saga{
		id:     fmt.Sprintf("saga_%d", time.Now().UnixNano()),
		name:   name,
		state:  StatePending,
		logger: logger,
	}
}

// AddStep appends a step to the saga
func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the saga. On step failure, completed steps are
// compensated in reverse order.
func (s *Saga) Execute(ctx context.Context, initialData interface{}) (interface{}, error) {
	s.state = StateRunning
	s.logger.Info("Starting saga",
		zap.String("sagaID", s.id),
		zap.String("saga", s.name),
		zap.Int("steps", len(s.steps)),
	)

	data := initialData
	for i, step := range s.steps {
		result, err := s.runStep(ctx, step, data)
		if err != nil {
			s.state = StateFailed
			s.logger.Error("Saga step failed",
				zap.String("sagaID", s.id),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			s.compensate(ctx)
			s.state = StateCompensated
			return nil, fmt.Errorf("saga %s failed at step %s: %w", s.name, step.Name, err)
		}

		data = result
		if step.Compensate != nil {
			stepData := data
			compensate := step.Compensate
			s.compensations = append(s.compensations, func(ctx context.Context) error {
				return compensate(ctx, stepData)
			})
		}

		s.logger.Debug("Saga step completed",
			zap.String("sagaID", s.id),
			zap.String("step", step.Name),
			zap.Int("stepNumber", i+1),
		)
	}

	s.state = StateCompleted
	s.logger.Info("Saga completed",
		zap.String("sagaID", s.id),
		zap.String("saga", s.name),
	)
	return data, nil
}

func (s *Saga) runStep(ctx context.Context, step Step, data interface{}) (interface{}, error) {
	attempts := step.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	delay := step.RetryDelay
	if delay == 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := step.Execute(ctx, data)
		if err == nil {
			return result, nil
		}
		lastErr = err
		s.logger.Warn("Saga step attempt failed",
			zap.String("sagaID", s.id),
			zap.String("step", step.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("step %s failed after %d attempts: %w", step.Name, attempts, lastErr)
}

// compensate runs registered compensations in reverse order, continuing
// past individual failures
func (s *Saga) compensate(ctx context.Context) {
	s.state = StateCompensating
	for i := len(s.compensations) - 1; i >= 0; i-- {
		if err := s.compensations[i](ctx); err != nil {
			s.logger.Error("Compensation failed",
				zap.String("sagaID", s.id),
				zap.Int("stepNumber", i+1),
				zap.Error(err),
			)
		}
	}
}

// State returns the current saga state
func (s *Saga) State() State { return s.state }

// ID returns the saga ID
func (s *Saga) ID() string { return s.id }
