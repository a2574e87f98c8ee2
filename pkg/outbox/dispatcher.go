package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/enums"
	"github.com/simovate/simstack-backend/pkg/logger"
)

// Handler consumes one decoded event. Handlers must be idempotent: a row is
// re-delivered when marking it published fails.
type Handler func(ctx context.Context, envelope PayloadEnvelope, event models.OutboxEvent) error

// Dispatcher polls unpublished outbox rows and routes them to handlers by
// event type. Rows with no handler are published unchanged so they never
// wedge the queue.
type Dispatcher struct {
	repo        *Repository
	logg        *logger.Logger
	handlers    map[enums.OutboxEventType][]Handler
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

type DispatcherOptions struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

func NewDispatcher(repo *Repository, logg *logger.Logger, opts DispatcherOptions) (*Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 10
	}
	return &Dispatcher{
		repo:        repo,
		logg:        logg,
		handlers:    make(map[enums.OutboxEventType][]Handler),
		interval:    opts.PollInterval,
		batchSize:   opts.BatchSize,
		maxAttempts: opts.MaxAttempts,
	}, nil
}

// Register adds a handler for the given event type.
func (d *Dispatcher) Register(eventType enums.OutboxEventType, handler Handler) {
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.DispatchOnce(ctx); err != nil && d.logg != nil {
				d.logg.Error(ctx, "outbox dispatch pass failed", err)
			}
		}
	}
}

// DispatchOnce processes a single batch of unpublished events.
func (d *Dispatcher) DispatchOnce(ctx context.Context) error {
	rows, err := d.repo.FetchUnpublished(d.batchSize)
	if err != nil {
		return fmt.Errorf("fetch unpublished: %w", err)
	}

	for _, row := range rows {
		if row.AttemptCount >= d.maxAttempts {
			// Poison row: park it as published so the queue keeps moving.
			if d.logg != nil {
				logCtx := d.logg.WithFields(ctx, map[string]any{
					"event_id":   row.ID.String(),
					"event_type": row.EventType,
					"attempts":   row.AttemptCount,
				})
				d.logg.Warn(logCtx, "outbox event exceeded max attempts, parking")
			}
			if err := d.repo.MarkPublished(row.ID); err != nil {
				return fmt.Errorf("park event %s: %w", row.ID, err)
			}
			continue
		}

		if err := d.dispatchRow(ctx, row); err != nil {
			if markErr := d.repo.MarkFailed(row.ID, err); markErr != nil {
				return fmt.Errorf("mark failed %s: %w", row.ID, markErr)
			}
			continue
		}
		if err := d.repo.MarkPublished(row.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", row.ID, err)
		}
	}
	return nil
}

func (d *Dispatcher) dispatchRow(ctx context.Context, row models.OutboxEvent) error {
	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	for _, handler := range d.handlers[row.EventType] {
		if err := handler(ctx, envelope, row); err != nil {
			return err
		}
	}
	return nil
}
