package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"eventease/internal/logging"
	"eventease/internal/metrics"
	"eventease/internal/repository"
)

// Relayer drains the notification outbox on a fixed interval. It implements
// suture.Service.
type Relayer struct {
	outbox     repository.OutboxRepository
	sender     Sender
	batchSize  int
	interval   time.Duration
	maxRetries int
}

// NewRelayer creates a relayer. Failed rows are retried until they have been
// attempted maxRetries times.
func NewRelayer(outbox repository.OutboxRepository, sender Sender, batchSize int, interval time.Duration, maxRetries int) *Relayer {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 10
	}
	return &Relayer{
		outbox:     outbox,
		sender:     sender,
		batchSize:  batchSize,
		interval:   interval,
		maxRetries: maxRetries,
	}
}

// Serve runs until ctx is cancelled.
func (r *Relayer) Serve(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	logging.Info().Dur("interval", r.interval).Int("batch_size", r.batchSize).Msg("outbox relayer started")
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("outbox relayer stopped")
			return ctx.Err()
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// String names the service in supervisor logs.
func (r *Relayer) String() string {
	return "outbox-relayer"
}

// DrainOnce delivers one batch and returns how many rows were sent.
func (r *Relayer) DrainOnce(ctx context.Context) int {
	start := time.Now()
	defer func() { metrics.OutboxDrainDuration.Observe(time.Since(start).Seconds()) }()

	rows, err := r.outbox.ListDeliverable(ctx, r.batchSize, r.maxRetries)
	if err != nil {
		logging.Error().Err(err).Msg("outbox query failed")
		return 0
	}

	sent := 0
	for i := range rows {
		if ctx.Err() != nil {
			break
		}
		row := &rows[i]
		if err := r.sender.Send(ctx, MessageFromOutbox(row)); err != nil {
			if breakerRejected(err) {
				// The transport was not tried; the rest of the batch waits
				// for the breaker to close and keeps its attempt count.
				logging.Debug().Err(err).Uint64("outbox_id", row.ID).Msg("notification breaker open")
				break
			}
			metrics.OutboxDeliveries.WithLabelValues(row.Kind, "failed").Inc()
			logging.Warn().Err(err).
				Uint64("outbox_id", row.ID).
				Str("kind", row.Kind).
				Int("attempts", row.Attempts+1).
				Msg("notification delivery failed")
			if err := r.outbox.MarkFailed(ctx, row.ID, err.Error()); err != nil {
				logging.Error().Err(err).Uint64("outbox_id", row.ID).Msg("outbox mark failed")
			}
			continue
		}
		metrics.OutboxDeliveries.WithLabelValues(row.Kind, "sent").Inc()
		if err := r.outbox.MarkSent(ctx, row.ID); err != nil {
			// Delivered but not recorded; the row will be sent again.
			logging.Error().Err(err).Uint64("outbox_id", row.ID).Msg("outbox mark sent failed")
			continue
		}
		sent++
	}
	return sent
}

func breakerRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
