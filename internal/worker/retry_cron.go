package worker

// retry_cron.go
// Background goroutine that periodically drains the dead letter queues and
// re-enqueues entries that have not exhausted their redelivery budget. SMTP
// outages are usually transient: a saludo that failed five times at 09:00
// often goes through at 09:05. Uses the Circuit Breaker to avoid re-feeding
// jobs into a queue whose downstream is still down.

import (
	"context"
	"encoding/json"
	"time"

	"ananda/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// maxRedeliveries caps how many times the cron re-injects a DLQ entry.
	// Past this the entry stays parked for manual inspection.
	maxRedeliveries = 3
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	RDB *redis.Client
	CB  *infra.CircuitBreaker
}

// StartRetryCron launches a background goroutine that ticks every 30s and
// redelivers dead-lettered jobs from both queues. It respects the context
// for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRedeliveries(ctx, cfg, QueueSaludo)
				processRedeliveries(ctx, cfg, QueueEmail)
			}
		}
	}()
}

func processRedeliveries(ctx context.Context, cfg RetryCronConfig, queue string) {
	// If CB is open the SMTP server is still down; don't re-feed the queue
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	dlqKey := DLQPrefix + queue

	for i := 0; i < retryBatchSize; i++ {
		// Breaker may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
		if err == redis.Nil {
			return
		}
		if err != nil {
			log.Error().Err(err).Str("dlq_key", dlqKey).Msg("retry_cron: failed to pop DLQ entry")
			return
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("dlq_key", dlqKey).Msg("retry_cron: discarding malformed DLQ entry")
			continue
		}

		redeliveries := entry.Attempts / maxJobAttempts
		if redeliveries >= maxRedeliveries {
			// Exhausted; park it again at the head so we don't spin on it
			if err := cfg.RDB.LPush(ctx, dlqKey, raw).Err(); err != nil {
				log.Error().Err(err).Str("dlq_key", dlqKey).Msg("retry_cron: failed to re-park entry")
			}
			return
		}

		job := Job{
			Type:     entry.JobType,
			Payload:  entry.Payload,
			Attempts: entry.Attempts,
		}
		data, err := json.Marshal(job)
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to marshal job for redelivery")
			continue
		}

		if err := cfg.RDB.LPush(ctx, entry.OriginalQueue, data).Err(); err != nil {
			log.Error().Err(err).Str("queue", entry.OriginalQueue).Msg("retry_cron: failed to redeliver job")
			continue
		}

		log.Info().
			Str("queue", entry.OriginalQueue).
			Str("job_type", entry.JobType).
			Int("attempts", entry.Attempts).
			Msg("retry_cron: job redelivered from DLQ")
	}
}
