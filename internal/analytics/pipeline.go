package analytics

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"

	"github.com/enterprise/strength-service/internal/events"
)

// Pipeline consumes assessment events from Kafka into the aggregator and,
// when a store is configured, into Redis
type Pipeline struct {
	aggregator *Aggregator
	store      *Store
}

// NewPipeline creates a consumer group handler. store may be nil.
func NewPipeline(aggregator *Aggregator, store *Store) *Pipeline {
	return &Pipeline{aggregator: aggregator, store: store}
}

func (p *Pipeline) Setup(sarama.ConsumerGroupSession) error {
	log.Info().Msg("Analytics pipeline session started")
	return nil
}

func (p *Pipeline) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info().Msg("Analytics pipeline session ended")
	return nil
}

func (p *Pipeline) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			p.processMessage(session.Context(), message)
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// processMessage never fails the session: a bad message is logged and skipped
func (p *Pipeline) processMessage(ctx context.Context, message *sarama.ConsumerMessage) {
	event, err := events.Decode(message.Value)
	if err != nil {
		log.Error().
			Err(err).
			Int32("partition", message.Partition).
			Int64("offset", message.Offset).
			Msg("Failed to decode assessment event")
		return
	}

	p.aggregator.Record(event)

	if p.store != nil {
		if err := p.store.AppendRecent(ctx, event); err != nil {
			log.Warn().Err(err).Str("event_id", event.ID).Msg("Failed to store recent event")
		}
	}
}

// Flush writes the current snapshot to the store
func (p *Pipeline) Flush(ctx context.Context) (Snapshot, error) {
	snap := p.aggregator.Snapshot()
	if p.store == nil {
		return snap, nil
	}
	return snap, p.store.SaveSnapshot(ctx, snap)
}

// RunReporter flushes and logs metrics every interval until ctx is cancelled
func (p *Pipeline) RunReporter(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snap, err := p.Flush(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Failed to persist analytics snapshot")
			}
			log.Info().
				Int64("total", snap.Total).
				Int64("valid", snap.Valid).
				Int64("invalid", snap.Invalid).
				Float64("avg_length", snap.AverageLength).
				Float64("events_per_sec", snap.EventsPerSecond).
				Msg("Analytics pipeline metrics")

		case <-ctx.Done():
			return
		}
	}
}
