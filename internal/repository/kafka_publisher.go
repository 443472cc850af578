package repository

import (
	"context"
	"time"

	"Astrolabe/internal/domain/models"
	"Astrolabe/internal/domain/repository"
)

// producer is what KafkaPublisher needs from pkg/kafka.Producer.
type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// Event is the envelope written to the events topic.
type Event struct {
	Type       string      `json:"type"`
	ID         string      `json:"id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// KafkaPublisher writes domain events to one topic, keyed by entity id.
type KafkaPublisher struct {
	producer producer
	topic    string
	now      func() time.Time
}

func NewKafkaPublisher(p producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic, now: time.Now}
}

func (p *KafkaPublisher) PublishChart(ctx context.Context, c *models.StoredChart) error {
	return p.publish(ctx, repository.EventChartAssembled, c.ID, c)
}

func (p *KafkaPublisher) PublishSynastry(ctx context.Context, r *models.SynastryReport) error {
	return p.publish(ctx, repository.EventSynastryScored, r.ID, r)
}

func (p *KafkaPublisher) publish(ctx context.Context, typ, id string, payload interface{}) error {
	return p.producer.Publish(ctx, p.topic, []byte(id), Event{
		Type:       typ,
		ID:         id,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops events. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishChart(context.Context, *models.StoredChart) error       { return nil }
func (NopPublisher) PublishSynastry(context.Context, *models.SynastryReport) error { return nil }
func (NopPublisher) Close() error                                                  { return nil }

var (
	_ repository.EventPublisher = (*KafkaPublisher)(nil)
	_ repository.EventPublisher = NopPublisher{}
)
