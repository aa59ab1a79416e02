// Package events publishes diary changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"github.com/andrasnagy-data/voicelog/internal/shared/config"
)

const (
	EntryLogged  = "diary.entry_logged"
	EntryMerged  = "diary.entry_merged"
	EntryUpdated = "diary.entry_updated"
	EntryDeleted = "diary.entry_deleted"
)

type (
	// Event describes a change to a diary log entry.
	Event struct {
		ID         string    `json:"event_id"`
		Type       string    `json:"event_type"`
		UserID     string    `json:"user_id"`
		EntryID    int       `json:"entry_id"`
		EntryType  string    `json:"entry_type,omitempty"`
		Date       string    `json:"date,omitempty"`
		Calories   int       `json:"calories"`
		OccurredAt time.Time `json:"occurred_at"`
	}

	// Publisher delivers events to downstream consumers.
	Publisher interface {
		Publish(ctx context.Context, event Event) error
	}

	messageWriter interface {
		WriteMessages(ctx context.Context, msgs ...kafka.Message) error
		Close() error
	}

	// KafkaPublisher writes events to a single topic keyed by user.
	KafkaPublisher struct {
		writer messageWriter
	}

	// NoopPublisher drops every event.
	NoopPublisher struct{}
)

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType string, userID uuid.UUID, entryID int) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID.String(),
		EntryID:    entryID,
		OccurredAt: time.Now().UTC(),
	}
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise. The Kafka writer is closed when the app stops.
func NewPublisher(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) Publisher {
	if !cfg.EventsEnabled() {
		logger.Debug().Msg("KAFKA_BROKERS not set, diary events disabled")
		return NoopPublisher{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	publisher := NewKafkaPublisher(writer)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Debug().Msg("Closing Kafka writer")
			return publisher.Close()
		},
	})

	logger.Debug().
		Strs("brokers", cfg.KafkaBrokers).
		Str("topic", cfg.KafkaTopic).
		Msg("Kafka publisher initialized")
	return publisher
}

func NewKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish writes the event as JSON, partitioned by user id so a user's
// events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (NoopPublisher) Publish(context.Context, Event) error {
	return nil
}
