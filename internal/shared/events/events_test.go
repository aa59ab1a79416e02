package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherWritesKeyedMessage(t *testing.T) {
	writer := &stubWriter{}
	publisher := NewKafkaPublisher(writer)

	userID := uuid.New()
	event := NewEvent(EntryMerged, userID, 7)
	event.EntryType = "exercise"
	event.Date = "2025-03-01"
	event.Calories = 240

	require.NoError(t, publisher.Publish(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	require.Equal(t, userID.String(), string(msg.Key))
	require.Equal(t, []kafka.Header{
		{Key: "event_type", Value: []byte(EntryMerged)},
		{Key: "event_id", Value: []byte(event.ID)},
	}, msg.Headers)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, 7, decoded.EntryID)
	require.Equal(t, 240, decoded.Calories)
	require.Equal(t, "2025-03-01", decoded.Date)

	require.NoError(t, publisher.Close())
	require.True(t, writer.closed)
}

func TestKafkaPublisherPropagatesWriteError(t *testing.T) {
	boom := errors.New("broker unavailable")
	publisher := NewKafkaPublisher(&stubWriter{err: boom})

	err := publisher.Publish(context.Background(), NewEvent(EntryLogged, uuid.New(), 1))
	require.ErrorIs(t, err, boom)
}
