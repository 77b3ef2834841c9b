package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"restaurant-finder/web-svc/internal/domain"
	"restaurant-finder/web-svc/internal/service"
	"restaurant-finder/web-svc/internal/storage"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ service.EventPublisher = (*storage.KafkaPublisher)(nil)
	_ storage.MessageWriter  = (*kafka.Writer)(nil)
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return w.err
}

func TestKafkaPublisher_PublishEvent(t *testing.T) {
	writer := &recordingWriter{}
	publisher := storage.NewKafkaPublisher(writer)

	event := domain.InteractionEvent{
		Type:      domain.EventNearby,
		SessionID: "s-1",
		Latitude:  45.76,
		Longitude: 4.83,
		RadiusKm:  10,
		Results:   12,
		Timestamp: time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, publisher.PublishEvent(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "s-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, domain.EventNearby, string(msg.Headers[0].Value))

	var decoded domain.InteractionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestKafkaPublisher_WriterError(t *testing.T) {
	writer := &recordingWriter{err: errors.New("broker down")}
	publisher := storage.NewKafkaPublisher(writer)

	err := publisher.PublishEvent(context.Background(), domain.InteractionEvent{Type: domain.EventReset, SessionID: "s-2"})
	assert.EqualError(t, err, "broker down")
}
