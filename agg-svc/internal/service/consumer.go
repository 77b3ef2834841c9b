package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"restaurant-finder/agg-svc/internal/domain"

	"github.com/mmcloughlin/geohash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var ErrInvalidEvent = errors.New("event has no type")

const defaultPrecision = 5

var eventsConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "agg_events_consumed_total",
		Help: "Interaction events read from the events topic",
	},
	[]string{"outcome"},
)

type Consumer struct {
	Reader    MessageReader
	Store     StoreInterface
	Precision uint
	log       *zap.Logger
	now       func() time.Time
}

func NewConsumer(reader MessageReader, store StoreInterface, precision uint, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	if precision < 1 || precision > 12 {
		precision = defaultPrecision
	}
	return &Consumer{
		Reader:    reader,
		Store:     store,
		Precision: precision,
		log:       log.Named("consumer"),
		now:       time.Now,
	}
}

// Start reads until ctx is cancelled or the reader is closed. Malformed
// messages and store failures are logged and skipped.
func (c *Consumer) Start(ctx context.Context) {
	c.log.Info("consumer started")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.log.Info("consumer stopped")
				return
			}
			c.log.Warn("reading message failed", zap.Error(err))
			continue
		}

		var event domain.Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			eventsConsumed.WithLabelValues("malformed").Inc()
			c.log.Warn("dropping malformed message", zap.Int64("offset", message.Offset), zap.Error(err))
			continue
		}

		if err := c.ProcessEvent(ctx, event); err != nil {
			eventsConsumed.WithLabelValues("failed").Inc()
			c.log.Error("processing event failed",
				zap.String("type", event.Type),
				zap.String("session_id", event.SessionID),
				zap.Error(err))
			continue
		}
		eventsConsumed.WithLabelValues("ok").Inc()
	}
}

// ProcessEvent counts the event under its day. Searches also rank the
// normalised query; nearby fetches rank the geohash cell of their origin.
func (c *Consumer) ProcessEvent(ctx context.Context, event domain.Event) error {
	if event.Type == "" {
		return ErrInvalidEvent
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = c.clock()
	}
	day := event.Day()

	if err := c.Store.IncrementEvent(ctx, day, event.Type); err != nil {
		return fmt.Errorf("count %s: %w", event.Type, err)
	}

	switch event.Type {
	case domain.EventSearch:
		query := strings.ToLower(strings.TrimSpace(event.Query))
		if query == "" {
			return nil
		}
		if err := c.Store.IncrementQuery(ctx, day, query); err != nil {
			return fmt.Errorf("rank query: %w", err)
		}
	case domain.EventNearby:
		if event.Latitude == 0 && event.Longitude == 0 {
			return nil
		}
		cell := geohash.EncodeWithPrecision(event.Latitude, event.Longitude, c.Precision)
		if err := c.Store.IncrementCell(ctx, day, cell); err != nil {
			return fmt.Errorf("rank cell: %w", err)
		}
	}
	return nil
}

func (c *Consumer) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}
