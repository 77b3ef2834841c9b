package service

import (
	"context"

	"restaurant-finder/agg-svc/internal/domain"
	"restaurant-finder/agg-svc/internal/storage"

	"github.com/segmentio/kafka-go"
)

type StoreInterface interface {
	IncrementEvent(ctx context.Context, day, eventType string) error
	IncrementQuery(ctx context.Context, day, query string) error
	IncrementCell(ctx context.Context, day, cell string) error
	EventCounts(ctx context.Context, day string) (map[string]int64, error)
	TopQueries(ctx context.Context, day string, limit int) ([]domain.Ranked, error)
	TopCells(ctx context.Context, day string, limit int) ([]domain.Ranked, error)
}

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type ConsumerInterface interface {
	Start(ctx context.Context)
	ProcessEvent(ctx context.Context, event domain.Event) error
}

type TrendsInterface interface {
	Trends(ctx context.Context, day string, limit int) (domain.Trends, error)
}

var (
	_ StoreInterface    = (*storage.Store)(nil)
	_ MessageReader     = (*kafka.Reader)(nil)
	_ ConsumerInterface = (*Consumer)(nil)
	_ TrendsInterface   = (*TrendsService)(nil)
)
