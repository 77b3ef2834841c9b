package service

import (
	"context"

	"restaurant-finder/web-svc/internal/domain"
)

type FinderServiceInterface interface {
	CreateSession(ctx context.Context, opts SessionOptions) (View, error)
	View(ctx context.Context, id string) (View, error)
	EndSession(ctx context.Context, id string) error
	Input(ctx context.Context, id, query string) (View, error)
	Select(ctx context.Context, id string, index int) (View, error)
	SetRadius(ctx context.Context, id string, radiusKm int) (View, error)
	UpdateFilters(ctx context.Context, id string, filters domain.FilterState) (View, error)
	SetSort(ctx context.Context, id string, mode domain.SortMode) (View, error)
	SendChat(ctx context.Context, id, message string) (View, error)
	Reset(ctx context.Context, id string) (View, error)
	ShareLink(ctx context.Context, id string) (string, error)
	ShareQR(ctx context.Context, id string) ([]byte, error)
	Subscribe(ctx context.Context, id string) (<-chan View, func(), error)
	Heatmap(ctx context.Context) ([]domain.HeatmapCell, error)
}

// Backend is the restaurant API the finder consumes.
type Backend interface {
	Search(ctx context.Context, query string) ([]domain.SearchSuggestion, error)
	SearchNearby(ctx context.Context, lat, lon float64, radiusKm int) ([]domain.Place, error)
	RestaurantLocations(ctx context.Context) ([]domain.Place, error)
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error)
	SetupChat(ctx context.Context) error
	ResetChat(ctx context.Context) error
}

type SuggestionCache interface {
	SuggestionKey(query string) string
	GetSuggestions(ctx context.Context, key string) ([]domain.SearchSuggestion, bool, error)
	SetSuggestions(ctx context.Context, key string, suggestions []domain.SearchSuggestion) error
}

type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, id string, state domain.AppState) error
	LoadSnapshot(ctx context.Context, id string) (*domain.AppState, bool, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, event domain.InteractionEvent) error
}

type QRGenerator interface {
	Generate(link string) ([]byte, error)
}

var _ FinderServiceInterface = (*FinderService)(nil)
