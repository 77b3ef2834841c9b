package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"restaurant-finder/web-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores session snapshots and autocomplete results.
type RedisCache struct {
	Client        *redis.Client
	SnapshotTTL   time.Duration
	SuggestionTTL time.Duration
}

func NewRedisCache(client *redis.Client, snapshotTTL, suggestionTTL time.Duration) *RedisCache {
	return &RedisCache{Client: client, SnapshotTTL: snapshotTTL, SuggestionTTL: suggestionTTL}
}

func (c *RedisCache) SessionKey(id string) string {
	return "session:" + id
}

func (c *RedisCache) SuggestionKey(query string) string {
	return "suggest:" + query
}

func (c *RedisCache) SaveSnapshot(ctx context.Context, id string, state domain.AppState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.SessionKey(id), payload, c.SnapshotTTL).Err()
}

func (c *RedisCache) LoadSnapshot(ctx context.Context, id string) (*domain.AppState, bool, error) {
	payload, err := c.Client.Get(ctx, c.SessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var state domain.AppState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, false, err
	}
	return &state, true, nil
}

func (c *RedisCache) DeleteSnapshot(ctx context.Context, id string) error {
	return c.Client.Del(ctx, c.SessionKey(id)).Err()
}

func (c *RedisCache) GetSuggestions(ctx context.Context, key string) ([]domain.SearchSuggestion, bool, error) {
	payload, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var suggestions []domain.SearchSuggestion
	if err := json.Unmarshal(payload, &suggestions); err != nil {
		return nil, false, err
	}
	return suggestions, true, nil
}

func (c *RedisCache) SetSuggestions(ctx context.Context, key string, suggestions []domain.SearchSuggestion) error {
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, payload, c.SuggestionTTL).Err()
}
