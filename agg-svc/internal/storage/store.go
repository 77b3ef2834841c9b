package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"restaurant-finder/agg-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Store keeps per-day counters in Redis. Every key expires ttl after its
// last write.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func eventsKey(day string) string  { return fmt.Sprintf("agg:events:%s", day) }
func queriesKey(day string) string { return fmt.Sprintf("agg:queries:%s", day) }
func cellsKey(day string) string   { return fmt.Sprintf("agg:cells:%s", day) }

func (s *Store) IncrementEvent(ctx context.Context, day, eventType string) error {
	key := eventsKey(day)
	pipe := s.rdb.TxPipeline()
	pipe.HIncrBy(ctx, key, eventType, 1)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) IncrementQuery(ctx context.Context, day, query string) error {
	return s.incrementMember(ctx, queriesKey(day), query)
}

func (s *Store) IncrementCell(ctx context.Context, day, cell string) error {
	return s.incrementMember(ctx, cellsKey(day), cell)
}

func (s *Store) incrementMember(ctx context.Context, key, member string) error {
	pipe := s.rdb.TxPipeline()
	pipe.ZIncrBy(ctx, key, 1, member)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) EventCounts(ctx context.Context, day string) (map[string]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, eventsKey(day)).Result()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(raw))
	for eventType, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("counter %s for %s: %w", eventType, day, err)
		}
		counts[eventType] = n
	}
	return counts, nil
}

func (s *Store) TopQueries(ctx context.Context, day string, limit int) ([]domain.Ranked, error) {
	return s.top(ctx, queriesKey(day), limit)
}

func (s *Store) TopCells(ctx context.Context, day string, limit int) ([]domain.Ranked, error) {
	return s.top(ctx, cellsKey(day), limit)
}

func (s *Store) top(ctx context.Context, key string, limit int) ([]domain.Ranked, error) {
	result, err := s.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	ranked := make([]domain.Ranked, 0, len(result))
	for _, z := range result {
		member, _ := z.Member.(string)
		ranked = append(ranked, domain.Ranked{Member: member, Count: int64(z.Score)})
	}
	return ranked, nil
}
