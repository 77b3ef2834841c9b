package service

import (
	"context"
	"errors"
	"time"

	"restaurant-finder/agg-svc/internal/domain"

	"github.com/mmcloughlin/geohash"
)

var ErrInvalidDay = errors.New("day must look like 2006-01-02")

const maxTrendsLimit = 100

type TrendsService struct {
	Store        StoreInterface
	DefaultLimit int
	now          func() time.Time
}

func NewTrendsService(store StoreInterface, defaultLimit int) *TrendsService {
	return &TrendsService{Store: store, DefaultLimit: defaultLimit, now: time.Now}
}

// Trends reports the counters of one day, today when day is empty. A limit
// outside 1-100 falls back to the default.
func (s *TrendsService) Trends(ctx context.Context, day string, limit int) (domain.Trends, error) {
	if day == "" {
		now := time.Now
		if s.now != nil {
			now = s.now
		}
		day = now().UTC().Format(domain.DayLayout)
	} else if _, err := time.Parse(domain.DayLayout, day); err != nil {
		return domain.Trends{}, ErrInvalidDay
	}
	if limit <= 0 || limit > maxTrendsLimit {
		limit = s.DefaultLimit
	}

	events, err := s.Store.EventCounts(ctx, day)
	if err != nil {
		return domain.Trends{}, err
	}
	queries, err := s.Store.TopQueries(ctx, day, limit)
	if err != nil {
		return domain.Trends{}, err
	}
	cells, err := s.Store.TopCells(ctx, day, limit)
	if err != nil {
		return domain.Trends{}, err
	}

	hotspots := make([]domain.Hotspot, 0, len(cells))
	for _, cell := range cells {
		lat, lon := geohash.DecodeCenter(cell.Member)
		hotspots = append(hotspots, domain.Hotspot{
			Geohash:   cell.Member,
			Latitude:  lat,
			Longitude: lon,
			Count:     cell.Count,
		})
	}

	return domain.Trends{
		Day:        day,
		Events:     events,
		TopQueries: queries,
		Hotspots:   hotspots,
	}, nil
}
