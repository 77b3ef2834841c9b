package service

import (
	"cmp"
	"slices"

	"restaurant-finder/web-svc/internal/domain"

	"github.com/mmcloughlin/geohash"
)

const DefaultHeatmapPrecision = 5

// BuildHeatmap buckets places into geohash cells of the given precision.
// Intensity is the cell count relative to the busiest cell.
func BuildHeatmap(places []domain.Place, precision uint) []domain.HeatmapCell {
	if precision == 0 || precision > 12 {
		precision = DefaultHeatmapPrecision
	}

	counts := make(map[string]int)
	for _, p := range places {
		counts[geohash.EncodeWithPrecision(p.Latitude, p.Longitude, precision)]++
	}

	busiest := 0
	for _, n := range counts {
		busiest = max(busiest, n)
	}

	cells := make([]domain.HeatmapCell, 0, len(counts))
	for hash, n := range counts {
		lat, lon := geohash.DecodeCenter(hash)
		cells = append(cells, domain.HeatmapCell{
			Geohash:   hash,
			Latitude:  lat,
			Longitude: lon,
			Count:     n,
			Intensity: float64(n) / float64(busiest),
		})
	}

	slices.SortFunc(cells, func(a, b domain.HeatmapCell) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Geohash, b.Geohash)
	})
	return cells
}
