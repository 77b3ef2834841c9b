package service

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"restaurant-finder/web-svc/internal/domain"
)

// Derive returns the places to display: sorted by the selected mode, then
// narrowed by open-now, price tier, cuisine and rating range, in that order.
// places is never modified.
func Derive(places []domain.Place, filters domain.FilterState, origin *domain.Coordinate, recommended []domain.PlaceID, now time.Time) []domain.Place {
	sorted := sortPlaces(places, filters.Sort, origin, recommended)

	out := make([]domain.Place, 0, len(sorted))
	for _, p := range sorted {
		if filters.OpenNow && !domain.IsOpen(p.OpeningPeriods, now) {
			continue
		}
		if !filters.HasPriceTier(p) {
			continue
		}
		if !filters.HasCuisine(p) {
			continue
		}
		if !filters.RatingRange.Contains(p.RatingOrZero()) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortPlaces(places []domain.Place, mode domain.SortMode, origin *domain.Coordinate, recommended []domain.PlaceID) []domain.Place {
	if mode == domain.SortRecommendations && len(recommended) > 0 {
		return recommendedOrder(places, recommended)
	}

	sorted := slices.Clone(places)
	switch mode {
	case domain.SortRating:
		slices.SortStableFunc(sorted, func(a, b domain.Place) int {
			return cmp.Compare(b.RatingOrZero(), a.RatingOrZero())
		})
	case domain.SortPrice:
		slices.SortStableFunc(sorted, func(a, b domain.Place) int {
			return cmp.Compare(a.PriceOrZero(), b.PriceOrZero())
		})
	case domain.SortDistance:
		if origin == nil {
			break
		}
		slices.SortStableFunc(sorted, func(a, b domain.Place) int {
			return cmp.Compare(origin.DistanceTo(a.Latitude, a.Longitude), origin.DistanceTo(b.Latitude, b.Longitude))
		})
	}
	return sorted
}

// recommendedOrder resolves ids against places. Unknown and repeated ids are dropped.
func recommendedOrder(places []domain.Place, ids []domain.PlaceID) []domain.Place {
	byID := make(map[domain.PlaceID]domain.Place, len(places))
	for _, p := range places {
		if _, ok := byID[p.ID]; !ok {
			byID[p.ID] = p
		}
	}

	out := make([]domain.Place, 0, len(ids))
	seen := make(map[domain.PlaceID]bool, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, p)
	}
	return out
}

// CuisineOptions lists the distinct cuisine types present in places,
// ignoring case. The first spelling seen is kept.
func CuisineOptions(places []domain.Place) []string {
	out := make([]string, 0)
	for _, p := range places {
		if p.CuisineType == "" {
			continue
		}
		dup := slices.ContainsFunc(out, func(c string) bool { return strings.EqualFold(c, p.CuisineType) })
		if !dup {
			out = append(out, p.CuisineType)
		}
	}
	slices.Sort(out)
	return out
}
