package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"restaurant-finder/web-svc/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day time.Weekday, hour, minute int) time.Time {
	// 2024-06-02 is a Sunday.
	return time.Date(2024, 6, 2+int(day), hour, minute, 0, 0, time.UTC)
}

func period(openDay, openHour, openMinute, closeDay, closeHour, closeMinute int) domain.OpeningPeriod {
	return domain.OpeningPeriod{
		Open:  domain.TimePoint{Day: openDay, Hour: openHour, Minute: openMinute},
		Close: &domain.TimePoint{Day: closeDay, Hour: closeHour, Minute: closeMinute},
	}
}

func TestIsOpen(t *testing.T) {
	lunch := period(1, 11, 30, 1, 14, 0)
	overnight := period(5, 18, 0, 6, 2, 0)

	tests := []struct {
		name     string
		periods  []domain.OpeningPeriod
		at       time.Time
		expected bool
	}{
		{name: "inside", periods: []domain.OpeningPeriod{lunch}, at: at(time.Monday, 12, 0), expected: true},
		{name: "opening_minute_inclusive", periods: []domain.OpeningPeriod{lunch}, at: at(time.Monday, 11, 30), expected: true},
		{name: "closing_minute_inclusive", periods: []domain.OpeningPeriod{lunch}, at: at(time.Monday, 14, 0), expected: true},
		{name: "before_opening", periods: []domain.OpeningPeriod{lunch}, at: at(time.Monday, 11, 29), expected: false},
		{name: "after_closing", periods: []domain.OpeningPeriod{lunch}, at: at(time.Monday, 14, 1), expected: false},
		{name: "other_day", periods: []domain.OpeningPeriod{lunch}, at: at(time.Tuesday, 12, 0), expected: false},
		{name: "no_periods", periods: nil, at: at(time.Monday, 12, 0), expected: false},
		{name: "overnight_evening", periods: []domain.OpeningPeriod{overnight}, at: at(time.Friday, 23, 0), expected: true},
		{name: "overnight_after_midnight", periods: []domain.OpeningPeriod{overnight}, at: at(time.Saturday, 1, 30), expected: true},
		{name: "overnight_next_afternoon", periods: []domain.OpeningPeriod{overnight}, at: at(time.Saturday, 15, 0), expected: false},
		{name: "always_open", periods: []domain.OpeningPeriod{{Open: domain.TimePoint{Day: 0}}}, at: at(time.Wednesday, 3, 0), expected: true},
		{
			name:     "second_period_matches",
			periods:  []domain.OpeningPeriod{lunch, period(1, 19, 0, 1, 22, 0)},
			at:       at(time.Monday, 20, 15),
			expected: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, domain.IsOpen(testCase.periods, testCase.at))
		})
	}
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 0, domain.Haversine(48.85, 2.35, 48.85, 2.35), 1e-9)
	// One degree of longitude on the equator.
	assert.InDelta(t, 111.195, domain.Haversine(0, 0, 0, 1), 0.01)
	// Paris to London.
	assert.InDelta(t, 343.5, domain.Haversine(48.8566, 2.3522, 51.5074, -0.1278), 1.0)
	assert.Less(t, domain.Haversine(0, 0, 0, 1), domain.Haversine(0, 0, 0, 2))
}

func TestFilterState_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(f *domain.FilterState)
		expectedError error
	}{
		{name: "defaults", mutate: func(f *domain.FilterState) {}},
		{name: "equal_bounds", mutate: func(f *domain.FilterState) { f.RatingRange = domain.RatingRange{Min: 3, Max: 3} }},
		{name: "min_above_max", mutate: func(f *domain.FilterState) { f.RatingRange = domain.RatingRange{Min: 4.5, Max: 4} }, expectedError: domain.ErrInvalidRatingRange},
		{name: "max_above_five", mutate: func(f *domain.FilterState) { f.RatingRange.Max = 6 }, expectedError: domain.ErrInvalidRatingRange},
		{name: "negative_min", mutate: func(f *domain.FilterState) { f.RatingRange.Min = -1 }, expectedError: domain.ErrInvalidRatingRange},
		{name: "bad_price_tier", mutate: func(f *domain.FilterState) { f.PriceTiers = []int{2, 5} }, expectedError: domain.ErrInvalidPriceTier},
		{name: "bad_sort", mutate: func(f *domain.FilterState) { f.Sort = "alphabetical" }, expectedError: domain.ErrUnknownSortMode},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			filters := domain.DefaultFilters()
			testCase.mutate(&filters)
			assert.ErrorIs(t, filters.Validate(), testCase.expectedError)
		})
	}
}

func TestFilterState_Normalize(t *testing.T) {
	filters := domain.FilterState{
		PriceTiers:   []int{3, 1, 3},
		CuisineTypes: []string{" thai", "italian", "", "thai"},
		RatingRange:  domain.RatingRange{Min: 1, Max: 5},
		Sort:         "Price",
	}

	normalized := filters.Normalize()

	assert.Equal(t, []int{1, 3}, normalized.PriceTiers)
	assert.Equal(t, []string{"italian", "thai"}, normalized.CuisineTypes)
	assert.Equal(t, domain.SortPrice, normalized.Sort)
	assert.Equal(t, []int{3, 1, 3}, filters.PriceTiers)
}

func TestPlace_DecodeBackendPayload(t *testing.T) {
	payload := `[
		{"id":"ChIJ1","name":"Chez Nous","latitude":48.1,"longitude":2.2,"google_rating":4.6,"priceCategory":2,
		 "type":"French","distinctions":1,"google_address":"1 Rue","opening_periods":[{"open":{"day":1,"hour":9,"minute":0},"close":{"day":1,"hour":17,"minute":0}}]},
		{"id":42,"name":"No Rating","latitude":0,"longitude":0,"distinctions":-1}
	]`

	var places []domain.Place
	require.NoError(t, json.Unmarshal([]byte(payload), &places))
	require.Len(t, places, 2)

	assert.Equal(t, domain.PlaceID("ChIJ1"), places[0].ID)
	assert.Equal(t, 4.6, places[0].RatingOrZero())
	assert.Equal(t, 2, places[0].PriceOrZero())
	assert.Len(t, places[0].OpeningPeriods, 1)

	assert.Equal(t, domain.PlaceID("42"), places[1].ID)
	assert.Nil(t, places[1].Rating)
	assert.Equal(t, 0.0, places[1].RatingOrZero())
	assert.Equal(t, 0, places[1].PriceOrZero())

	ids, err := json.Marshal([]domain.PlaceID{places[0].ID, places[1].ID})
	require.NoError(t, err)
	assert.JSONEq(t, `["ChIJ1", 42]`, string(ids))
}

func TestGeocodingFeature_Suggestion(t *testing.T) {
	payload := `[
		{"geometry":{"coordinates":[2.35,48.85]},"properties":{"name":"Paris","country":"France"}},
		{"geometry":{"coordinates":[-0.12,51.5]},"properties":{"name":"Soho","city":"London","country":"United Kingdom"}},
		{"geometry":{"coordinates":[]},"properties":{"name":"Broken"}}
	]`

	var features []domain.GeocodingFeature
	require.NoError(t, json.Unmarshal([]byte(payload), &features))

	paris, ok := features[0].Suggestion()
	require.True(t, ok)
	assert.Equal(t, domain.SearchSuggestion{Name: "Paris", Latitude: 48.85, Longitude: 2.35, Locality: "France"}, paris)

	soho, ok := features[1].Suggestion()
	require.True(t, ok)
	assert.Equal(t, "London", soho.Locality)

	_, ok = features[2].Suggestion()
	assert.False(t, ok)
}

func TestAppState_Clone(t *testing.T) {
	state := domain.AppState{
		Origin:  &domain.Coordinate{Latitude: 1, Longitude: 2},
		Places:  []domain.Place{{ID: "a"}},
		Filters: domain.DefaultFilters(),
	}

	clone := state.Clone()
	clone.Origin.Latitude = 9
	clone.Places[0].ID = "b"
	clone.Filters.PriceTiers = append(clone.Filters.PriceTiers, 2)

	assert.Equal(t, 1.0, state.Origin.Latitude)
	assert.Equal(t, domain.PlaceID("a"), state.Places[0].ID)
	assert.Empty(t, state.Filters.PriceTiers)
}
