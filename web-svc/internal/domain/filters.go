package domain

import (
	"errors"
	"slices"
	"strings"
)

var (
	ErrInvalidRatingRange = errors.New("rating range must satisfy 0 <= min <= max <= 5")
	ErrInvalidPriceTier   = errors.New("price tiers must be between 1 and 4")
	ErrUnknownSortMode    = errors.New("unknown sort mode")
)

type SortMode string

const (
	SortRating          SortMode = "rating"
	SortPrice           SortMode = "price"
	SortDistance        SortMode = "distance"
	SortRecommendations SortMode = "recommendations"
)

func ParseSortMode(s string) (SortMode, error) {
	switch mode := SortMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case SortRating, SortPrice, SortDistance, SortRecommendations:
		return mode, nil
	}
	return "", ErrUnknownSortMode
}

type RatingRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r RatingRange) Contains(rating float64) bool {
	return r.Min <= rating && rating <= r.Max
}

type FilterState struct {
	OpenNow      bool        `json:"open_now"`
	PriceTiers   []int       `json:"price_tiers"`
	CuisineTypes []string    `json:"cuisine_types"`
	RatingRange  RatingRange `json:"rating_range"`
	Sort         SortMode    `json:"sort"`
}

func DefaultFilters() FilterState {
	return FilterState{
		PriceTiers:   []int{},
		CuisineTypes: []string{},
		RatingRange:  RatingRange{Min: 4, Max: 5},
		Sort:         SortRating,
	}
}

func (f FilterState) Validate() error {
	r := f.RatingRange
	if r.Min < 0 || r.Max > 5 || r.Min > r.Max {
		return ErrInvalidRatingRange
	}
	for _, tier := range f.PriceTiers {
		if tier < 1 || tier > 4 {
			return ErrInvalidPriceTier
		}
	}
	if _, err := ParseSortMode(string(f.Sort)); err != nil {
		return err
	}
	return nil
}

// Normalize turns the tier and cuisine lists into sorted sets.
func (f FilterState) Normalize() FilterState {
	out := f.Clone()
	if out.PriceTiers == nil {
		out.PriceTiers = []int{}
	}
	slices.Sort(out.PriceTiers)
	out.PriceTiers = slices.Compact(out.PriceTiers)

	cuisines := make([]string, 0, len(out.CuisineTypes))
	for _, c := range out.CuisineTypes {
		if c = strings.TrimSpace(c); c != "" {
			cuisines = append(cuisines, c)
		}
	}
	slices.Sort(cuisines)
	out.CuisineTypes = slices.Compact(cuisines)

	if mode, err := ParseSortMode(string(out.Sort)); err == nil {
		out.Sort = mode
	}
	return out
}

func (f FilterState) Clone() FilterState {
	out := f
	out.PriceTiers = slices.Clone(f.PriceTiers)
	out.CuisineTypes = slices.Clone(f.CuisineTypes)
	return out
}

func (f FilterState) HasPriceTier(p Place) bool {
	if len(f.PriceTiers) == 0 {
		return true
	}
	return p.PriceCategory != nil && slices.Contains(f.PriceTiers, *p.PriceCategory)
}

func (f FilterState) HasCuisine(p Place) bool {
	if len(f.CuisineTypes) == 0 {
		return true
	}
	for _, c := range f.CuisineTypes {
		if strings.EqualFold(c, p.CuisineType) {
			return true
		}
	}
	return false
}
