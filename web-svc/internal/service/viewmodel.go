package service

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"restaurant-finder/web-svc/internal/domain"
)

const (
	PlaceholderImage = "https://via.placeholder.com/300x200"
	defaultCuisine   = "Cuisine"
	defaultPriceTier = 3
	distinctionMark  = "✿"
	noRating         = "N/A"
)

type Card struct {
	ID             domain.PlaceID `json:"id"`
	Name           string         `json:"name"`
	Address        string         `json:"address"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Image          string         `json:"image"`
	DirectionsLink string         `json:"directions_link,omitempty"`
	WebsiteURI     string         `json:"website_uri,omitempty"`
	Distinctions   string         `json:"distinctions"`
	Rating         string         `json:"rating"`
	Price          string         `json:"price"`
	Cuisine        string         `json:"cuisine"`
	DistanceKm     *float64       `json:"distance_km,omitempty"`
	Recommended    bool           `json:"recommended,omitempty"`
}

type Marker struct {
	ID        domain.PlaceID `json:"id"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Title     string         `json:"title"`
	Subtitle  string         `json:"subtitle"`
	Rating    string         `json:"rating"`
}

type Circle struct {
	Center       domain.Coordinate `json:"center"`
	RadiusMeters float64           `json:"radius_meters"`
}

type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

type SuggestionItem struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type TranscriptLine struct {
	Speaker domain.Speaker `json:"speaker"`
	HTML    string         `json:"html"`
}

// View is everything a renderer needs to draw one session.
type View struct {
	SessionID      string             `json:"session_id"`
	Query          string             `json:"query"`
	Suggestions    []SuggestionItem   `json:"suggestions"`
	Origin         *domain.Coordinate `json:"origin,omitempty"`
	RadiusKm       int                `json:"radius_km"`
	Filters        domain.FilterState `json:"filters"`
	CuisineOptions []string           `json:"cuisine_options"`
	Cards          []Card             `json:"cards"`
	Markers        []Marker           `json:"markers"`
	Circle         *Circle            `json:"circle,omitempty"`
	Bounds         *Bounds            `json:"bounds,omitempty"`
	Empty          bool               `json:"empty"`
	Transcript     []TranscriptLine   `json:"transcript"`
	ChatAvailable  bool               `json:"chat_available"`
}

// BuildView renders state into a View. It has no side effects.
func BuildView(id string, state domain.AppState, now time.Time) View {
	places := Derive(state.Places, state.Filters, state.Origin, state.Recommendations, now)

	recommended := make(map[domain.PlaceID]bool, len(state.Recommendations))
	for _, rid := range state.Recommendations {
		recommended[rid] = true
	}

	view := View{
		SessionID:      id,
		Query:          state.Query,
		Suggestions:    suggestionItems(state.Suggestions),
		RadiusKm:       state.RadiusKm,
		Filters:        state.Filters.Clone(),
		CuisineOptions: CuisineOptions(state.Places),
		Cards:          make([]Card, 0, len(places)),
		Markers:        make([]Marker, 0, len(places)),
		Transcript:     transcriptLines(state.Transcript),
		ChatAvailable:  state.ChatAvailable,
	}

	if state.Origin != nil {
		origin := *state.Origin
		view.Origin = &origin
		view.Circle = &Circle{Center: origin, RadiusMeters: float64(state.RadiusKm) * 1e3}
	}

	for _, p := range places {
		card := newCard(p, state.Origin)
		card.Recommended = recommended[p.ID]
		view.Cards = append(view.Cards, card)
		view.Markers = append(view.Markers, newMarker(p))
	}

	view.Bounds = markerBounds(view.Markers)
	view.Empty = state.Origin != nil && len(view.Cards) == 0
	return view
}

func newCard(p domain.Place, origin *domain.Coordinate) Card {
	card := Card{
		ID:             p.ID,
		Name:           p.Name,
		Address:        p.Address,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Image:          p.ImageURL,
		DirectionsLink: p.DirectionsLink,
		WebsiteURI:     p.WebsiteURI,
		Distinctions:   DistinctionLabel(p.Distinctions),
		Rating:         RatingLabel(p.Rating),
		Price:          PriceLabel(p.PriceCategory),
		Cuisine:        p.CuisineType,
	}
	if card.Image == "" {
		card.Image = PlaceholderImage
	}
	if card.Cuisine == "" {
		card.Cuisine = defaultCuisine
	}
	if origin != nil {
		d := math.Round(origin.DistanceTo(p.Latitude, p.Longitude)*100) / 100
		card.DistanceKm = &d
	}
	return card
}

func newMarker(p domain.Place) Marker {
	subtitle := p.Location
	if p.CuisineType != "" {
		if subtitle != "" {
			subtitle += " • "
		}
		subtitle += p.CuisineType
	}
	return Marker{
		ID:        p.ID,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Title:     p.Name,
		Subtitle:  subtitle,
		Rating:    "⭐ " + RatingLabel(p.Rating),
	}
}

func markerBounds(markers []Marker) *Bounds {
	if len(markers) == 0 {
		return nil
	}
	b := Bounds{South: markers[0].Latitude, North: markers[0].Latitude, West: markers[0].Longitude, East: markers[0].Longitude}
	for _, m := range markers[1:] {
		b.South = math.Min(b.South, m.Latitude)
		b.North = math.Max(b.North, m.Latitude)
		b.West = math.Min(b.West, m.Longitude)
		b.East = math.Max(b.East, m.Longitude)
	}
	return &b
}

// DistinctionLabel repeats the distinction mark; -1 and other negatives render empty.
func DistinctionLabel(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(distinctionMark, n)
}

func RatingLabel(rating *float64) string {
	if rating == nil || *rating == 0 {
		return noRating
	}
	return strconv.FormatFloat(*rating, 'f', -1, 64)
}

func PriceLabel(category *int) string {
	n := defaultPriceTier
	if category != nil && *category > 0 {
		n = *category
	}
	return strings.Repeat("$", n)
}

func suggestionItems(suggestions []domain.SearchSuggestion) []SuggestionItem {
	items := make([]SuggestionItem, 0, len(suggestions))
	for i, s := range suggestions {
		label := s.Name
		if s.Locality != "" {
			label = fmt.Sprintf("%s, %s", s.Name, s.Locality)
		}
		items = append(items, SuggestionItem{
			Index:     i,
			Name:      s.Name,
			Label:     label,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
		})
	}
	return items
}

func transcriptLines(messages []domain.ChatMessage) []TranscriptLine {
	lines := make([]TranscriptLine, 0, len(messages))
	for _, m := range messages {
		text := html.EscapeString(m.Text)
		if m.Speaker == domain.SpeakerBot {
			text = strings.ReplaceAll(text, "\n", "<br>")
		}
		lines = append(lines, TranscriptLine{Speaker: m.Speaker, HTML: text})
	}
	return lines
}
