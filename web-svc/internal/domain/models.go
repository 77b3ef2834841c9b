package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// PlaceID keeps the backend identifier verbatim. Numeric and string ids are
// both accepted and written back in the same JSON kind.
type PlaceID string

func (id *PlaceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PlaceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("place id must be a string or a number")
	}
	*id = PlaceID(n.String())
	return nil
}

func (id PlaceID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

type Place struct {
	ID             PlaceID         `json:"id"`
	Name           string          `json:"name"`
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	Rating         *float64        `json:"google_rating,omitempty"`
	PriceCategory  *int            `json:"priceCategory,omitempty"`
	CuisineType    string          `json:"type,omitempty"`
	Distinctions   int             `json:"distinctions"`
	Address        string          `json:"google_address,omitempty"`
	DirectionsLink string          `json:"google_directions_link,omitempty"`
	WebsiteURI     string          `json:"website_uri,omitempty"`
	ImageURL       string          `json:"img,omitempty"`
	Location       string          `json:"location,omitempty"`
	OpeningPeriods []OpeningPeriod `json:"opening_periods,omitempty"`
}

// RatingOrZero treats a missing rating as 0.
func (p Place) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// PriceOrZero treats a missing price category as 0.
func (p Place) PriceOrZero() int {
	if p.PriceCategory == nil {
		return 0
	}
	return *p.PriceCategory
}

type TimePoint struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimePoint) Minutes() int {
	return t.Hour*60 + t.Minute
}

// OpeningPeriod is one open/close pair of a weekly schedule. A nil Close
// means the place never closes.
type OpeningPeriod struct {
	Open  TimePoint  `json:"open"`
	Close *TimePoint `json:"close,omitempty"`
}

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type SearchSuggestion struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Locality  string  `json:"locality,omitempty"`
}

func (s SearchSuggestion) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// GeocodingFeature is one element of the geocoding search response.
type GeocodingFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Name    string `json:"name"`
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"properties"`
}

// Suggestion converts a feature. Features without a [lon, lat] pair are rejected.
func (f GeocodingFeature) Suggestion() (SearchSuggestion, bool) {
	if len(f.Geometry.Coordinates) < 2 {
		return SearchSuggestion{}, false
	}
	locality := f.Properties.City
	if locality == "" {
		locality = f.Properties.Country
	}
	return SearchSuggestion{
		Name:      f.Properties.Name,
		Latitude:  f.Geometry.Coordinates[1],
		Longitude: f.Geometry.Coordinates[0],
		Locality:  locality,
	}, true
}

type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

type ChatMessage struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

type ChatRequest struct {
	Message     string    `json:"message"`
	Restaurants []PlaceID `json:"restaurants"`
}

type ChatReply struct {
	Response        string  `json:"response"`
	Recommendations []Place `json:"recommendations,omitempty"`
}

// AppState is everything one visitor session knows.
type AppState struct {
	Query           string             `json:"query"`
	Suggestions     []SearchSuggestion `json:"suggestions,omitempty"`
	Origin          *Coordinate        `json:"origin,omitempty"`
	RadiusKm        int                `json:"radius_km"`
	Places          []Place            `json:"places,omitempty"`
	Filters         FilterState        `json:"filters"`
	Recommendations []PlaceID          `json:"recommendations,omitempty"`
	Transcript      []ChatMessage      `json:"transcript,omitempty"`
	ChatAvailable   bool               `json:"chat_available"`
}

// Clone returns a copy that shares no slices with s.
func (s AppState) Clone() AppState {
	out := s
	out.Suggestions = append([]SearchSuggestion(nil), s.Suggestions...)
	out.Places = append([]Place(nil), s.Places...)
	out.Recommendations = append([]PlaceID(nil), s.Recommendations...)
	out.Transcript = append([]ChatMessage(nil), s.Transcript...)
	out.Filters = s.Filters.Clone()
	if s.Origin != nil {
		origin := *s.Origin
		out.Origin = &origin
	}
	return out
}

type HeatmapCell struct {
	Geohash   string  `json:"geohash"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
	Intensity float64 `json:"intensity"`
}

const (
	EventSearch  = "search_performed"
	EventNearby  = "nearby_fetched"
	EventChat    = "chat_sent"
	EventReset   = "session_reset"
	EventCreated = "session_created"
)

type InteractionEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Query     string    `json:"query,omitempty"`
	Latitude  float64   `json:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty"`
	RadiusKm  int       `json:"radius_km,omitempty"`
	Results   int       `json:"results"`
	Timestamp time.Time `json:"timestamp"`
}
