package domain

import "time"

// Event types published by web-svc sessions.
const (
	EventSearch  = "search_performed"
	EventNearby  = "nearby_fetched"
	EventChat    = "chat_sent"
	EventReset   = "session_reset"
	EventCreated = "session_created"
)

const DayLayout = "2006-01-02"

// Event is one interaction message read from the events topic.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Query     string    `json:"query,omitempty"`
	Latitude  float64   `json:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty"`
	RadiusKm  int       `json:"radius_km,omitempty"`
	Results   int       `json:"results"`
	Timestamp time.Time `json:"timestamp"`
}

// Day is the UTC calendar day the event counts towards.
func (e Event) Day() string {
	return e.Timestamp.UTC().Format(DayLayout)
}

type Ranked struct {
	Member string `json:"member"`
	Count  int64  `json:"count"`
}

// Hotspot is a geohash cell where visitors looked for places.
type Hotspot struct {
	Geohash   string  `json:"geohash"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int64   `json:"count"`
}

type Trends struct {
	Day        string           `json:"day"`
	Events     map[string]int64 `json:"events"`
	TopQueries []Ranked         `json:"top_queries"`
	Hotspots   []Hotspot        `json:"hotspots"`
}
