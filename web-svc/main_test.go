package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant-finder/config"
	"restaurant-finder/web-svc/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const nearbyJSON = `[
	{"id": 1, "name": "Bouchon", "latitude": 45.761, "longitude": 4.831, "google_rating": 4.6, "priceCategory": 2, "type": "Lyonnaise", "distinctions": 1},
	{"id": "ChIJ2", "name": "Trattoria", "latitude": 45.765, "longitude": 4.84, "google_rating": 4.2, "type": "Italian", "distinctions": -1},
	{"id": 3, "name": "Snack", "latitude": 45.77, "longitude": 4.85, "google_rating": 3.1}
]`

// fakeBackend answers the restaurant API endpoints with canned data.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"geometry":{"coordinates":[2.35,48.85]},"properties":{"name":"Paris","country":"France"}}]`))
	})
	mux.HandleFunc("/search_nearby", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nearbyJSON))
	})
	mux.HandleFunc("/restaurant_locations", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nearbyJSON))
	})
	mux.HandleFunc("/setup_chatbot", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/reset_chatbot", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/chatbot", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message     string            `json:"message"`
			Restaurants []json.RawMessage `json:"restaurants"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Restaurants) != 3 {
			http.Error(w, "bad chat request", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"response":"Try the Trattoria.","recommendations":[{"id":"ChIJ2","name":"Trattoria"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(backendURL, redisAddr string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{PublicURL: "https://finder.example"},
		Backend: config.BackendConfig{URL: backendURL, Timeout: 2 * time.Second},
		Redis: config.RedisConfig{
			Enabled:       redisAddr != "",
			Address:       redisAddr,
			SnapshotTTL:   time.Hour,
			SuggestionTTL: time.Minute,
		},
		Session: config.SessionConfig{
			Debounce:        10 * time.Millisecond,
			MinQueryLength:  3,
			DefaultRadiusKm: 10,
			MinRadiusKm:     1,
			MaxRadiusKm:     50,
			IdleTTL:         time.Minute,
		},
		Heatmap: config.HeatmapConfig{Precision: 4},
	}
}

func startApp(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	srv := httptest.NewServer(a.handler)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, url, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// TestSessionFlow drives a session through the HTTP API against a fake backend.
func TestSessionFlow(t *testing.T) {
	mr := miniredis.RunT(t)
	backend := fakeBackend(t)
	srv := startApp(t, testConfig(backend.URL, mr.Addr()))

	var view service.View
	code := call(t, "POST", srv.URL+"/api/sessions", map[string]interface{}{
		"origin":    map[string]float64{"latitude": 45.76, "longitude": 4.83},
		"radius_km": 5,
	}, &view)
	require.Equal(t, http.StatusCreated, code)
	require.NotEmpty(t, view.SessionID)
	assert.True(t, view.ChatAvailable)
	require.Len(t, view.Cards, 2)
	assert.Equal(t, "Bouchon", view.Cards[0].Name)
	assert.Equal(t, "✿", view.Cards[0].Distinctions)
	assert.Equal(t, "$$$", view.Cards[1].Price)
	assert.True(t, mr.Exists("session:"+view.SessionID))

	base := srv.URL + "/api/sessions/" + view.SessionID

	code = call(t, "POST", base+"/chat", map[string]string{"message": "pasta?"}, &view)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, view.Cards, 1)
	assert.Equal(t, "Trattoria", view.Cards[0].Name)
	assert.True(t, view.Cards[0].Recommended)
	require.Len(t, view.Transcript, 2)

	var share map[string]string
	require.Equal(t, http.StatusOK, call(t, "GET", base+"/share", nil, &share))
	assert.Equal(t, "https://finder.example/?lat=45.760000&lon=4.830000&radius=5&sort=recommendations", share["url"])

	require.Equal(t, http.StatusAccepted, call(t, "POST", base+"/query", map[string]string{"query": "par"}, nil))
	assert.Eventually(t, func() bool {
		var current service.View
		call(t, "GET", base, nil, &current)
		return len(current.Suggestions) == 1 && current.Suggestions[0].Label == "Paris, France"
	}, 2*time.Second, 20*time.Millisecond)
	assert.True(t, mr.Exists("suggest:par"))

	var cells []map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, "GET", srv.URL+"/api/heatmap", nil, &cells))
	assert.NotEmpty(t, cells)

	require.Equal(t, http.StatusNoContent, call(t, "DELETE", base, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, "GET", base, nil, nil))
	assert.False(t, mr.Exists("session:"+view.SessionID))
}

// TestSessionSurvivesRestart checks that a new process restores a session
// from its Redis snapshot.
func TestSessionSurvivesRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	backend := fakeBackend(t)
	cfg := testConfig(backend.URL, mr.Addr())

	first := startApp(t, cfg)
	var created service.View
	require.Equal(t, http.StatusCreated, call(t, "POST", first.URL+"/api/sessions", map[string]interface{}{
		"origin": map[string]float64{"latitude": 45.76, "longitude": 4.83},
		"sort":   "distance",
	}, &created))

	second := startApp(t, cfg)
	var restored service.View
	require.Equal(t, http.StatusOK, call(t, "GET", second.URL+"/api/sessions/"+created.SessionID, nil, &restored))

	assert.Equal(t, created.SessionID, restored.SessionID)
	assert.Equal(t, "distance", string(restored.Filters.Sort))
	assert.Len(t, restored.Cards, len(created.Cards))
}

// TestWithoutRedis runs with in-memory sessions only.
func TestWithoutRedis(t *testing.T) {
	backend := fakeBackend(t)
	srv := startApp(t, testConfig(backend.URL, ""))

	var view service.View
	require.Equal(t, http.StatusCreated, call(t, "POST", srv.URL+"/api/sessions", nil, &view))
	assert.Empty(t, view.Cards)
	assert.False(t, view.Empty)

	assert.Equal(t, http.StatusConflict, call(t, "GET", srv.URL+"/api/sessions/"+view.SessionID+"/share", nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, "GET", srv.URL+"/api/sessions/unknown", nil, nil))
}
