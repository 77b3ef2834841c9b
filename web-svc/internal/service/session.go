package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"restaurant-finder/web-svc/internal/domain"
	"restaurant-finder/web-svc/internal/metrics"

	"go.uber.org/zap"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSuggestionOutOfRange = errors.New("suggestion index out of range")
	ErrNoOrigin             = errors.New("no location selected yet")
	ErrChatUnavailable      = errors.New("chat is unavailable for this session")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrBackendUnavailable   = errors.New("restaurant backend unavailable")
)

type SessionConfig struct {
	Debounce        time.Duration
	MinQueryLength  int
	DefaultRadiusKm int
	MinRadiusKm     int
	MaxRadiusKm     int
	IdleTTL         time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Debounce:        300 * time.Millisecond,
		MinQueryLength:  3,
		DefaultRadiusKm: 10,
		MinRadiusKm:     1,
		MaxRadiusKm:     50,
		IdleTTL:         30 * time.Minute,
	}
}

// ClampRadius keeps km inside the slider range. Zero selects the default.
func (c SessionConfig) ClampRadius(km int) int {
	if km == 0 {
		km = c.DefaultRadiusKm
	}
	return min(max(km, c.MinRadiusKm), c.MaxRadiusKm)
}

type SessionDeps struct {
	Backend   Backend
	Suggester *Suggester
	Store     SnapshotStore
	Publisher EventPublisher
	Log       *zap.Logger
	Clock     func() time.Time
}

// Session owns the state of one visitor. Every backend response carries the
// sequence number it was issued under and is dropped if a newer request of
// the same kind was issued meanwhile.
type Session struct {
	id   string
	cfg  SessionConfig
	deps SessionDeps
	log  *zap.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	debounce *Debouncer
	setup    sync.Once
	saveMu   sync.Mutex

	mu        sync.Mutex
	state     domain.AppState
	searchSeq uint64
	nearbySeq uint64
	chatEpoch uint64
	lastSeen  time.Time
	subs      map[int]chan View
	nextSub   int
	closed    bool
}

func newSession(id string, state domain.AppState, cfg SessionConfig, deps SessionDeps) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       id,
		cfg:      cfg,
		deps:     deps,
		log:      deps.Log.With(zap.String("session_id", id)),
		ctx:      ctx,
		cancel:   cancel,
		debounce: NewDebouncer(cfg.Debounce),
		state:    state,
		subs:     make(map[int]chan View),
	}
	s.lastSeen = s.now()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) now() time.Time {
	if s.deps.Clock != nil {
		return s.deps.Clock()
	}
	return time.Now()
}

// touch must be called with s.mu held.
func (s *Session) touch() {
	s.lastSeen = s.now()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildView(s.id, s.state, s.now())
}

func (s *Session) Snapshot() domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Setup initialises the backend chat session once. On failure chat stays hidden.
func (s *Session) Setup(ctx context.Context) {
	s.setup.Do(func() {
		err := s.deps.Backend.SetupChat(ctx)
		if err != nil {
			s.log.Warn("chat setup failed", zap.Error(err))
		}

		s.mu.Lock()
		s.state.ChatAvailable = err == nil
		s.mu.Unlock()
		s.changed()
	})
}

// Input records a keystroke. Short queries clear suggestions at once, longer
// ones are looked up after the debounce window.
func (s *Session) Input(query string) {
	s.mu.Lock()
	s.touch()
	s.state.Query = query
	s.searchSeq++
	seq := s.searchSeq

	if utf8.RuneCountInString(query) < s.cfg.MinQueryLength {
		s.debounce.Cancel()
		s.state.Suggestions = nil
		s.mu.Unlock()
		s.changed()
		return
	}

	s.debounce.Trigger(func() { s.runSearch(seq, query) })
	s.mu.Unlock()
}

func (s *Session) runSearch(seq uint64, query string) {
	metrics.DebouncedQueries.Inc()
	suggestions, err := s.deps.Suggester.Suggest(s.ctx, query)

	s.mu.Lock()
	if seq != s.searchSeq {
		s.mu.Unlock()
		metrics.StaleResponses.WithLabelValues("search").Inc()
		s.log.Debug("dropping stale suggestions", zap.String("query", query))
		return
	}
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("suggestion lookup failed", zap.String("query", query), zap.Error(err))
		return
	}
	s.state.Suggestions = suggestions
	s.mu.Unlock()

	s.changed()
	s.publish(domain.InteractionEvent{Type: domain.EventSearch, Query: query, Results: len(suggestions)})
}

// SelectSuggestion makes the chosen suggestion the origin and fetches places around it.
func (s *Session) SelectSuggestion(ctx context.Context, index int) error {
	s.mu.Lock()
	s.touch()
	if index < 0 || index >= len(s.state.Suggestions) {
		s.mu.Unlock()
		return ErrSuggestionOutOfRange
	}
	chosen := s.state.Suggestions[index]
	origin := chosen.Coordinate()
	s.state.Origin = &origin
	s.state.Query = chosen.Name
	s.state.Suggestions = nil
	s.searchSeq++
	s.debounce.Cancel()
	radius := s.state.RadiusKm
	s.mu.Unlock()

	s.changed()
	s.fetchNearby(ctx, origin, radius)
	return nil
}

// SetRadius clamps km to the allowed range and refetches when an origin is known.
func (s *Session) SetRadius(ctx context.Context, km int) {
	s.mu.Lock()
	s.touch()
	s.state.RadiusKm = s.cfg.ClampRadius(km)
	radius := s.state.RadiusKm
	var origin *domain.Coordinate
	if s.state.Origin != nil {
		o := *s.state.Origin
		origin = &o
	}
	s.mu.Unlock()

	s.changed()
	if origin != nil {
		s.fetchNearby(ctx, *origin, radius)
	}
}

func (s *Session) UpdateFilters(filters domain.FilterState) error {
	if err := filters.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.touch()
	s.state.Filters = filters.Normalize()
	s.mu.Unlock()

	s.changed()
	return nil
}

func (s *Session) SetSort(mode domain.SortMode) error {
	parsed, err := domain.ParseSortMode(string(mode))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.touch()
	s.state.Filters.Sort = parsed
	s.mu.Unlock()

	s.changed()
	return nil
}

// fetchNearby replaces the place list. A successful fetch forgets earlier
// chat recommendations and leaves recommendation sort mode.
func (s *Session) fetchNearby(ctx context.Context, origin domain.Coordinate, radiusKm int) {
	s.mu.Lock()
	s.nearbySeq++
	seq := s.nearbySeq
	s.mu.Unlock()

	places, err := s.deps.Backend.SearchNearby(ctx, origin.Latitude, origin.Longitude, radiusKm)

	s.mu.Lock()
	if seq != s.nearbySeq {
		s.mu.Unlock()
		metrics.StaleResponses.WithLabelValues("nearby").Inc()
		s.log.Debug("dropping stale nearby places", zap.Int("radius_km", radiusKm))
		return
	}
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("nearby search failed",
			zap.Float64("lat", origin.Latitude),
			zap.Float64("lon", origin.Longitude),
			zap.Int("radius_km", radiusKm),
			zap.Error(err))
		return
	}
	s.state.Places = places
	s.state.Recommendations = nil
	if s.state.Filters.Sort == domain.SortRecommendations {
		s.state.Filters.Sort = domain.SortRating
	}
	s.mu.Unlock()

	s.changed()
	s.publish(domain.InteractionEvent{
		Type:      domain.EventNearby,
		Latitude:  origin.Latitude,
		Longitude: origin.Longitude,
		RadiusKm:  radiusKm,
		Results:   len(places),
	})
}

// SendChat appends the user message before asking the backend, so the
// message stays in the transcript even when the call fails.
func (s *Session) SendChat(ctx context.Context, message string) error {
	text := strings.TrimSpace(message)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	s.touch()
	if !s.state.ChatAvailable {
		s.mu.Unlock()
		return ErrChatUnavailable
	}
	s.state.Transcript = append(s.state.Transcript, domain.ChatMessage{Speaker: domain.SpeakerUser, Text: text})
	ids := make([]domain.PlaceID, 0, len(s.state.Places))
	for _, p := range s.state.Places {
		ids = append(ids, p.ID)
	}
	epoch := s.chatEpoch
	s.mu.Unlock()
	s.changed()

	reply, err := s.deps.Backend.Chat(ctx, domain.ChatRequest{Message: text, Restaurants: ids})
	if err != nil {
		s.log.Warn("chat request failed", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	if epoch != s.chatEpoch {
		s.mu.Unlock()
		metrics.StaleResponses.WithLabelValues("chat").Inc()
		return nil
	}
	if reply.Response != "" {
		s.state.Transcript = append(s.state.Transcript, domain.ChatMessage{Speaker: domain.SpeakerBot, Text: reply.Response})
	}
	if len(reply.Recommendations) > 0 {
		recommended := make([]domain.PlaceID, 0, len(reply.Recommendations))
		for _, p := range reply.Recommendations {
			recommended = append(recommended, p.ID)
		}
		s.state.Recommendations = recommended
		s.state.Filters.Sort = domain.SortRecommendations
	}
	s.mu.Unlock()

	s.changed()
	s.publish(domain.InteractionEvent{Type: domain.EventChat, Results: len(reply.Recommendations)})
	return nil
}

// Reset clears the conversation and filters, tells the backend to forget the
// chat, and refetches places for the current origin.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	s.touch()
	s.state.Transcript = nil
	s.state.Recommendations = nil
	s.state.Filters = domain.DefaultFilters()
	s.chatEpoch++
	radius := s.state.RadiusKm
	var origin *domain.Coordinate
	if s.state.Origin != nil {
		o := *s.state.Origin
		origin = &o
	}
	s.mu.Unlock()
	s.changed()

	if err := s.deps.Backend.ResetChat(ctx); err != nil {
		s.log.Warn("chat reset failed", zap.Error(err))
	}
	if origin != nil {
		s.fetchNearby(ctx, *origin, radius)
	}
	s.publish(domain.InteractionEvent{Type: domain.EventReset})
}

// ShareLink builds a deep link that recreates the current search.
func (s *Session) ShareLink(baseURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Origin == nil {
		return "", ErrNoOrigin
	}
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(s.state.Origin.Latitude, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(s.state.Origin.Longitude, 'f', 6, 64))
	q.Set("radius", strconv.Itoa(s.state.RadiusKm))
	q.Set("sort", string(s.state.Filters.Sort))
	return strings.TrimRight(baseURL, "/") + "/?" + q.Encode(), nil
}

// Subscribe returns a channel that always holds the newest view. Older
// undelivered views are replaced.
func (s *Session) Subscribe() (<-chan View, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan View, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	key := s.nextSub
	s.nextSub++
	s.subs[key] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[key]; ok {
			delete(s.subs, key)
			close(c)
		}
	}
}

func (s *Session) idleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Close stops pending work and ends all subscriptions.
func (s *Session) Close() {
	s.debounce.Cancel()
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, ch := range s.subs {
		delete(s.subs, key)
		close(ch)
	}
}

// changed broadcasts the current view and persists the state. Callers must
// not hold s.mu.
func (s *Session) changed() {
	s.mu.Lock()
	if len(s.subs) > 0 {
		view := BuildView(s.id, s.state, s.now())
		for _, ch := range s.subs {
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- view:
			default:
			}
		}
	}
	s.mu.Unlock()

	s.persist()
}

func (s *Session) persist() {
	if s.deps.Store == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.deps.Store.SaveSnapshot(s.ctx, s.id, s.Snapshot()); err != nil {
		s.log.Warn("saving session snapshot failed", zap.Error(err))
	}
}

func (s *Session) publish(event domain.InteractionEvent) {
	if s.deps.Publisher == nil {
		return
	}
	event.SessionID = s.id
	event.Timestamp = s.now()
	if err := s.deps.Publisher.PublishEvent(s.ctx, event); err != nil {
		s.log.Warn("publishing interaction event failed", zap.String("type", event.Type), zap.Error(err))
	}
}
