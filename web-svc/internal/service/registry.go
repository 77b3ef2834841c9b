package service

import (
	"context"
	"sync"
	"time"

	"restaurant-finder/web-svc/internal/domain"
	"restaurant-finder/web-svc/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionOptions struct {
	Origin   *domain.Coordinate `json:"origin,omitempty"`
	RadiusKm int                `json:"radius_km,omitempty"`
	Sort     domain.SortMode    `json:"sort,omitempty"`
}

// Registry holds live sessions and restores evicted ones from the snapshot store.
type Registry struct {
	cfg   SessionConfig
	deps  SessionDeps
	newID func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(cfg SessionConfig, deps SessionDeps) *Registry {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Suggester == nil {
		deps.Suggester = NewSuggester(deps.Backend, nil, deps.Log)
	}
	return &Registry{
		cfg:      cfg,
		deps:     deps,
		newID:    uuid.NewString,
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Create(ctx context.Context, opts SessionOptions) (*Session, error) {
	filters := domain.DefaultFilters()
	if opts.Sort != "" {
		mode, err := domain.ParseSortMode(string(opts.Sort))
		if err != nil {
			return nil, err
		}
		filters.Sort = mode
	}

	state := domain.AppState{
		RadiusKm: r.cfg.ClampRadius(opts.RadiusKm),
		Filters:  filters,
	}
	if opts.Origin != nil {
		origin := *opts.Origin
		state.Origin = &origin
	}

	s := newSession(r.newID(), state, r.cfg, r.deps)
	r.add(s)
	s.publish(domain.InteractionEvent{Type: domain.EventCreated})

	s.Setup(ctx)
	if state.Origin != nil {
		s.fetchNearby(ctx, *state.Origin, state.RadiusKm)
	}
	return s, nil
}

func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	if r.deps.Store == nil {
		return nil, ErrSessionNotFound
	}
	state, found, err := r.deps.Store.LoadSnapshot(ctx, id)
	if err != nil {
		r.deps.Log.Warn("loading session snapshot failed", zap.String("session_id", id), zap.Error(err))
		return nil, ErrSessionNotFound
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	restored := newSession(id, *state, r.cfg, r.deps)
	restored.setup.Do(func() {})

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[id]; ok {
		restored.Close()
		return existing, nil
	}
	r.sessions[id] = restored
	metrics.ActiveSessions.Inc()
	r.deps.Log.Info("session restored", zap.String("session_id", id))
	return restored, nil
}

func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		metrics.ActiveSessions.Dec()
	}
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	if r.deps.Store != nil {
		if err := r.deps.Store.DeleteSnapshot(ctx, id); err != nil {
			r.deps.Log.Warn("deleting session snapshot failed", zap.String("session_id", id), zap.Error(err))
		}
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Sweep evicts sessions idle for longer than the configured TTL. Their
// snapshots stay in the store until they expire there.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.idleFor(now) > r.cfg.IdleTTL {
			idle = append(idle, s)
			delete(r.sessions, id)
			metrics.ActiveSessions.Dec()
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				r.deps.Log.Info("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		metrics.ActiveSessions.Dec()
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	metrics.ActiveSessions.Inc()
	r.deps.Log.Info("session created", zap.String("session_id", s.ID()))
}
