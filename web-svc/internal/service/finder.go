package service

import (
	"context"
	"fmt"

	"restaurant-finder/web-svc/internal/domain"
)

// FinderService exposes session operations by session id.
type FinderService struct {
	sessions         *Registry
	backend          Backend
	qr               QRGenerator
	publicURL        string
	heatmapPrecision uint
}

func NewFinderService(sessions *Registry, backend Backend, qr QRGenerator, publicURL string, heatmapPrecision uint) *FinderService {
	return &FinderService{
		sessions:         sessions,
		backend:          backend,
		qr:               qr,
		publicURL:        publicURL,
		heatmapPrecision: heatmapPrecision,
	}
}

func (f *FinderService) CreateSession(ctx context.Context, opts SessionOptions) (View, error) {
	s, err := f.sessions.Create(ctx, opts)
	if err != nil {
		return View{}, err
	}
	return s.View(), nil
}

func (f *FinderService) View(ctx context.Context, id string) (View, error) {
	s, err := f.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.View(), nil
}

func (f *FinderService) EndSession(ctx context.Context, id string) error {
	return f.sessions.Delete(ctx, id)
}

func (f *FinderService) Input(ctx context.Context, id, query string) (View, error) {
	s, err := f.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	s.Input(query)
	return s.View(), nil
}

func (f *FinderService) Select(ctx context.Context, id string, index int) (View, error) {
	s, err := f.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.SelectSuggestion(ctx, index); err != nil {
		return View{}, err
	}
	return s.View(), nil
}

func (f *FinderService) SetRadius(ctx context.Context, id string, radiusKm int) (View, error) {
	s, err := f.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	s.SetRadius(ctx, radiusKm)
	return s.View(), nil
}

func (f *FinderService) UpdateFilters(ctx context.Context, id string, filters domain.FilterState) (View, error) {
	s, err := f.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.UpdateFilters(filters); err != nil {
		return View{}, err
	}
	return s.View(), nil
}

func (f *FinderService) SetSort(ctx context.Context, id string, mode domain.SortMode) (View, error) {
	s, err := f.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.SetSort(mode); err != nil {
		return View{}, err
	}
	return s.View(), nil
}

func (f *FinderService) SendChat(ctx context.Context, id, message string) (View, error) {
	s, err := f.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := s.SendChat(ctx, message); err != nil {
		return View{}, err
	}
	return s.View(), nil
}

func (f *FinderService) Reset(ctx context.Context, id string) (View, error) {
	s, err := f.sessions.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	s.Reset(ctx)
	return s.View(), nil
}

func (f *FinderService) ShareLink(ctx context.Context, id string) (string, error) {
	s, err := f.sessions.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.ShareLink(f.publicURL)
}

func (f *FinderService) ShareQR(ctx context.Context, id string) ([]byte, error) {
	link, err := f.ShareLink(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := f.qr.Generate(link)
	if err != nil {
		return nil, fmt.Errorf("failed to encode share link: %w", err)
	}
	return png, nil
}

func (f *FinderService) Subscribe(ctx context.Context, id string) (<-chan View, func(), error) {
	s, err := f.sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	updates, cancel := s.Subscribe()
	return updates, cancel, nil
}

func (f *FinderService) Heatmap(ctx context.Context) ([]domain.HeatmapCell, error) {
	places, err := f.backend.RestaurantLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	return BuildHeatmap(places, f.heatmapPrecision), nil
}
