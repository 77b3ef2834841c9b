package mocks

import (
	"context"

	"restaurant-finder/web-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Backend is a mock type for the Backend type
type Backend struct {
	mock.Mock
}

func (_m *Backend) Search(ctx context.Context, query string) ([]domain.SearchSuggestion, error) {
	ret := _m.Called(ctx, query)

	var r0 []domain.SearchSuggestion
	if rf, ok := ret.Get(0).(func(context.Context, string) []domain.SearchSuggestion); ok {
		r0 = rf(ctx, query)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.SearchSuggestion)
	}

	return r0, ret.Error(1)
}

func (_m *Backend) SearchNearby(ctx context.Context, lat float64, lon float64, radiusKm int) ([]domain.Place, error) {
	ret := _m.Called(ctx, lat, lon, radiusKm)

	var r0 []domain.Place
	if rf, ok := ret.Get(0).(func(context.Context, float64, float64, int) []domain.Place); ok {
		r0 = rf(ctx, lat, lon, radiusKm)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Place)
	}

	return r0, ret.Error(1)
}

func (_m *Backend) RestaurantLocations(ctx context.Context) ([]domain.Place, error) {
	ret := _m.Called(ctx)

	var r0 []domain.Place
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Place)
	}

	return r0, ret.Error(1)
}

func (_m *Backend) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	ret := _m.Called(ctx, req)

	var r0 *domain.ChatReply
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.ChatReply)
	}

	return r0, ret.Error(1)
}

func (_m *Backend) SetupChat(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

func (_m *Backend) ResetChat(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

// NewBackend creates a new instance of Backend. It also registers a cleanup
// function to assert the mocks expectations.
func NewBackend(t interface {
	mock.TestingT
	Cleanup(func())
}) *Backend {
	m := &Backend{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
