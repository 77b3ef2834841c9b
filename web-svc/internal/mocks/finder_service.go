package mocks

import (
	"context"

	"restaurant-finder/web-svc/internal/domain"
	"restaurant-finder/web-svc/internal/service"

	"github.com/stretchr/testify/mock"
)

// FinderServiceInterface is a mock type for the FinderServiceInterface type
type FinderServiceInterface struct {
	mock.Mock
}

func (_m *FinderServiceInterface) view(ret mock.Arguments) (service.View, error) {
	var r0 service.View
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(service.View)
	}
	return r0, ret.Error(1)
}

func (_m *FinderServiceInterface) CreateSession(ctx context.Context, opts service.SessionOptions) (service.View, error) {
	return _m.view(_m.Called(ctx, opts))
}

func (_m *FinderServiceInterface) View(ctx context.Context, id string) (service.View, error) {
	return _m.view(_m.Called(ctx, id))
}

func (_m *FinderServiceInterface) EndSession(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *FinderServiceInterface) Input(ctx context.Context, id string, query string) (service.View, error) {
	return _m.view(_m.Called(ctx, id, query))
}

func (_m *FinderServiceInterface) Select(ctx context.Context, id string, index int) (service.View, error) {
	return _m.view(_m.Called(ctx, id, index))
}

func (_m *FinderServiceInterface) SetRadius(ctx context.Context, id string, radiusKm int) (service.View, error) {
	return _m.view(_m.Called(ctx, id, radiusKm))
}

func (_m *FinderServiceInterface) UpdateFilters(ctx context.Context, id string, filters domain.FilterState) (service.View, error) {
	return _m.view(_m.Called(ctx, id, filters))
}

func (_m *FinderServiceInterface) SetSort(ctx context.Context, id string, mode domain.SortMode) (service.View, error) {
	return _m.view(_m.Called(ctx, id, mode))
}

func (_m *FinderServiceInterface) SendChat(ctx context.Context, id string, message string) (service.View, error) {
	return _m.view(_m.Called(ctx, id, message))
}

func (_m *FinderServiceInterface) Reset(ctx context.Context, id string) (service.View, error) {
	return _m.view(_m.Called(ctx, id))
}

func (_m *FinderServiceInterface) ShareLink(ctx context.Context, id string) (string, error) {
	ret := _m.Called(ctx, id)
	return ret.String(0), ret.Error(1)
}

func (_m *FinderServiceInterface) ShareQR(ctx context.Context, id string) ([]byte, error) {
	ret := _m.Called(ctx, id)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

func (_m *FinderServiceInterface) Subscribe(ctx context.Context, id string) (<-chan service.View, func(), error) {
	ret := _m.Called(ctx, id)

	var r0 <-chan service.View
	switch v := ret.Get(0).(type) {
	case chan service.View:
		r0 = v
	case <-chan service.View:
		r0 = v
	}

	var r1 func()
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(func())
	}

	return r0, r1, ret.Error(2)
}

func (_m *FinderServiceInterface) Heatmap(ctx context.Context) ([]domain.HeatmapCell, error) {
	ret := _m.Called(ctx)

	var r0 []domain.HeatmapCell
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.HeatmapCell)
	}

	return r0, ret.Error(1)
}

// NewFinderServiceInterface creates a new instance of FinderServiceInterface. It also registers a cleanup
// function to assert the mocks expectations.
func NewFinderServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *FinderServiceInterface {
	m := &FinderServiceInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
