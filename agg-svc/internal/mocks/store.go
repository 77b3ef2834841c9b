package mocks

import (
	"context"

	"restaurant-finder/agg-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// StoreInterface is a mock type for the StoreInterface type
type StoreInterface struct {
	mock.Mock
}

func (_m *StoreInterface) IncrementEvent(ctx context.Context, day string, eventType string) error {
	ret := _m.Called(ctx, day, eventType)
	return ret.Error(0)
}

func (_m *StoreInterface) IncrementQuery(ctx context.Context, day string, query string) error {
	ret := _m.Called(ctx, day, query)
	return ret.Error(0)
}

func (_m *StoreInterface) IncrementCell(ctx context.Context, day string, cell string) error {
	ret := _m.Called(ctx, day, cell)
	return ret.Error(0)
}

func (_m *StoreInterface) EventCounts(ctx context.Context, day string) (map[string]int64, error) {
	ret := _m.Called(ctx, day)

	var r0 map[string]int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[string]int64)
	}

	return r0, ret.Error(1)
}

func (_m *StoreInterface) TopQueries(ctx context.Context, day string, limit int) ([]domain.Ranked, error) {
	ret := _m.Called(ctx, day, limit)

	var r0 []domain.Ranked
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Ranked)
	}

	return r0, ret.Error(1)
}

func (_m *StoreInterface) TopCells(ctx context.Context, day string, limit int) ([]domain.Ranked, error) {
	ret := _m.Called(ctx, day, limit)

	var r0 []domain.Ranked
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Ranked)
	}

	return r0, ret.Error(1)
}

// NewStoreInterface creates a new instance of StoreInterface. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewStoreInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *StoreInterface {
	m := &StoreInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
