package mocks

import (
	"context"

	"restaurant-finder/agg-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// TrendsInterface is a mock type for the TrendsInterface type
type TrendsInterface struct {
	mock.Mock
}

func (_m *TrendsInterface) Trends(ctx context.Context, day string, limit int) (domain.Trends, error) {
	ret := _m.Called(ctx, day, limit)
	return ret.Get(0).(domain.Trends), ret.Error(1)
}

func NewTrendsInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *TrendsInterface {
	m := &TrendsInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
