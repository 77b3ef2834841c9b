package mocks

import (
	"context"

	"restaurant-finder/web-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

// SuggestionCache is a mock type for the SuggestionCache type
type SuggestionCache struct {
	mock.Mock
}

func (_m *SuggestionCache) SuggestionKey(query string) string {
	ret := _m.Called(query)
	return ret.String(0)
}

func (_m *SuggestionCache) GetSuggestions(ctx context.Context, key string) ([]domain.SearchSuggestion, bool, error) {
	ret := _m.Called(ctx, key)

	var r0 []domain.SearchSuggestion
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.SearchSuggestion)
	}

	return r0, ret.Bool(1), ret.Error(2)
}

func (_m *SuggestionCache) SetSuggestions(ctx context.Context, key string, suggestions []domain.SearchSuggestion) error {
	ret := _m.Called(ctx, key, suggestions)
	return ret.Error(0)
}

func NewSuggestionCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *SuggestionCache {
	m := &SuggestionCache{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// SnapshotStore is a mock type for the SnapshotStore type
type SnapshotStore struct {
	mock.Mock
}

func (_m *SnapshotStore) SaveSnapshot(ctx context.Context, id string, state domain.AppState) error {
	ret := _m.Called(ctx, id, state)
	return ret.Error(0)
}

func (_m *SnapshotStore) LoadSnapshot(ctx context.Context, id string) (*domain.AppState, bool, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.AppState
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.AppState)
	}

	return r0, ret.Bool(1), ret.Error(2)
}

func (_m *SnapshotStore) DeleteSnapshot(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func NewSnapshotStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *SnapshotStore {
	m := &SnapshotStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// EventPublisher is a mock type for the EventPublisher type
type EventPublisher struct {
	mock.Mock
}

func (_m *EventPublisher) PublishEvent(ctx context.Context, event domain.InteractionEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

func NewEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *EventPublisher {
	m := &EventPublisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// QRGenerator is a mock type for the QRGenerator type
type QRGenerator struct {
	mock.Mock
}

func (_m *QRGenerator) Generate(link string) ([]byte, error) {
	ret := _m.Called(link)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

func NewQRGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *QRGenerator {
	m := &QRGenerator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
