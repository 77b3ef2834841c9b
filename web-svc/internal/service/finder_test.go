package service_test

import (
	"context"
	"errors"
	"testing"

	"restaurant-finder/web-svc/internal/domain"
	"restaurant-finder/web-svc/internal/mocks"
	"restaurant-finder/web-svc/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestFinder(t *testing.T, backend *mocks.Backend, qr service.QRGenerator) *service.FinderService {
	t.Helper()
	registry := newTestRegistry(t, backend, nil)
	return service.NewFinderService(registry, backend, qr, "https://finder.example", 5)
}

func TestFinderService_UnknownSession(t *testing.T) {
	finder := newTestFinder(t, mocks.NewBackend(t), nil)
	ctx := context.Background()

	_, err := finder.View(ctx, "nope")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	_, err = finder.Input(ctx, "nope", "lyon")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	_, err = finder.SendChat(ctx, "nope", "hi")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	_, _, err = finder.Subscribe(ctx, "nope")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	assert.ErrorIs(t, finder.EndSession(ctx, "nope"), service.ErrSessionNotFound)
}

func TestFinderService_ShareQR(t *testing.T) {
	link := "https://finder.example/?lat=45.760000&lon=4.830000&radius=10&sort=rating"

	tests := []struct {
		name          string
		origin        *domain.Coordinate
		prepareMocks  func(qr *mocks.QRGenerator)
		expected      []byte
		expectedError error
	}{
		{
			name:   "encodes_share_link",
			origin: &domain.Coordinate{Latitude: 45.76, Longitude: 4.83},
			prepareMocks: func(qr *mocks.QRGenerator) {
				qr.On("Generate", link).Return([]byte("png"), nil).Once()
			},
			expected: []byte("png"),
		},
		{
			name:          "no_origin",
			prepareMocks:  func(qr *mocks.QRGenerator) {},
			expectedError: service.ErrNoOrigin,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			backend := mocks.NewBackend(t)
			backend.On("SetupChat", mock.Anything).Return(nil).Once()
			if testCase.origin != nil {
				backend.On("SearchNearby", mock.Anything, testCase.origin.Latitude, testCase.origin.Longitude, 10).Return(nil, nil).Once()
			}
			qr := mocks.NewQRGenerator(t)
			testCase.prepareMocks(qr)
			finder := newTestFinder(t, backend, qr)

			view, err := finder.CreateSession(context.Background(), service.SessionOptions{Origin: testCase.origin})
			require.NoError(t, err)

			png, err := finder.ShareQR(context.Background(), view.SessionID)

			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, png)
		})
	}
}

func TestFinderService_Heatmap(t *testing.T) {
	t.Run("aggregates_locations", func(t *testing.T) {
		backend := mocks.NewBackend(t)
		backend.On("RestaurantLocations", mock.Anything).Return(nearbyPlaces(), nil).Once()

		cells, err := newTestFinder(t, backend, nil).Heatmap(context.Background())

		require.NoError(t, err)
		require.NotEmpty(t, cells)
		total := 0
		for _, c := range cells {
			total += c.Count
		}
		assert.Equal(t, 3, total)
		assert.Equal(t, 1.0, cells[0].Intensity)
	})

	t.Run("backend_unavailable", func(t *testing.T) {
		backend := mocks.NewBackend(t)
		backend.On("RestaurantLocations", mock.Anything).Return(nil, errors.New("connection refused")).Once()

		_, err := newTestFinder(t, backend, nil).Heatmap(context.Background())

		assert.ErrorIs(t, err, service.ErrBackendUnavailable)
	})
}

func TestDefaultQRGenerator(t *testing.T) {
	png, err := service.DefaultQRGenerator{}.Generate("https://finder.example/?lat=1&lon=2")

	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
