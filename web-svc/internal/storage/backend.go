package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"restaurant-finder/web-svc/internal/domain"
	"restaurant-finder/web-svc/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxErrorBody = 512

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// BackendClient talks to the restaurant API over HTTP.
type BackendClient struct {
	baseURL string
	client  HTTPClient
	log     *zap.Logger
}

func NewBackendClient(baseURL string, client HTTPClient, log *zap.Logger) *BackendClient {
	return &BackendClient{baseURL: baseURL, client: client, log: log}
}

func (b *BackendClient) Search(ctx context.Context, query string) ([]domain.SearchSuggestion, error) {
	var features []domain.GeocodingFeature
	q := url.Values{"q": {query}}
	if err := b.do(ctx, http.MethodGet, "/search", q, nil, &features); err != nil {
		return nil, err
	}

	suggestions := make([]domain.SearchSuggestion, 0, len(features))
	for _, f := range features {
		if s, ok := f.Suggestion(); ok {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions, nil
}

func (b *BackendClient) SearchNearby(ctx context.Context, lat, lon float64, radiusKm int) ([]domain.Place, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(radiusKm))

	var places []domain.Place
	if err := b.do(ctx, http.MethodGet, "/search_nearby", q, nil, &places); err != nil {
		return nil, err
	}
	return places, nil
}

func (b *BackendClient) RestaurantLocations(ctx context.Context) ([]domain.Place, error) {
	var places []domain.Place
	if err := b.do(ctx, http.MethodGet, "/restaurant_locations", nil, nil, &places); err != nil {
		return nil, err
	}
	return places, nil
}

func (b *BackendClient) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	var reply domain.ChatReply
	if err := b.do(ctx, http.MethodPost, "/chatbot", nil, req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (b *BackendClient) SetupChat(ctx context.Context) error {
	return b.do(ctx, http.MethodPost, "/setup_chatbot", nil, struct{}{}, nil)
}

func (b *BackendClient) ResetChat(ctx context.Context) error {
	return b.do(ctx, http.MethodPost, "/reset_chatbot", nil, struct{}{}, nil)
}

func (b *BackendClient) do(ctx context.Context, method, endpoint string, query url.Values, body, out interface{}) (err error) {
	ctx, span := otel.Tracer("BackendClient").Start(ctx, method+" "+endpoint, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("backend.endpoint", endpoint),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.BackendDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
	}()

	target := b.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	b.log.Debug("backend request", zap.String("method", method), zap.String("url", target))

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s unreachable: %w", endpoint, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}
