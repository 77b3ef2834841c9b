package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpapi "restaurant-finder/web-svc/internal/api/http"
	"restaurant-finder/web-svc/internal/domain"
	"restaurant-finder/web-svc/internal/mocks"
	"restaurant-finder/web-svc/internal/service"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dialSession(t *testing.T, finder *mocks.FinderServiceInterface, id string) *websocket.Conn {
	t.Helper()
	r := mux.NewRouter()
	httpapi.NewHandler(finder, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) httpapi.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f httpapi.Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestStream_PushesViewsAndErrors(t *testing.T) {
	updates := make(chan service.View, 1)
	unsubscribed := make(chan struct{})

	finder := mocks.NewFinderServiceInterface(t)
	finder.On("Subscribe", mock.Anything, "s1").Return(updates, func() { close(unsubscribed) }, nil).Once()
	finder.On("View", mock.Anything, "s1").Return(service.View{SessionID: "s1", RadiusKm: 10}, nil).Once()
	finder.On("SetSort", mock.Anything, "s1", domain.SortPrice).
		Run(func(mock.Arguments) {
			updates <- service.View{SessionID: "s1", RadiusKm: 10, Filters: domain.FilterState{Sort: domain.SortPrice}}
		}).
		Return(service.View{}, nil).Once()
	finder.On("SendChat", mock.Anything, "s1", "hi").Return(nil, service.ErrChatUnavailable).Once()

	conn := dialSession(t, finder, "s1")

	initial := readFrame(t, conn)
	assert.Equal(t, "view", initial.Type)
	require.NotNil(t, initial.View)
	assert.Equal(t, "s1", initial.View.SessionID)

	require.NoError(t, conn.WriteJSON(httpapi.Intent{Type: "sort", Sort: domain.SortPrice}))
	sorted := readFrame(t, conn)
	require.NotNil(t, sorted.View)
	assert.Equal(t, domain.SortPrice, sorted.View.Filters.Sort)

	require.NoError(t, conn.WriteJSON(httpapi.Intent{Type: "chat", Message: "hi"}))
	failed := readFrame(t, conn)
	assert.Equal(t, "error", failed.Type)
	assert.Equal(t, http.StatusConflict, failed.Status)

	require.NoError(t, conn.WriteJSON(httpapi.Intent{Type: "dance"}))
	unknown := readFrame(t, conn)
	assert.Equal(t, http.StatusBadRequest, unknown.Status)

	conn.Close()
	select {
	case <-unsubscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not released")
	}
}

func TestStream_ClosesWhenSessionEnds(t *testing.T) {
	updates := make(chan service.View, 1)

	finder := mocks.NewFinderServiceInterface(t)
	finder.On("Subscribe", mock.Anything, "s1").Return(updates, func() {}, nil).Once()
	finder.On("View", mock.Anything, "s1").Return(service.View{SessionID: "s1"}, nil).Once()

	conn := dialSession(t, finder, "s1")
	readFrame(t, conn)

	close(updates)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestStream_UnknownSession(t *testing.T) {
	finder := mocks.NewFinderServiceInterface(t)
	finder.On("Subscribe", mock.Anything, "nope").Return(nil, nil, service.ErrSessionNotFound).Once()

	w := serve(t, finder, "GET", "/api/sessions/nope/ws", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
