package httpapi

import (
	"context"
	"net/http"
	"time"

	"restaurant-finder/web-svc/internal/domain"
	"restaurant-finder/web-svc/internal/service"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Intent is a user action sent by the browser over the websocket.
type Intent struct {
	Type     string              `json:"type"`
	Query    string              `json:"query,omitempty"`
	Index    int                 `json:"index,omitempty"`
	RadiusKm int                 `json:"radius_km,omitempty"`
	Filters  *domain.FilterState `json:"filters,omitempty"`
	Sort     domain.SortMode     `json:"sort,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// Frame is pushed to the browser.
type Frame struct {
	Type   string        `json:"type"`
	View   *service.View `json:"view,omitempty"`
	Status int           `json:"status,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	updates, unsubscribe, err := h.Finder.Subscribe(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer unsubscribe()

	initial, err := h.Finder.View(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("session_id", id), zap.Error(err))
		return
	}
	log := h.log.With(zap.String("session_id", id))
	log.Debug("websocket connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failures := make(chan Frame, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer conn.Close()
		h.writeLoop(ctx, conn, initial, updates, failures)
	}()

	for {
		var intent Intent
		if err := conn.ReadJSON(&intent); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", zap.Error(err))
			}
			break
		}
		h.dispatch(ctx, id, intent, failures)
	}

	cancel()
	<-writerDone
	log.Debug("websocket disconnected")
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, initial service.View, updates <-chan service.View, failures <-chan Frame) {
	write := func(f Frame) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(f) == nil
	}

	if !write(Frame{Type: "view", View: &initial}) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case view, ok := <-updates:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if !write(Frame{Type: "view", View: &view}) {
				return
			}
		case f := <-failures:
			if !write(f) {
				return
			}
		}
	}
}

// dispatch applies one intent. Views produced by the change reach the
// browser through the subscription, so only failures are reported here.
// Intents that wait on the backend run in their own goroutine.
func (h *Handler) dispatch(ctx context.Context, id string, intent Intent, failures chan<- Frame) {
	fail := func(status int, msg string) {
		select {
		case failures <- Frame{Type: "error", Status: status, Error: msg}:
		case <-ctx.Done():
		}
	}
	report := func(err error) {
		if err != nil {
			fail(statusFor(err), err.Error())
		}
	}

	switch intent.Type {
	case "query":
		_, err := h.Finder.Input(ctx, id, intent.Query)
		report(err)
	case "filters":
		if intent.Filters == nil {
			fail(http.StatusBadRequest, "filters missing")
			return
		}
		_, err := h.Finder.UpdateFilters(ctx, id, *intent.Filters)
		report(err)
	case "sort":
		_, err := h.Finder.SetSort(ctx, id, intent.Sort)
		report(err)
	case "select":
		go func() {
			_, err := h.Finder.Select(ctx, id, intent.Index)
			report(err)
		}()
	case "radius":
		go func() {
			_, err := h.Finder.SetRadius(ctx, id, intent.RadiusKm)
			report(err)
		}()
	case "chat":
		go func() {
			_, err := h.Finder.SendChat(ctx, id, intent.Message)
			report(err)
		}()
	case "reset":
		go func() {
			_, err := h.Finder.Reset(ctx, id)
			report(err)
		}()
	default:
		fail(http.StatusBadRequest, "unknown intent "+intent.Type)
	}
}
