package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"restaurant-finder/web-svc/internal/domain"
	"restaurant-finder/web-svc/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Finder service.FinderServiceInterface
	log    *zap.Logger
}

func NewHandler(finder service.FinderServiceInterface, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Finder: finder,
		log:    log.Named("http"),
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/sessions", h.createSession).Methods("POST")
	r.HandleFunc("/api/sessions/{id}", h.getSession).Methods("GET")
	r.HandleFunc("/api/sessions/{id}", h.deleteSession).Methods("DELETE")
	r.HandleFunc("/api/sessions/{id}/query", h.input).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/select", h.selectSuggestion).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/radius", h.setRadius).Methods("PUT")
	r.HandleFunc("/api/sessions/{id}/filters", h.updateFilters).Methods("PUT")
	r.HandleFunc("/api/sessions/{id}/sort", h.setSort).Methods("PUT")
	r.HandleFunc("/api/sessions/{id}/chat", h.sendChat).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/reset", h.reset).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/share", h.shareLink).Methods("GET")
	r.HandleFunc("/api/sessions/{id}/share.png", h.shareQR).Methods("GET")
	r.HandleFunc("/api/sessions/{id}/ws", h.stream).Methods("GET")

	r.HandleFunc("/api/heatmap", h.heatmap).Methods("GET")
}

type queryRequest struct {
	Query string `json:"query"`
}

type selectRequest struct {
	Index int `json:"index"`
}

type radiusRequest struct {
	RadiusKm int `json:"radius_km"`
}

type sortRequest struct {
	Sort domain.SortMode `json:"sort"`
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "web-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var opts service.SessionOptions
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	view, err := h.Finder.CreateSession(r.Context(), opts)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.Finder.View(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Finder.EndSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) input(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.Finder.Input(r.Context(), mux.Vars(r)["id"], req.Query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// Suggestions arrive later through GET or the websocket.
	writeJSON(w, http.StatusAccepted, view)
}

func (h *Handler) selectSuggestion(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.Finder.Select(r.Context(), mux.Vars(r)["id"], req.Index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) setRadius(w http.ResponseWriter, r *http.Request) {
	var req radiusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.Finder.SetRadius(r.Context(), mux.Vars(r)["id"], req.RadiusKm)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) updateFilters(w http.ResponseWriter, r *http.Request) {
	var filters domain.FilterState
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.Finder.UpdateFilters(r.Context(), mux.Vars(r)["id"], filters)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) setSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.Finder.SetSort(r.Context(), mux.Vars(r)["id"], req.Sort)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) sendChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.Finder.SendChat(r.Context(), mux.Vars(r)["id"], req.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	view, err := h.Finder.Reset(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) shareLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.Finder.ShareLink(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

func (h *Handler) shareQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Finder.ShareQR(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) heatmap(w http.ResponseWriter, r *http.Request) {
	cells, err := h.Finder.Heatmap(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cells)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSuggestionOutOfRange),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, domain.ErrInvalidRatingRange),
		errors.Is(err, domain.ErrInvalidPriceTier),
		errors.Is(err, domain.ErrUnknownSortMode):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoOrigin),
		errors.Is(err, service.ErrChatUnavailable):
		return http.StatusConflict
	case errors.Is(err, service.ErrBackendUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Int("status", code), zap.Error(err))
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
