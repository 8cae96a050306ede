// Package api exposes the record search engine and notification store
// over HTTP and MCP. Both transports decode into the same endpoint
// layer, so filter semantics cannot drift between them.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/sijill/pkg/kit"
	"github.com/hazyhaar/sijill/pkg/notify"
	"github.com/hazyhaar/sijill/pkg/records"
)

// NewRouter returns an http.Handler with all API routes. now is
// injectable for the recent-window filter; nil means time.Now.
func NewRouter(reg *records.Registry, store *notify.Store, now func() time.Time) http.Handler {
	if now == nil {
		now = time.Now
	}
	h := &handler{
		search:            searchEndpoint(reg),
		listCategories:    listCategoriesEndpoint(reg),
		listNotifications: listNotificationsEndpoint(store),
		reg:               reg,
		store:             store,
		now:               now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", h.handleHealth)
	mux.HandleFunc("GET /v1/categories", h.handleListCategories)
	mux.HandleFunc("GET /v1/notifications", h.handleListNotifications)
	mux.HandleFunc("POST /v1/notifications", h.handleAddNotification)
	mux.HandleFunc("GET /v1/notifications/stream", h.handleStream)
	mux.HandleFunc("POST /v1/notifications/read_all", h.handleMarkAllRead)
	mux.HandleFunc("POST /v1/notifications/{id}/read", h.handleMarkRead)
	mux.HandleFunc("DELETE /v1/notifications/{id}", h.handleDeleteNotification)
	mux.HandleFunc("DELETE /v1/notifications", h.handleDeleteAll)
	mux.HandleFunc("GET /v1/{category}/records", h.handleSearch)

	return cors(mux)
}

type handler struct {
	search            kit.Endpoint
	listCategories    kit.Endpoint
	listNotifications kit.Endpoint
	reg               *records.Registry
	store             *notify.Store
	now               func() time.Time
}

// --- records ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("category")
	cat, ok := h.reg.Category(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown category %q", id))
		return
	}

	query := r.URL.Query()
	q := buildQuery(cat, query.Get, h.now)

	resp, err := h.search(r.Context(), &searchReq{Category: id, Query: q})
	if err != nil {
		if errors.Is(err, records.ErrDateConflict) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- categories ---

func (h *handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listCategories(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- notifications ---

func (h *handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listNotifications(r.Context(), notificationFilter(r.URL.Query().Get))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type addNotificationRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
}

func (h *handler) handleAddNotification(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	var req addNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "missing title")
		return
	}
	n, err := h.store.Add(r.Context(), notify.Notification{
		Title:    req.Title,
		Body:     req.Body,
		Kind:     req.Kind,
		Severity: req.Severity,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.store.MarkRead(r.Context(), r.PathValue("id"))
	if errors.Is(err, notify.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.MarkAllRead(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (h *handler) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	err := h.store.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, notify.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.DeleteAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// handleStream pushes new notifications as server-sent events until the
// client disconnects.
func (h *handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch, cancel := h.store.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case n, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// --- health ---

type healthResponse struct {
	Status     string `json:"status"`
	Categories int    `json:"categories"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Categories: len(h.reg.Categories()),
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
