// Package live serves the editor's WebSocket endpoint.
//
// Each connection owns one Source Buffer Set. Edits from the client replace
// buffers; every change schedules a headless render whose result is pushed
// back as a "render" message. Renders of one connection never overlap, and a
// burst of edits collapses into a render of the latest snapshot.
package live

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/YashMarke130105/pen-perfect-playground/internal/auth"
	"github.com/YashMarke130105/pen-perfect-playground/internal/preview"
	"github.com/YashMarke130105/pen-perfect-playground/internal/session"
	"github.com/YashMarke130105/pen-perfect-playground/internal/storage"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 20
)

// Observer is told about connections and received messages. Used for metrics.
type Observer interface {
	LiveOpened()
	LiveClosed()
	LiveMessage(kind string)
}

type nopObserver struct{}

func (nopObserver) LiveOpened()        {}
func (nopObserver) LiveClosed()        {}
func (nopObserver) LiveMessage(string) {}

// Handler upgrades requests to live editing connections.
type Handler struct {
	renderer *preview.Renderer
	sessions *auth.Sessions
	store    storage.ProjectStore
	hub      *session.Hub
	observer Observer
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures a Handler.
type Option func(*Handler)

// WithObserver reports connection activity to o.
func WithObserver(o Observer) Option {
	return func(h *Handler) { h.observer = o }
}

// WithLogger sets the handler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// NewHandler creates the live editing endpoint.
func NewHandler(renderer *preview.Renderer, sessions *auth.Sessions, store storage.ProjectStore, hub *session.Hub, opts ...Option) *Handler {
	h := &Handler{
		renderer: renderer,
		sessions: sessions,
		store:    store,
		hub:      hub,
		observer: nopObserver{},
		logger:   slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles the WebSocket upgrade. An optional token query parameter
// signs the connection in; an invalid token leaves it signed out.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var claims *auth.Claims
	token := r.URL.Query().Get("token")
	if token != "" {
		verified, err := h.sessions.Verify(r.Context(), token)
		if err != nil {
			h.logger.Debug("live token rejected", "error", err)
		} else {
			claims = verified
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	h.observer.LiveOpened()
	defer h.observer.LiveClosed()

	c := newClient(h, conn, token, claims)
	c.run(r.Context())
}
