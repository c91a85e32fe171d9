// Package session broadcasts account state changes inside the process.
//
// Subscribers register when they start (the live editing endpoint, the
// server's audit logger) and unsubscribe when they stop; nothing registers
// implicitly at import time.
package session

import (
	"log/slog"
	"sync"
	"time"
)

// EventType names an account state change.
type EventType string

const (
	EventSignedUp       EventType = "signed_up"
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventProfileUpdated EventType = "profile_updated"
)

// Event is published after an account state change has been persisted.
type Event struct {
	Type     EventType
	UserID   string
	Username string
	// TokenID identifies the session token concerned, when there is one.
	TokenID string
	At      time.Time
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

// Hub fans events out to subscribers.
type Hub struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	nextID   uint64
	closed   bool
	logger   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		handlers: make(map[uint64]Handler),
		logger:   logger,
	}
}

// Subscribe registers h and returns the function that unregisters it.
func (h *Hub) Subscribe(handler Handler) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return func() {}
	}
	h.nextID++
	id := h.nextID
	h.handlers[id] = handler

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.handlers, id)
	}
}

// Publish delivers e to every subscriber. A panicking subscriber is logged
// and does not affect the others.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	h.mu.RLock()
	handlers := make([]Handler, 0, len(h.handlers))
	for _, handler := range h.handlers {
		handlers = append(handlers, handler)
	}
	h.mu.RUnlock()

	for _, handler := range handlers {
		h.deliver(handler, e)
	}
}

func (h *Hub) deliver(handler Handler, e Event) {
	defer func() {
		if p := recover(); p != nil {
			h.logger.Error("session subscriber panicked", "event", e.Type, "panic", p)
		}
	}()
	handler(e)
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}

// Close drops every subscriber. Later subscriptions are ignored and later
// publishes reach nobody.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.handlers = make(map[uint64]Handler)
}
