package live

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/YashMarke130105/pen-perfect-playground/internal/auth"
	"github.com/YashMarke130105/pen-perfect-playground/internal/buffer"
	"github.com/YashMarke130105/pen-perfect-playground/internal/middleware"
	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
	"github.com/YashMarke130105/pen-perfect-playground/internal/service"
	"github.com/YashMarke130105/pen-perfect-playground/internal/session"
	"github.com/YashMarke130105/pen-perfect-playground/internal/storage"
)

// client is one live editing connection.
type client struct {
	h       *Handler
	conn    *websocket.Conn
	buffers *buffer.Set
	token   string
	claims  atomic.Pointer[auth.Claims]
	pending chan struct{}
	writeMu sync.Mutex
}

func newClient(h *Handler, conn *websocket.Conn, token string, claims *auth.Claims) *client {
	c := &client{
		h:       h,
		conn:    conn,
		token:   token,
		buffers: buffer.New(),
		pending: make(chan struct{}, 1),
	}
	c.claims.Store(claims)
	return c
}

func (c *client) run(ctx context.Context) {
	defer c.conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	// Closing the connection unblocks the read loop on server shutdown.
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	cancelBuffers := c.buffers.Subscribe(func(models.SourceDocument) { c.schedule() })
	defer cancelBuffers()
	unsubscribe := c.h.hub.Subscribe(c.onSessionEvent)
	defer unsubscribe()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.renderLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		c.pingLoop(ctx)
	}()

	// The editor shows something before the first edit.
	c.schedule()
	c.readLoop(ctx)

	cancel()
	wg.Wait()
}

// schedule asks for a render of the current buffers. Requests made while a
// render is pending collapse into one.
func (c *client) schedule() {
	select {
	case c.pending <- struct{}{}:
	default:
	}
}

func (c *client) renderLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.pending:
		}

		view, err := c.h.renderer.Render(ctx, c.buffers.Snapshot())
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.h.logger.Warn("live render failed", "error", err)
			c.send(errorMessage(CodeInternal, "preview unavailable"))
			continue
		}
		c.send(renderMessage(view))
	}
}

func (c *client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *client) readLoop(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.h.logger.Warn("live read error", "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg Incoming
		if err := sonic.Unmarshal(data, &msg); err != nil {
			c.send(errorMessage(CodeInvalid, "malformed message"))
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *client) handle(ctx context.Context, msg Incoming) {
	c.h.observer.LiveMessage(messageKind(msg.Type))

	switch msg.Type {
	case TypeSetMarkup:
		c.buffers.SetMarkup(msg.Text)
	case TypeSetStyle:
		c.buffers.SetStyle(msg.Text)
	case TypeSetScript:
		c.buffers.SetScript(msg.Text)
	case TypeLoad:
		c.load(ctx, msg)
	case TypeNew:
		c.send(Outgoing{
			Type:   TypeLoaded,
			Title:  models.DefaultTitle,
			Source: sourceOf(models.DefaultSource()),
		})
		c.buffers.Reset()
	case TypeSave:
		c.save(ctx, msg)
	case TypePing:
		c.send(Outgoing{Type: TypePong})
	default:
		c.send(errorMessage(CodeInvalid, "unknown message type"))
	}
}

// messageKind bounds the metric label to the known types.
func messageKind(kind string) string {
	switch kind {
	case TypeSetMarkup, TypeSetStyle, TypeSetScript, TypeLoad, TypeNew, TypeSave, TypePing:
		return kind
	default:
		return "unknown"
	}
}

func (c *client) load(ctx context.Context, msg Incoming) {
	if msg.ID == "" {
		if msg.Source == nil {
			c.send(errorMessage(CodeInvalid, "load needs a source or a project id"))
			return
		}
		c.buffers.Load(msg.Source.document())
		return
	}

	project, err := c.h.store.GetProject(ctx, msg.ID)
	if err != nil {
		c.sendStoreError("load", err)
		return
	}
	c.send(Outgoing{
		Type:      TypeLoaded,
		ID:        project.ID,
		Title:     project.Title,
		UpdatedAt: project.UpdatedAt,
		Source:    sourceOf(project.Source),
	})
	c.buffers.Load(project.Source)
}

// save persists the current buffers. Without a session the store is not
// touched and the client is sent to the sign-in page.
func (c *client) save(ctx context.Context, msg Incoming) {
	claims, err := c.session(ctx)
	if err != nil {
		c.h.logger.Error("live session check failed", "error", err)
		c.send(errorMessage(CodeInternal, "save failed"))
		return
	}
	if claims == nil {
		out := errorMessage(CodeUnauthenticated, auth.ErrMissingToken.Error())
		out.Redirect = middleware.SignInPath
		c.send(out)
		return
	}

	project := &models.Project{
		ID:      msg.ID,
		Title:   service.CleanTitle(msg.Title),
		Source:  c.buffers.Snapshot(),
		OwnerID: claims.UserID,
	}

	if project.ID == "" {
		err = c.h.store.CreateProject(ctx, project)
	} else {
		err = c.h.store.UpdateProject(ctx, claims.UserID, project)
	}
	if err != nil {
		c.sendStoreError("save", err)
		return
	}

	c.h.logger.Info("Project saved", "project_id", project.ID, "user_id", claims.UserID)
	c.send(Outgoing{
		Type:      TypeSaved,
		ID:        project.ID,
		Title:     project.Title,
		UpdatedAt: project.UpdatedAt,
	})
}

// session returns the connection's claims after checking its token again:
// a token that expired or was signed out since the connection opened no
// longer counts. Only store failures are returned as errors.
func (c *client) session(ctx context.Context) (*auth.Claims, error) {
	claims := c.claims.Load()
	if claims == nil {
		return nil, nil
	}
	if _, err := c.h.sessions.Verify(ctx, c.token); err != nil {
		if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrRevokedToken) {
			return nil, err
		}
		c.h.logger.Debug("live session ended", "user_id", claims.UserID, "error", err)
		c.claims.CompareAndSwap(claims, nil)
		return nil, nil
	}
	return claims, nil
}

// onSessionEvent drops the connection's session when its own token is
// signed out. Other sessions of the same account are unaffected.
func (c *client) onSessionEvent(e session.Event) {
	if e.Type != session.EventSignedOut || e.TokenID == "" {
		return
	}
	if claims := c.claims.Load(); claims != nil && claims.ID == e.TokenID {
		c.claims.CompareAndSwap(claims, nil)
	}
}

func (c *client) sendStoreError(op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.send(errorMessage(CodeNotFound, "project not found"))
	case errors.Is(err, storage.ErrPermissionDenied):
		c.send(errorMessage(CodePermissionDenied, "project belongs to another account"))
	default:
		c.h.logger.Error("live "+op+" failed", "error", err)
		c.send(errorMessage(CodeInternal, op+" failed"))
	}
}

func (c *client) send(msg Outgoing) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		c.h.logger.Error("failed to encode live message", "type", msg.Type, "error", err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.h.logger.Debug("live write failed", "error", err)
	}
}
