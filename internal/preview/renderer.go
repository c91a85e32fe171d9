package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
)

var (
	ErrClosed = errors.New("renderer is closed")
	ErrBusy   = errors.New("no render slot available")
)

// Renderer executes preview documents headlessly.
// Concurrency is bounded by a fixed number of slots; each render still gets
// its own runtime.
type Renderer struct {
	cfg      Config
	logger   *slog.Logger
	observer Observer

	slots     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for per-render debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// WithObserver registers an observer notified after every render.
func WithObserver(o Observer) Option {
	return func(r *Renderer) { r.observer = o }
}

// New creates a renderer. Zero config fields take their defaults.
func New(cfg Config, opts ...Option) *Renderer {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = def.MaxTasks
	}
	if cfg.MaxCallStack <= 0 {
		cfg.MaxCallStack = def.MaxCallStack
	}
	if cfg.AcquireWait <= 0 {
		cfg.AcquireWait = def.AcquireWait
	}

	r := &Renderer{
		cfg:    cfg,
		logger: slog.Default(),
		slots:  make(chan struct{}, cfg.MaxConcurrent),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Render builds the document for doc and executes it.
// Script failures are contained in the returned View; an error means no
// render happened at all (closed renderer, no free slot, cancelled context)
// or its result could not be serialized.
func (r *Renderer) Render(ctx context.Context, doc models.SourceDocument) (view *View, err error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.release()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("render panicked", "panic", p)
			view, err = nil, fmt.Errorf("render panicked: %v", p)
		}
	}()

	exec, err := newExecution(r.cfg, r.logger, Build(doc))
	if err != nil {
		return nil, err
	}
	if err := exec.run(ctx); err != nil {
		return nil, err
	}
	if err := exec.finish(); err != nil {
		r.logger.Error("render serialization failed", "error", err)
		return nil, err
	}

	view = exec.view
	view.Duration = time.Since(start)
	r.logger.Debug("render finished",
		"duration", view.Duration,
		"diagnostics", len(view.Diagnostics),
		"timed_out", view.TimedOut,
	)
	if r.observer != nil {
		r.observer.ObserveRender(view)
	}
	return view, nil
}

func (r *Renderer) acquire(ctx context.Context) error {
	select {
	case <-r.done:
		return ErrClosed
	default:
	}

	timer := time.NewTimer(r.cfg.AcquireWait)
	defer timer.Stop()

	select {
	case r.slots <- struct{}{}:
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrBusy
	}
}

func (r *Renderer) release() {
	<-r.slots
}

// Close stops accepting renders. Renders in flight finish normally.
func (r *Renderer) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	return nil
}
