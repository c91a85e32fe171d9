package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/YashMarke130105/pen-perfect-playground/internal/auth"
	"github.com/YashMarke130105/pen-perfect-playground/internal/config"
	"github.com/YashMarke130105/pen-perfect-playground/internal/live"
	"github.com/YashMarke130105/pen-perfect-playground/internal/metrics"
	"github.com/YashMarke130105/pen-perfect-playground/internal/middleware"
	"github.com/YashMarke130105/pen-perfect-playground/internal/preview"
	"github.com/YashMarke130105/pen-perfect-playground/internal/service"
	"github.com/YashMarke130105/pen-perfect-playground/internal/session"
	"github.com/YashMarke130105/pen-perfect-playground/internal/storage/sqlite"
	"github.com/YashMarke130105/pen-perfect-playground/internal/web"
	"github.com/YashMarke130105/pen-perfect-playground/pkg/api/v1/apiv1connect"
	"github.com/YashMarke130105/pen-perfect-playground/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.LogFormat())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.Storage.DBPath)

	revoker, closeRevoker, err := openRevoker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRevoker()

	sessions := auth.NewSessions(auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), revoker)
	m := metrics.New()

	hub := session.NewHub(logger)
	defer hub.Close()
	unsubscribe := hub.Subscribe(func(e session.Event) {
		m.SessionEvent(string(e.Type))
		logger.Info("Session event", "type", e.Type, "user_id", e.UserID)
	})
	defer unsubscribe()

	previewCfg := preview.DefaultConfig()
	previewCfg.Timeout = cfg.Render.Timeout
	previewCfg.MaxConcurrent = cfg.Render.MaxConcurrent
	renderer := preview.New(previewCfg, preview.WithLogger(logger), preview.WithObserver(m))
	defer renderer.Close()

	handler, err := routes(cfg, logger, store, sessions, hub, renderer, m)
	if err != nil {
		return err
	}

	if cfg.RateLimit.Enabled {
		proxies, err := cfg.Server.Proxies()
		if err != nil {
			return err
		}
		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			IdleTTL:           middleware.DefaultRateLimitConfig().IdleTTL,
			TrustedProxies:    proxies,
		}, logger)
		handler = limiter.Middleware(handler)
		go sweep(ctx, limiter, logger)
	}

	handler = middleware.RequestLogger(logger)(middleware.CORS(handler))

	// Live connections outlive Shutdown; cancelling their base context closes them.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	server := &http.Server{
		Addr: cfg.Addr(),
		// Wrap with h2c for HTTP/2 without TLS (required for Connect)
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting",
			"address", server.Addr,
			"env", cfg.Env,
			"rate_limit", cfg.RateLimit.Enabled,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	cancelBase()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// routes builds the application handler.
func routes(cfg *config.Config, logger *slog.Logger, store *sqlite.SQLiteStore, sessions *auth.Sessions, hub *session.Hub, renderer *preview.Renderer, m *metrics.Metrics) (http.Handler, error) {
	// Auth interceptors run before logging so it sees the caller.
	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.OptionalAuth(sessions),
		middleware.RequireAuth(sessions, service.ProtectedProcedures()...),
		middleware.LoggingInterceptor(logger),
	)

	authenticator := auth.NewPasswordAuthenticator(store)

	mux := http.NewServeMux()

	// Register Connect services
	mux.Handle(apiv1connect.NewAuthServiceHandler(
		service.NewAuthService(authenticator, store, sessions, hub, logger), interceptors))
	mux.Handle(apiv1connect.NewProjectServiceHandler(service.NewProjectService(store), interceptors))
	mux.Handle(apiv1connect.NewPreviewServiceHandler(service.NewPreviewService(renderer), interceptors))

	docs := service.NewDocuments(store)
	mux.Handle("POST /preview", renderer)
	mux.HandleFunc("GET /preview/{id}", docs.Preview)
	mux.HandleFunc("GET /export/{id}", docs.Export)
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	pages, err := web.Handler(cfg.Server.StaticPath)
	if err != nil {
		return nil, err
	}
	mux.Handle("/", pages)

	// The WebSocket endpoint bypasses compression.
	root := http.NewServeMux()
	root.Handle("/live", live.NewHandler(renderer, sessions, store, hub,
		live.WithObserver(m), live.WithLogger(logger)))
	root.Handle("/", gzhttp.GzipHandler(mux))
	return root, nil
}

func openRevoker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.Revoker, func(), error) {
	if cfg.Storage.RedisURL == "" {
		logger.Info("Using in-memory sign-out list")
		return auth.NewMemoryRevoker(), func() {}, nil
	}

	revoker, err := auth.OpenRedisRevoker(ctx, cfg.Storage.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Using Redis sign-out list")
	return revoker, func() { _ = revoker.Close() }, nil
}

// sweep drops idle rate limiters until ctx ends.
func sweep(ctx context.Context, limiter *middleware.RateLimiter, logger *slog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(); n > 0 {
				logger.Debug("Rate limiters swept", "removed", n)
			}
		}
	}
}
