package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"hrmpay/internal/domain/payroll"
	"hrmpay/internal/platform/config"
	"hrmpay/internal/platform/crypto"
	"hrmpay/internal/platform/db"
	"hrmpay/internal/platform/logging"
	"hrmpay/internal/platform/metrics"
	"hrmpay/internal/transport/http/api"
	payrollhandler "hrmpay/internal/transport/http/handlers/payroll"
	"hrmpay/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Collector
	Service *payroll.Service
	Router  http.Handler

	closers []func()
}

// New wires the payslip service onto the store selected by cfg.StoreDriver.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}

	cryptoSvc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, err
	}
	if !cryptoSvc.Configured() {
		logger.Warn("DATA_ENCRYPTION_KEY not set, salaries are read from the plain column")
	}

	store, err := app.openStore(ctx, cryptoSvc)
	if err != nil {
		app.Close()
		return nil, err
	}

	location, err := cfg.Payslip.Location()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("PAYSLIP_TIMEZONE: %w", err)
	}
	renderer, err := payroll.NewRenderer(payroll.RenderOptions{
		BrandName: cfg.Payslip.BrandName,
		Tagline:   cfg.Payslip.Tagline,
		Currency:  cfg.Payslip.Currency,
		Location:  location,
		LogoPath:  cfg.Payslip.LogoPath,
		Compress:  cfg.Payslip.Compress,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	if cfg.MetricsEnabled {
		app.Metrics = metrics.New()
	}
	app.Service = payroll.NewService(store, renderer, app.Metrics, logger, cfg.PayrollTimeout)
	app.Router = app.routes()
	return app, nil
}

func (a *App) openStore(ctx context.Context, cryptoSvc *crypto.Service) (payroll.StoreAPI, error) {
	switch a.Config.StoreDriver {
	case config.StoreDriverSQLite:
		store, err := payroll.NewSQLiteStore(a.Config.SQLitePath, cryptoSvc)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		a.Logger.Info("payslip store ready", "driver", config.StoreDriverSQLite, "path", a.Config.SQLitePath)
		return store, nil
	default:
		pool, err := db.Connect(ctx, a.Config)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if a.Config.RunMigrations {
			if err := db.Migrate(ctx, pool, a.Config.MigrationsDir, a.Logger); err != nil {
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		a.Logger.Info("payslip store ready", "driver", config.StoreDriverPostgres)
		return payroll.NewStore(pool, cryptoSvc), nil
	}
}

func (a *App) routes() http.Handler {
	cfg := a.Config
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(a.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: logging.Schema,
	}))
	router.Use(chimw.Recoverer)
	router.Use(chimw.CleanPath)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID", "Retry-After"},
		MaxAge:           300,
	}))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	if a.Metrics != nil {
		router.Use(middleware.Metrics(a.Metrics))
	}
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Service.Ping(ctx); err != nil {
			a.Logger.Warn("readiness check failed", "error", err)
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if a.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		payrollhandler.NewHandler(a.Service, a.Logger, cfg.RateLimitPerMinute).RegisterRoutes(r)
	})

	return router
}

// Close releases the store. It is safe to call more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Serve blocks until ctx is cancelled, then drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      a.Config.PayrollTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("payslip server listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func Run() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.Environment)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Serve(ctx); err != nil {
		logger.Error("server failed", "error", err)
		app.Close()
		os.Exit(1)
	}
}
