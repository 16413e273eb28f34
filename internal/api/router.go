package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/api/handlers"
	mw "github.com/Harshitk-cp/wumpus/internal/api/middleware"
	"github.com/Harshitk-cp/wumpus/internal/buildconfig"
	"github.com/Harshitk-cp/wumpus/internal/config"
	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/service"
	"github.com/Harshitk-cp/wumpus/internal/store"
	"github.com/Harshitk-cp/wumpus/internal/store/kv"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterMaxIdle         = 10 * time.Minute
)

// Backend is the storage the app runs on.
type Backend struct {
	Tenants  domain.TenantStore
	Sessions domain.SessionStore
	// Ping reports storage health for /health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// App holds the router and background services for lifecycle management.
type App struct {
	Router       *chi.Mux
	Sessions     *service.SessionService
	Expirer      *service.SessionExpirer
	limiter      *mw.RateLimiter
	stopLimiter  chan struct{}
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(b Backend, logger *zap.Logger) *App {
	// Services
	sessionSvc := service.NewSessionService(b.Sessions, logger)
	sessionSvc.SetMaxGridSize(config.MaxGridSize())
	sessionSvc.SetQueryTimeout(config.QueryTimeout())
	sessionSvc.SetCrossCheck(config.SATCrossCheck())

	expirer := service.NewSessionExpirer(b.Sessions, logger)
	expirer.SetTTL(config.SessionTTL())
	expirer.SetInterval(config.ExpirerInterval())

	// Handlers
	tenantHandler := handlers.NewTenantHandler(b.Tenants)
	sessionHandler := handlers.NewSessionHandler(sessionSvc)

	r := chi.NewRouter()

	app := &App{
		Router:      r,
		Sessions:    sessionSvc,
		Expirer:     expirer,
		limiter:     mw.NewRateLimiter(config.RateLimitRPS(), config.RateLimitBurst()),
		stopLimiter: make(chan struct{}),
		startTime:   time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)                // Generate/extract request ID first
	r.Use(middleware.RealIP)           // Extract real IP
	r.Use(metricsCollector.Middleware) // Collect metrics
	r.Use(mw.Logging(logger))          // Log all requests
	r.Use(middleware.Recoverer)        // Recover from panics
	r.Use(app.limiter.Middleware)      // Rate limiting

	// Health, metrics and stats (no auth)
	r.Get("/health", healthHandler(b.Ping))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/stats", app.statsHandler())

	// Tenant creation (no auth, bootstrap endpoint)
	r.Post("/v1/tenants", tenantHandler.Create)

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(b.Tenants))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Put("/grid-size", sessionHandler.SetGridSize)
				r.Post("/facts", sessionHandler.AssertFacts)
				r.Post("/observations", sessionHandler.AssertObservations)
				r.Post("/wumpus-dead", sessionHandler.MarkWumpusDead)
				r.Post("/reset", sessionHandler.Reset)
				r.Get("/safe", sessionHandler.Safe)
			})
		})
	})

	return app
}

// Start launches the background workers.
func (app *App) Start() {
	app.Expirer.Start()
	go app.limiter.RunCleanup(limiterCleanupInterval, limiterMaxIdle, app.stopLimiter)
}

// Stop halts the background workers started by Start.
func (app *App) Stop() {
	app.Expirer.Stop()
	close(app.stopLimiter)
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		body := buildconfig.VersionInfo()
		body["status"] = "ok"
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (app *App) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"version":    buildconfig.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy interfaces at compile time.
var (
	_ domain.TenantStore  = (*store.TenantStore)(nil)
	_ domain.SessionStore = (*store.SessionStore)(nil)
	_ domain.TenantStore  = (*kv.TenantStore)(nil)
	_ domain.SessionStore = (*kv.SessionStore)(nil)
)
