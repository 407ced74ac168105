package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/achworks/achd/internal/api/handlers"
	mw "github.com/achworks/achd/internal/api/middleware"
	"github.com/achworks/achd/internal/buildconfig"
	"github.com/achworks/achd/internal/metrics"
	"github.com/achworks/achd/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Options tunes the HTTP layer. Zero values fall back to defaults.
type Options struct {
	RateLimitRPS      float64
	RateLimitBurst    int
	AgentCookieSecure bool
}

// App holds the router and the request counters behind /metrics.
type App struct {
	Router       *chi.Mux
	Workspace    *service.WorkspaceService
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(svc *service.WorkspaceService, prom *metrics.Metrics, logger *zap.Logger, opts Options) *App {
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 100
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 20
	}

	sessionHandler := handlers.NewSessionHandler(svc)
	hypothesisHandler := handlers.NewHypothesisHandler(svc)
	evidenceHandler := handlers.NewEvidenceHandler(svc)
	cellHandler := handlers.NewCellHandler(svc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Workspace: svc,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount, prom)

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                         // Generate/extract request ID first
	r.Use(middleware.RealIP)                                    // Extract real IP
	r.Use(mw.AgentCookie(opts.AgentCookieSecure))               // Identify the user agent
	r.Use(metricsCollector.Middleware)                          // Collect metrics
	r.Use(mw.Logging(logger))                                   // Log all requests
	r.Use(middleware.Recoverer)                                 // Recover from panics
	r.Use(mw.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst)) // Rate limiting

	r.Get("/health", healthHandler(svc))
	r.Get("/metrics", app.metricsHandler())
	r.Method(http.MethodGet, "/metrics/prometheus", prom.Handler())

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Get("/", sessionHandler.List)
		r.Post("/", sessionHandler.Create)
		r.Delete("/", sessionHandler.DiscardAll)

		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Post("/switch", sessionHandler.Switch)
			r.Post("/duplicate", sessionHandler.Duplicate)
			r.Get("/scores", sessionHandler.Scores)

			r.Route("/hypotheses", func(r chi.Router) {
				r.Post("/", hypothesisHandler.Add)
				r.Route("/{hid}", func(r chi.Router) {
					r.Put("/", hypothesisHandler.Rename)
					r.Delete("/", hypothesisHandler.Remove)
					r.Get("/score", hypothesisHandler.Score)
				})
			})

			r.Route("/evidence", func(r chi.Router) {
				r.Post("/", evidenceHandler.Add)
				r.Route("/{eid}", func(r chi.Router) {
					r.Patch("/", evidenceHandler.Update)
					r.Delete("/", evidenceHandler.Remove)
				})
			})

			r.Put("/cells/{hid}/{eid}", cellHandler.Rate)
		})
	})

	return app
}

func healthHandler(svc *service.WorkspaceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := svc.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		body := buildconfig.VersionInfo()
		body["status"] = "ok"
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"sessions":       app.Workspace.SessionCount(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
