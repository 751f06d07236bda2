package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/config"
	"github.com/ruudy-sib/payhook/internal/port/primary"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// NewRouter creates a chi router with all application routes registered.
func NewRouter(
	cfg *config.Config,
	service primary.NotificationService,
	store secondary.RecordStore,
	healthChecks []secondary.HealthChecker,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(cfg)))

	// Gateway notifications
	r.Method(http.MethodPost, "/webhook", NewWebhookHandler(service, logger))

	// Browser redirects
	redirects := NewRedirectHandler(service, logger)
	r.Get("/payment/success", redirects.Success)
	r.Get("/payment/failure", redirects.Failure)

	// Health check endpoint
	r.Method(http.MethodGet, "/health", NewHealthHandler(store.Name(), healthChecks))

	return r
}

func corsOptions(cfg *config.Config) cors.Options {
	options := cors.Options{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With", "X-Request-Id"},
		MaxAge:         300,
	}

	if len(cfg.CorsAllowedOrigins) > 0 {
		options.AllowedOrigins = cfg.CorsAllowedOrigins
	} else {
		options.AllowOriginFunc = func(_ *http.Request, _ string) bool {
			return true
		}
	}
	return options
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request handled",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
