package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/dashboard"
	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// defaultPageWait bounds how long a page render waits for enabled fetches
// before rendering the loading state.
const defaultPageWait = 2 * time.Second

// Server holds shared state for all handlers.
type Server struct {
	Loader   *dashboard.Loader
	Conn     *models.Connection
	Health   *models.HealthTracker
	Log      *zap.Logger
	Version  string
	PageWait time.Duration
}

func (s *Server) pageWait() time.Duration {
	if s.PageWait <= 0 {
		return defaultPageWait
	}
	return s.PageWait
}

// NewRouter builds the chi router with the dashboard, API and websocket routes.
func NewRouter(s *Server) http.Handler {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	if s.Health == nil {
		s.Health = &models.HealthTracker{}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.Log))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/dashboard", http.StatusFound)
	})
	r.Get("/dashboard", s.ServeDashboardPage)
	r.Get("/healthz", s.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.GetDashboard)
		r.Post("/dashboard/refresh", s.RefreshDashboard)
		r.Get("/resources/{category}", s.ListResourcesOfCategory)
	})

	// WebSocket (outside /api to avoid JSON content-type assumptions)
	r.Get("/ws/dashboard", s.StreamDashboard)

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, If-None-Match")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
