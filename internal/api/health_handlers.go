package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

const healthTimeout = 5 * time.Second

type healthResponse struct {
	Status  string        `json:"status"`
	Version string        `json:"version,omitempty"`
	Source  string        `json:"source"`
	Auth    string        `json:"auth,omitempty"`
	Health  models.Health `json:"source_health"`
}

// Healthz pings the inventory source. The dashboard itself stays up when the
// source is down, so a failed ping answers 503 only for the source check.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	src := s.Loader.Source()
	err := src.Ping(ctx)
	s.Health.SetHealth(err)

	resp := healthResponse{
		Status:  "ok",
		Version: s.Version,
		Source:  src.Describe(),
		Health:  s.Health.Health(),
	}
	if s.Conn != nil {
		resp.Auth = s.Conn.MaskedToken()
	}
	if err != nil {
		s.Log.Warn("health-check: source ping failed", zap.Error(err))
		resp.Status = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
