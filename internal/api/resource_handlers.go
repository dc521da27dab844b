package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/lxd-resource-dashboard/internal/dashboard"
	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

func (s *Server) ListResourcesOfCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := models.ParseCategory(chi.URLParam(r, "category"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown category")
		return
	}
	s.load(r, dashboard.TabFor(category))

	items, state := s.Loader.Collection(category)
	switch state.Status {
	case models.FetchPending:
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"status": "pending",
			"items":  items,
		})
	case models.FetchFailed:
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"status": "failed",
			"error":  state.Error,
			"items":  items,
		})
	default:
		writeJSON(w, http.StatusOK, items)
	}
}
