package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/dashboard"
	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// load starts the tab's fetches and waits up to the page wait. A timeout is
// not an error: the view then renders the loading state.
func (s *Server) load(r *http.Request, tab dashboard.Tab) {
	ctx, cancel := context.WithTimeout(r.Context(), s.pageWait())
	defer cancel()
	if err := s.Loader.Load(ctx, tab); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		s.Log.Debug("dashboard load interrupted", zap.String("tab", string(tab)), zap.Error(err))
	}
}

func (s *Server) ServeDashboardPage(w http.ResponseWriter, r *http.Request) {
	tab := dashboard.ParseTab(r.URL.Query().Get("tab"))
	s.load(r, tab)

	data := pageData{
		Title:   "LXD Resources",
		Version: s.Version,
		Source:  s.Loader.Source().Describe(),
		View:    s.Loader.View(tab),
	}

	var buf bytes.Buffer
	if err := renderPage(&buf, data); err != nil {
		s.Log.Error("dashboard render failed", zap.Error(err))
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// ?wait=false skips waiting for fetches.
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	tab := dashboard.ParseTab(r.URL.Query().Get("tab"))
	if r.URL.Query().Get("wait") == "false" {
		s.Loader.Start(tab)
	} else {
		s.load(r, tab)
	}

	body, err := json.Marshal(s.Loader.View(tab))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	etag := fmt.Sprintf(`"%x"`, xxhash.Sum64(body))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
	w.Write([]byte("\n"))
}

// ?category= limits the refresh to one category.
func (s *Server) RefreshDashboard(w http.ResponseWriter, r *http.Request) {
	var fetches []*models.Fetch
	if name := r.URL.Query().Get("category"); name != "" {
		category, ok := models.ParseCategory(name)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		s.Loader.RefreshCategory(category)
		fetches = s.Loader.Start(dashboard.TabFor(category))
	} else {
		s.Loader.Refresh()
		fetches = s.Loader.Start(dashboard.TabOverview)
	}
	ids := make(map[string]string, len(fetches))
	for _, f := range fetches {
		ids[string(f.Category)] = f.ID
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":  "refreshing",
		"fetches": ids,
	})
}
