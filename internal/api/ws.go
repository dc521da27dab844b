package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rflorenc/lxd-resource-dashboard/internal/dashboard"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsWriteWait  = 5 * time.Second
	wsPingPeriod = 30 * time.Second
)

// summaryMessage is pushed to websocket clients.
type summaryMessage struct {
	Summary        dashboard.Summary      `json:"summary"`
	ShowEmptyState bool                   `json:"show_empty_state"`
	Errors         []dashboard.FetchError `json:"errors,omitempty"`
}

func (s *Server) summary() summaryMessage {
	v := s.Loader.View(dashboard.TabOverview)
	return summaryMessage{Summary: v.Summary, ShowEmptyState: v.ShowEmptyState, Errors: v.Errors}
}

// StreamDashboard pushes the Overview summary on connect and whenever a
// category fetch settles.
func (s *Server) StreamDashboard(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	updates, cancel := s.Loader.Store().Subscribe()
	defer cancel()
	s.Loader.Start(dashboard.TabOverview)

	// Drain client frames so close and pong messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(s.summary()); err != nil {
			s.Log.Debug("websocket write failed", zap.Error(err))
			return false
		}
		return true
	}
	if !send() {
		return
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case _, ok := <-updates:
			if !ok || !send() {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
