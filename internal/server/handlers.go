package server

import (
	"context"
	"net/http"
	"time"

	"github.com/erickalfaro/my-dashboard/internal/common"
)

// handleHealth reports liveness and storage reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	storage := "ok"
	if err := s.app.Storage.Ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Health check storage ping failed")
		status = http.StatusServiceUnavailable
		storage = "unavailable"
	}

	WriteJSON(w, status, map[string]interface{}{
		"status":       http.StatusText(status),
		"storage":      storage,
		"live_clients": s.app.LiveHub.ClientCount(),
		"uptime":       time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}
