package webhook

import (
	"context"
	"net/http"
	"sort"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.deps.Pingers))
	for name := range s.deps.Pingers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.deps.Pingers[name].Ping(ctx); err != nil {
			s.logger.Warn("Readiness check failed", map[string]interface{}{
				"component": name,
				"error":     err.Error(),
			})
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":    "unavailable",
				"component": name,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}
