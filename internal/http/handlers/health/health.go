// Package health exposes a database connectivity probe for uptime
// monitors and load balancers. It reads nothing from the students table
// and is not part of the resource API.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/students-service/internal/storage"
	"github.com/aanand-mishra/students-service/internal/utils/response"
)

// probeTimeout bounds how long the probe waits for the database.
const probeTimeout = 5 * time.Second

// Status is the probe's response body.
type Status struct {
	Status       string `json:"status"`
	ServerTime   string `json:"server_time,omitempty"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// Check handles GET /api/health.
//
//	200 OK                   — { "status": "ok", "server_time": "..." }
//	503 Service Unavailable  — { "status": "error", "error": "..." }
func Check(checker storage.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		start := time.Now()
		now, err := checker.ServerTime(ctx)
		elapsed := time.Since(start)

		if err != nil {
			slog.Error("database health check failed",
				slog.Duration("response_time", elapsed),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, Status{
				Status:       response.StatusError,
				ResponseTime: elapsed.String(),
				Error:        err.Error(),
			})
			return
		}

		slog.Debug("database health check passed", slog.Duration("response_time", elapsed))
		writeJSON(w, http.StatusOK, Status{
			Status:       response.StatusOK,
			ServerTime:   now,
			ResponseTime: elapsed.String(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	if err := response.WriteJSON(w, status, data); err != nil {
		slog.Error("failed to write health response", slog.String("error", err.Error()))
	}
}
