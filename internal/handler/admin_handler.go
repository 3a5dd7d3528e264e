/*
Package handler provides the admin HTTP handlers and routing setup for the chirpd server.

This file contains the read-only operational endpoints.
*/
package handler

import (
	"net/http"
	"time"

	"chirpd/internal/pkg/resp"
)

// HandleStats reports a point-in-time view of the registry: connected users,
// group count and sizes, plus process uptime.
func HandleStats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := deps.Registry.Snapshot()

		resp.RespondSuccess(w, r, map[string]any{
			"connectedUsers": stats.ConnectedUsers,
			"groupCount":     stats.GroupCount,
			"groupSizes":     stats.GroupSizes,
			"uptimeSeconds":  int64(time.Since(deps.StartedAt).Seconds()),
		})
	}
}
