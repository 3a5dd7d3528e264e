/*
Package handler provides the admin HTTP handlers and routing setup for the chirpd server.

This file defines the admin Router, applying middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers
(stats, metrics, and the WebSocket bridge).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"chirpd/internal/pkg/limiter"
	"chirpd/internal/pkg/logx"
	"chirpd/internal/pkg/resp"
)

// Router sets up the admin HTTP routing table (chi.Router).
// It configures CORS, applies global middleware, and mounts the health, stats,
// metrics, and WebSocket bridge endpoints.
func Router(deps *AppDeps) http.Handler {
	wsLimiter := limiter.NewIPRateLimiter(
		rate.Limit(deps.Config.Limits.WsConnectRate),
		deps.Config.Limits.WsConnectBurst,
	)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.Admin.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Log.Development {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Log.Development {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.Admin.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.Admin.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "chirpd",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/stats", HandleStats(deps))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/ws", wsLimiter.Middleware(HandleWebSocket(wsUpgrader, deps)).ServeHTTP)

	return r
}
