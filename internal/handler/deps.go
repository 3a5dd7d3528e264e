/*
Package handler provides the admin HTTP handlers and routing setup for the chirpd server.
*/
package handler

import (
	"time"

	"chirpd/internal/app/directory"
	"chirpd/internal/app/registry"
	"chirpd/internal/configs"
)

// AppDeps bundles the shared dependencies every admin handler needs.
type AppDeps struct {
	Config    *configs.AppConfig
	Registry  *registry.Registry
	Directory *directory.Directory
	StartedAt time.Time
}
