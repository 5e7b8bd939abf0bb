// Package handlers implements the HTTP API surface of pdf-workbench.
package handlers

import (
	"pdf-workbench/internal/bridge"
	"pdf-workbench/internal/database"
	"pdf-workbench/internal/media"
	"pdf-workbench/internal/startup"
)

// Handlers holds dependencies for all HTTP handlers
type Handlers struct {
	db     *database.Database
	media  *media.Service
	bridge *bridge.Bridge
	config *startup.Config
}

// New creates a new Handlers instance
func New(db *database.Database, mediaService *media.Service, b *bridge.Bridge, config *startup.Config) *Handlers {
	return &Handlers{
		db:     db,
		media:  mediaService,
		bridge: b,
		config: config,
	}
}
