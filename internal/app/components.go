package app

import "go.trai.ch/stitch/internal/core/ports"

// Components holds the resolved dependencies the command line needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

// NewComponents creates a new Components instance.
func NewComponents(app *App, logger ports.Logger) *Components {
	return &Components{
		App:    app,
		Logger: logger,
	}
}
