package controllers

import (
	"time"

	"magazine-catalog-api/services"
)

// Dependencies are the long-lived collaborators handlers need beyond config.DB.
type Dependencies struct {
	OcrRegistry *services.OcrRegistry
	OcrTimeout  time.Duration
	Notifier    services.ImportNotifier
}

var deps Dependencies

// Configure is called once at startup, before the router serves requests.
func Configure(d Dependencies) {
	deps = d
}
