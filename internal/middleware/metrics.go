package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

// RegisterMetrics wires Prometheus request metrics into the app and exposes
// them on /metrics.
func RegisterMetrics(app *fiber.App) {
	prom := fiberprometheus.New("kominn-api")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)
}
