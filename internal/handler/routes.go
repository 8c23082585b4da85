package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatbot-devserver/internal/config"
	"chatbot-devserver/internal/metrics"
)

// RegisterRoutes wires the route table onto the Echo instance. OPTIONS is
// answered for every path by the CORS middleware before routing matters.
// Exact routes win over the "/*" catch-alls.
func RegisterRoutes(
	e *echo.Echo,
	cfg *config.Config,
	m *metrics.Metrics,
	proxy *ProxyHandler,
	static *StaticHandler,
	health *HealthHandler,
) {
	e.GET(config.HealthzPath, health.Healthz)
	e.GET(config.StatusPath, health.Status)

	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	e.POST(cfg.Proxy.Path, proxy.Handle)
	e.POST("/*", proxy.NotFound)

	e.GET("/*", static.Serve)
	e.HEAD("/*", static.Serve)
}
