package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"chatbot-devserver/internal/model"
	"chatbot-devserver/internal/service"
)

// ProxyHandler relays the proxied route to the backend.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle reads the request body, forwards it to the backend and writes the
// backend's status and body back as application/json.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	// The route matches on path alone; a query string makes it a different endpoint.
	if req.URL.RawQuery != "" || req.URL.ForceQuery {
		return h.NotFound(c)
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		// BodyLimit reports oversize bodies through the reader.
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		h.logger.Error("read request body", "err", err, "path", req.URL.Path)
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "could not read request body",
		})
	}

	resp, err := h.service.Forward(&model.ProxyRequest{
		Ctx:  req.Context(),
		Body: body,
	})
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Blob(resp.StatusCode, echo.MIMEApplicationJSON, resp.Body)
}

// NotFound answers POSTs to any path other than the proxied route.
func (h *ProxyHandler) NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]string{
		"error": "API endpoint not found",
	})
}

// mapError turns a forwarding failure into a client response. The cause is
// logged and never sent to the client.
func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	path := c.Request().URL.Path

	if errors.Is(err, service.ErrBackendUnavailable) {
		h.logger.Warn("backend unavailable", "err", err, "path", path)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "Backend service unavailable",
		})
	}

	h.logger.Error("proxy error", "err", err, "path", path)
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "Internal server error",
	})
}
