package handler

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"chatbot-devserver/internal/config"
)

// StaticHandler serves the chatbot web app from the static root.
// Lookups go through an os.Root, so neither ".." nor symlinks can leave it.
type StaticHandler struct {
	root   *os.Root
	fsys   fs.FS
	index  string
	logger *slog.Logger
}

// NewStaticHandler opens the configured static root.
func NewStaticHandler(cfg *config.Config, logger *slog.Logger) (*StaticHandler, error) {
	root, err := os.OpenRoot(cfg.Static.Root)
	if err != nil {
		return nil, fmt.Errorf("open static root %q: %w", cfg.Static.Root, err)
	}

	return &StaticHandler{
		root:   root,
		fsys:   root.FS(),
		index:  cfg.Static.Index,
		logger: logger.With("component", "static_handler"),
	}, nil
}

// Close releases the static root.
func (h *StaticHandler) Close() error {
	return h.root.Close()
}

// Serve answers GET and HEAD for any path. Directories fall back to the
// index document; anything that does not resolve to a regular file is 404.
func (h *StaticHandler) Serve(c echo.Context) error {
	name, ok := h.resolve(c.Request().URL.Path)
	if !ok {
		h.logger.Debug("static file not found", "path", c.Request().URL.Path)
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "File not found",
		})
	}
	return echo.StaticFileHandler(name, h.fsys)(c)
}

// resolve maps a URL path to a regular file name inside the root.
func (h *StaticHandler) resolve(urlPath string) (string, bool) {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", false
	}

	info, err := fs.Stat(h.fsys, name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		name = path.Join(name, h.index)
		info, err = fs.Stat(h.fsys, name)
		if err != nil {
			return "", false
		}
	}
	if !info.Mode().IsRegular() {
		return "", false
	}
	return name, true
}
