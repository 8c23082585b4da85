// Package service implements the proxy forwarding logic.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"syscall"

	"chatbot-devserver/internal/client"
	"chatbot-devserver/internal/config"
	"chatbot-devserver/internal/metrics"
	"chatbot-devserver/internal/model"
)

// ErrBackendUnavailable is returned when the backend could not be reached at
// all (connection refused, DNS failure, dial error). It is joined with the
// underlying cause.
var ErrBackendUnavailable = errors.New("backend service unavailable")

// ProxyService forwards the proxied route to the backend.
type ProxyService struct {
	client  *client.BackendClient
	logger  *slog.Logger
	metrics *metrics.Metrics
	target  string
}

// NewProxyService creates a ProxyService targeting <upstream base><proxy path>.
// The metrics parameter is optional.
func NewProxyService(c *client.BackendClient, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*ProxyService, error) {
	target, err := cfg.UpstreamURL()
	if err != nil {
		return nil, err
	}

	return &ProxyService{
		client:  c,
		logger:  logger.With("component", "proxy_service"),
		metrics: m,
		target:  target,
	}, nil
}

// Target returns the backend URL requests are forwarded to.
func (s *ProxyService) Target() string {
	return s.target
}

// Forward makes exactly one backend call with the request body. The outbound
// Content-Type is always application/json. Unreachable backends are reported
// as ErrBackendUnavailable; every other failure is returned wrapped.
func (s *ProxyService) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	s.logger.Debug("forwarding request",
		"target", s.target,
		"bytes", len(pr.Body),
	)

	resp, err := s.client.PostJSON(pr.Ctx, s.target, pr.Body)
	if err != nil {
		if isUnreachable(err) {
			s.recordFailure("unavailable")
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		s.recordFailure("error")
		return nil, fmt.Errorf("forward to backend: %w", err)
	}

	// The client always receives application/json; note when the backend disagrees.
	if ct := resp.Header.Get("Content-Type"); !isJSON(ct) {
		s.logger.Debug("backend content type overridden",
			"content_type", ct,
			"status", resp.StatusCode,
		)
	}

	return resp, nil
}

func (s *ProxyService) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.UpstreamFailures.WithLabelValues(reason).Inc()
	}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

// isUnreachable reports whether err means no connection to the backend was
// established. Timeouts are never "unreachable", even when they happen while dialing.
func isUnreachable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
