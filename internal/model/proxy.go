// Package model defines shared types for the proxy.
package model

import (
	"context"
	"net/http"
)

// ProxyRequest is a client call to the proxied route, buffered in full.
type ProxyRequest struct {
	Ctx  context.Context
	Body []byte
}

// ProxyResponse is the backend reply relayed back to the client.
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
