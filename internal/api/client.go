// Package api provides the HTTP client used for outbound API calls.
//
// Performance benefits:
//   - Connection reuse avoids a TCP/TLS handshake per request
//   - Keep-alive connections are shared by every goroutine using the client
package api

import (
	"net/http"
	"time"
)

// NewHTTPClient creates a new HTTP client with connection pooling.
//
// Connection pool configuration:
//   - MaxIdleConns: 100 idle connections across all hosts
//   - MaxIdleConnsPerHost: 10, enough for the bot worker pool talking to one API host
//   - IdleConnTimeout: 90 seconds before an idle connection is closed
//
// Parameters:
//   - timeout: Maximum time for a complete request (including reading response),
//     0 for none when callers set deadlines per request
//
// Returns:
//   - *http.Client: Configured HTTP client, safe for concurrent use
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}
