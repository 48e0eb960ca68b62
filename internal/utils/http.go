// Package utils provides common utility functions for internal packages.
//
// This package contains shared functionality that is used across
// multiple internal modules, including hex, validation and HTTP utilities.
package utils

import (
	"net/http"
	"time"
)

// CreateTransport creates the HTTP transport used for outbound lookups.
//
// Connection pooling is owned by the transport, not by callers:
//   - MaxIdleConns / MaxIdleConnsPerHost: idle connections kept for reuse
//   - IdleConnTimeout: how long an idle connection is kept
//   - ResponseHeaderTimeout: upper bound for receiving response headers
//   - Proxy: honours HTTP_PROXY / HTTPS_PROXY / NO_PROXY
//
// Parameters:
//   - maxIdle: Maximum idle connections
//   - idleTimeout: Timeout for idle connections
//
// Returns:
//   - *http.Transport: Configured HTTP transport instance
//
// Example:
//
//	transport := CreateTransport(100, 90*time.Second)
//	client := &http.Client{Transport: transport}
func CreateTransport(maxIdle int, idleTimeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdle,
		IdleConnTimeout:       idleTimeout,
		ResponseHeaderTimeout: 10 * time.Second,
	}
}
