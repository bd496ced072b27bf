// Package utils holds small helpers shared by the internal packages:
// hex and address validation, and the pooled HTTP transport used for
// the downstream node.
package utils

import (
	"net/http"
	"time"
)

// CreateTransport returns a keep-alive transport with a bounded idle pool.
//
// headerTimeout caps the wait for response headers; zero leaves it to the
// caller's http.Client timeout.
//
//	transport := CreateTransport(100, 90*time.Second, 10*time.Second)
//	client := &http.Client{Transport: transport}
func CreateTransport(maxIdle int, idleTimeout, headerTimeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdle,
		IdleConnTimeout:       idleTimeout,
		ResponseHeaderTimeout: headerTimeout,
	}
}
