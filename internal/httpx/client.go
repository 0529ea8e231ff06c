// Package httpx provides the one shared HTTP client pool used by every
// outbound call in SFE (SERP submit/poll, content-type probes, page
// fetches, hosted-crawler calls), and a small rotating User-Agent pool.
package httpx

import (
	"net"
	"net/http"
	"time"
)

// NewClient builds the shared client with a tuned transport: bounded
// connections per host, idle-connection reuse, and DNS-friendly dial
// timeouts. Per-call deadlines are applied via context, never by mutating
// this client's Timeout field.
func NewClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
	}
}
