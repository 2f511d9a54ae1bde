// Package http builds outbound HTTP clients for market data provider adapters.
package http

import (
	"net"
	"net/http"
	"time"
)

const userAgent = "stock-watchlist/1.0"

// NewProviderClient returns the client a provider adapter talks to its API with.
// timeout bounds the whole request including the body. Quote batches fan out to one host,
// hence the per-host idle pool.
func NewProviderClient(provider string, timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &providerTransport{provider: provider, next: t},
	}
}

// providerTransport identifies the app to the provider and asks for JSON.
type providerTransport struct {
	provider string
	next     http.RoundTripper
}

func (p *providerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent+" ("+p.provider+")")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	return p.next.RoundTrip(req)
}
