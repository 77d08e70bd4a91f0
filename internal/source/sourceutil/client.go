package sourceutil

import (
	"net"
	"net/http"
	"time"
)

const userAgent = "GrantFinder/1.0 (+local)"

// NewHTTPClient builds a pooled client with an overall per-call timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// SetHeaders applies the shared request identity.
func SetHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/xml, text/html")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")
}
