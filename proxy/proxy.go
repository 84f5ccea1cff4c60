// Package proxy serves a local CORS proxy in front of the marketplace
// backend, so a frontend on localhost can call the API without the backend
// allowing its origin.
package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/moasaja/moasaja/api"
)

// Defaults
const (
	DefaultPort    = 3001
	DefaultBackend = api.DefaultBaseURL
	DefaultOrigin  = "https://login-baa7f.web.app"
)

// UpstreamErrorMessage is returned when the backend can't be reached
const UpstreamErrorMessage = "Unable to reach the backend server."

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, Authorization, X-Requested-With",
	"Access-Control-Max-Age":       "86400",
}

func setCORS(h http.Header) {
	for k, v := range corsHeaders {
		h.Set(k, v)
	}
}

// New returns a handler forwarding requests to backend with the Origin
// header replaced by origin. Preflight requests are answered locally.
func New(backend, origin string, logger zerolog.Logger) (http.Handler, error) {
	target, err := url.Parse(backend)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid backend URL: %q", backend)
	}
	if origin == "" {
		origin = DefaultOrigin
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
			pr.Out.Header.Set("Origin", origin)
		},
		ModifyResponse: func(resp *http.Response) error {
			setCORS(resp.Header)
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Proxy request failed")

			setCORS(w.Header())
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": UpstreamErrorMessage})
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			setCORS(w.Header())
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.RequestURI()).
			Str("target", target.String()).
			Msg("Forwarding request")

		rp.ServeHTTP(w, r)

		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("latency", time.Since(start)).
			Msg("Request forwarded")
	}), nil
}
