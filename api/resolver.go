package api

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/moasaja/moasaja/storage"
)

// DefaultBaseURL is the production backend origin
const DefaultBaseURL = "https://moasaja.onrender.com"

// deploymentSuffixes are hosting platforms whose frontends talk to the production backend
var deploymentSuffixes = []string{
	"onrender.com",
	"vercel.app",
	"netlify.app",
}

var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// Resolver picks the backend origin. First match wins:
//  1. Override
//  2. the value persisted under KeyBaseURL
//  3. a known deployment host
//  4. a loopback host
//  5. DefaultURL
//
// Loopback hosts also get the production backend.
type Resolver struct {
	Override string
	// Host is the host the client runs under (the page host in a browser)
	Host string
	// DefaultURL replaces DefaultBaseURL when set
	DefaultURL string
	Store      storage.Store
	Logger     zerolog.Logger
}

// Resolve never fails: any storage error falls back to the default origin.
func (r Resolver) Resolve() string {
	fallback := r.defaultURL()

	if o := strings.TrimSpace(r.Override); o != "" {
		return normalizeBaseURL(o)
	}

	if r.Store != nil {
		stored, found, err := r.Store.Get(KeyBaseURL)
		if err != nil {
			r.Logger.Warn().Err(err).Str("fallback", fallback).Msg("Failed to read stored API base URL, using default")
			return fallback
		}
		if found && strings.TrimSpace(stored) != "" {
			r.Logger.Debug().Str("base_url", stored).Msg("Loaded API base URL from storage")
			return normalizeBaseURL(stored)
		}
	}

	host := strings.ToLower(strings.TrimSpace(r.Host))
	for _, suffix := range deploymentSuffixes {
		if strings.HasSuffix(host, suffix) {
			return fallback
		}
	}
	if loopbackHosts[host] {
		r.Logger.Debug().Str("host", host).Str("base_url", fallback).Msg("Local host detected, using production backend")
		return fallback
	}

	r.Logger.Debug().Str("base_url", fallback).Msg("Using default API base URL")
	return fallback
}

func (r Resolver) defaultURL() string {
	if d := strings.TrimSpace(r.DefaultURL); d != "" {
		return normalizeBaseURL(d)
	}
	return DefaultBaseURL
}

func normalizeBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
