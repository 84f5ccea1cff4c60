package api

import (
	"net/http"
	"net/url"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for requests
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithBaseURL forces the backend origin, skipping stored and host-based resolution
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.resolver.Override = baseURL
	}
}

// WithHost sets the host name used for host-based origin resolution
func WithHost(host string) Option {
	return func(c *Client) {
		c.resolver.Host = host
	}
}

// WithDefaultURL replaces the production origin used when nothing else matches
func WithDefaultURL(defaultURL string) Option {
	return func(c *Client) {
		c.resolver.DefaultURL = defaultURL
	}
}

// WithDefaultTimeout sets the per-attempt timeout for requests that don't set one
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.defaultTimeout = timeout
		}
	}
}

// WithDefaultRetries sets the transport retry count for requests that don't set one
func WithDefaultRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.defaultRetries = retries
		}
	}
}

// WithBackoffStep sets the linear backoff step between transport retries
func WithBackoffStep(step time.Duration) Option {
	return func(c *Client) {
		if step >= 0 {
			c.backoffStep = step
		}
	}
}

// WithLoading sets the loading indicator
func WithLoading(l Loading) Option {
	return func(c *Client) {
		if l != nil {
			c.loading = l
		}
	}
}

// WithNotifier sets the user notification sink
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithNavigator sets what happens when the session expires
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		if n != nil {
			c.navigator = n
		}
	}
}

// WithLoginURL sets the redirect target used on logout and session expiry
func WithLoginURL(target string) Option {
	return func(c *Client) {
		if target != "" {
			c.loginURL = target
		}
	}
}

// WithRedirectDelay sets how long to wait before redirecting after a 401.
// Zero redirects synchronously.
func WithRedirectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.redirectDelay = d
		}
	}
}

// RequestOption configures a single Do call.
type RequestOption func(*requestConfig)

type requestConfig struct {
	timeout     time.Duration
	retries     int
	showLoading bool
	showErrors  bool
	header      http.Header
	query       url.Values
}

// WithTimeout bounds each attempt of this request
func WithTimeout(timeout time.Duration) RequestOption {
	return func(rc *requestConfig) {
		if timeout > 0 {
			rc.timeout = timeout
		}
	}
}

// WithRetries sets how many extra attempts a transport failure gets
func WithRetries(retries int) RequestOption {
	return func(rc *requestConfig) {
		if retries >= 0 {
			rc.retries = retries
		}
	}
}

// WithoutLoading suppresses the loading indicator
func WithoutLoading() RequestOption {
	return func(rc *requestConfig) {
		rc.showLoading = false
	}
}

// WithoutErrorNotice suppresses the error notification on failure.
// Session expiry still redirects.
func WithoutErrorNotice() RequestOption {
	return func(rc *requestConfig) {
		rc.showErrors = false
	}
}

// WithHeader sets a header, overriding the client defaults
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		if rc.header == nil {
			rc.header = make(http.Header)
		}
		rc.header.Set(key, value)
	}
}

// WithQuery adds query parameters
func WithQuery(params url.Values) RequestOption {
	return func(rc *requestConfig) {
		if len(params) == 0 {
			return
		}
		if rc.query == nil {
			rc.query = make(url.Values)
		}
		for k, vs := range params {
			for _, v := range vs {
				rc.query.Add(k, v)
			}
		}
	}
}
