package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moasaja/moasaja/storage"
)

// Keys under which the client persists state
const (
	KeyAccessToken     = "access_token"
	KeyUserID          = "userId"
	KeyUserEmail       = "userEmail"
	KeyNickname        = "nickname"
	KeyProfileImageURL = "profile_image_url"
	KeyBaseURL         = "api_base_url"
)

// Defaults
const (
	DefaultTimeout       = 15 * time.Second
	DefaultRetries       = 1
	DefaultBackoffStep   = 500 * time.Millisecond
	DefaultRedirectDelay = 1500 * time.Millisecond
	DefaultLoginURL      = "/pages/login.html"
)

// HTTPDoer is the part of *http.Client the dispatcher needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the marketplace backend. It owns the session token and the
// backend origin; both are safe to change while requests are in flight, and
// each request uses the values current when it was issued.
type Client struct {
	mu      sync.RWMutex
	baseURL string
	token   string

	httpClient HTTPDoer
	store      storage.Store
	logger     zerolog.Logger
	resolver   Resolver

	loading   Loading
	notifier  Notifier
	navigator Navigator

	defaultTimeout time.Duration
	defaultRetries int
	backoffStep    time.Duration
	loginURL       string
	redirectDelay  time.Duration

	// meAttempts and meBackoffStep drive Me's server-error retries
	meAttempts    int
	meBackoffStep time.Duration

	sleep     sleepFunc
	requestID func() string
}

// NewClient creates a client backed by store. The origin is resolved once
// here; the session token is loaded from store.
func NewClient(store storage.Store, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: storage is required", ErrInvalidConfig)
	}

	c := &Client{
		httpClient:     &http.Client{},
		store:          store,
		logger:         logger,
		loading:        nopLoading{},
		notifier:       nopNotifier{},
		navigator:      nopNavigator{},
		defaultTimeout: DefaultTimeout,
		defaultRetries: DefaultRetries,
		backoffStep:    DefaultBackoffStep,
		loginURL:       DefaultLoginURL,
		redirectDelay:  DefaultRedirectDelay,
		meAttempts:     3,
		meBackoffStep:  time.Second,
		sleep:          sleepContext,
		requestID:      uuid.NewString,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.resolver.Store = store
	c.resolver.Logger = logger
	c.baseURL = c.resolver.Resolve()

	token, _, err := store.Get(KeyAccessToken)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load stored access token")
	}
	c.token = stripBearer(token)

	return c, nil
}

// BaseURL returns the backend origin in use
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL switches the backend origin. Empty input is ignored. Unless
// persist is false the origin is also stored for future runs.
func (c *Client) SetBaseURL(baseURL string, persist bool) error {
	baseURL = normalizeBaseURL(baseURL)
	if baseURL == "" {
		return nil
	}

	c.mu.Lock()
	c.baseURL = baseURL
	c.mu.Unlock()

	if !persist {
		return nil
	}
	if err := c.store.Set(KeyBaseURL, baseURL); err != nil {
		return fmt.Errorf("failed to persist base URL: %w", err)
	}
	return nil
}

// ResetBaseURL removes the persisted origin and re-runs resolution
func (c *Client) ResetBaseURL() error {
	if err := c.store.Delete(KeyBaseURL); err != nil {
		return fmt.Errorf("failed to remove stored base URL: %w", err)
	}
	resolved := c.resolver.Resolve()

	c.mu.Lock()
	c.baseURL = resolved
	c.mu.Unlock()
	return nil
}

// Token returns the held session token, or "" when logged out
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken holds token for future requests and persists it
func (c *Client) SetToken(token string) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return c.ClearToken()
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if err := c.store.Set(KeyAccessToken, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// ClearToken forgets the session token in memory and in storage
func (c *Client) ClearToken() error {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()

	if err := c.store.Delete(KeyAccessToken); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// snapshot returns the origin and token for a request being issued
func (c *Client) snapshot() (baseURL, token string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL, c.token
}

func (c *Client) redirectToLogin() {
	target := c.loginURL
	if c.redirectDelay <= 0 {
		c.navigator.Redirect(target)
		return
	}
	time.AfterFunc(c.redirectDelay, func() {
		c.navigator.Redirect(target)
	})
}

// remember persists a display value, logging instead of failing
func (c *Client) remember(key, value string) {
	if value == "" {
		return
	}
	if err := c.store.Set(key, value); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache value")
	}
}

func (c *Client) recall(key, fallback string) string {
	v, found, err := c.store.Get(key)
	if err != nil || !found || v == "" {
		return fallback
	}
	return v
}

func stripBearer(s string) string {
	if len(s) >= 7 && strings.EqualFold(s[:7], "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
