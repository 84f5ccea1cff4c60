package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Signup creates an account. Signup is slow on a cold backend, so it gets a
// longer timeout and more retries than other calls.
func (c *Client) Signup(ctx context.Context, email, password, nickname, phoneNumber string) (*AuthResult, error) {
	body := map[string]string{
		"email":        email,
		"password":     password,
		"nickname":     nickname,
		"phone_number": phoneNumber,
	}

	c.logger.Debug().Str("email", email).Msg("Signing up")

	resp, err := c.Do(ctx, http.MethodPost, "/api/users/signup", body,
		WithTimeout(30*time.Second),
		WithRetries(2),
	)
	if err != nil {
		return nil, err
	}

	res, err := NormalizeAuthResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	if res.AccessToken != "" {
		if err := c.SetToken(res.AccessToken); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Login authenticates and holds the returned session token. The user's id,
// nickname, avatar and email are cached for the fallback profile.
//
// A response without a recognized token field yields ErrNoAccessToken and
// leaves any held token unchanged.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	c.logger.Debug().Str("email", email).Msg("Logging in")

	resp, err := c.Do(ctx, http.MethodPost, "/api/users/login", body)
	if err != nil {
		return nil, err
	}

	res, err := NormalizeAuthResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		c.logger.Warn().Msg("Login response has no access token")
		return res, ErrNoAccessToken
	}

	if err := c.SetToken(res.AccessToken); err != nil {
		return nil, err
	}
	c.remember(KeyUserID, string(res.UserID))
	c.remember(KeyNickname, res.Nickname)
	c.remember(KeyProfileImageURL, res.ProfileImageURL)
	c.remember(KeyUserEmail, email)

	c.logger.Info().
		Str("user_id", string(res.UserID)).
		Str("nickname", res.Nickname).
		Msg("Logged in")

	return res, nil
}

// Logout forgets the session token and sends the user to the login page
func (c *Client) Logout() error {
	err := c.ClearToken()
	c.navigator.Redirect(c.loginURL)
	return err
}

// Me fetches the current user. Server errors are retried; if they persist the
// cached profile is returned with IsFallback set instead of an error.
func (c *Client) Me(ctx context.Context) (*User, error) {
	if c.Token() == "" {
		stored, found, err := c.store.Get(KeyAccessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to load stored token: %w", err)
		}
		if !found || stored == "" {
			c.logger.Warn().Msg("No session token held")
			return nil, ErrNotLoggedIn
		}
		if err := c.SetToken(stored); err != nil {
			return nil, err
		}
	}

	policy := RetryPolicy{
		MaxAttempts: c.meAttempts,
		Retryable:   IsServerError,
		Backoff:     LinearBackoff(c.meBackoffStep),
	}
	notify := func(retry int, err error, wait time.Duration) {
		c.logger.Warn().
			Err(err).
			Int("retry", retry).
			Dur("wait", wait).
			Msg("Server error fetching current user, retrying")
	}

	// quiet is true while the failing attempt suppressed its own notice
	quiet := false
	user, err := runWithRetry(ctx, policy, c.sleep, notify, func(attempt int) (*User, error) {
		opts := []RequestOption{WithoutLoading()}
		quiet = attempt < policy.attempts()
		if quiet {
			opts = append(opts, WithoutErrorNotice())
		}
		return doJSON[User](ctx, c, http.MethodGet, "/api/users/me", nil, opts...)
	})
	if err == nil {
		c.remember(KeyUserID, string(user.UserID))
		c.remember(KeyUserEmail, user.Email)
		c.remember(KeyNickname, user.Nickname)
		c.remember(KeyProfileImageURL, user.ProfileImageURL)
		return user, nil
	}

	if !IsServerError(err) {
		// failures that are not retried end the loop early, on a quiet attempt
		if quiet {
			c.notifyFailure(err)
		}
		return nil, err
	}

	fallback := &User{
		UserID:          ID(c.recall(KeyUserID, "unknown")),
		Email:           c.recall(KeyUserEmail, "unknown@example.com"),
		Nickname:        c.recall(KeyNickname, "User"),
		ProfileImageURL: c.recall(KeyProfileImageURL, ""),
		IsFallback:      true,
	}
	c.logger.Warn().
		Err(err).
		Str("user_id", string(fallback.UserID)).
		Msg("Falling back to cached profile")
	c.notifier.Warning(MsgFallbackProfile)

	return fallback, nil
}

// UpdateMe patches the current user's profile with the given fields
func (c *Client) UpdateMe(ctx context.Context, patch map[string]any) (*User, error) {
	return doJSON[User](ctx, c, http.MethodPatch, "/api/users/me", patch)
}
