package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Do performs one logical request against the backend. path is relative to
// the base URL and body, when not nil, is sent as JSON.
//
// Transport failures (timeouts, network errors) are retried with linear
// backoff; HTTP error statuses are never retried here. Every failure comes
// back as an *Error. A 401 clears the session token and redirects to the
// login page.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	rc := requestConfig{
		timeout:     c.defaultTimeout,
		retries:     c.defaultRetries,
		showLoading: true,
		showErrors:  true,
	}
	for _, opt := range opts {
		opt(&rc)
	}

	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	baseURL, token := c.snapshot()
	target := baseURL + path
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	requestID := c.requestID()
	header.Set("X-Request-ID", requestID)
	for k, vs := range rc.header {
		header[k] = vs
	}

	// the indicator is gone before any notice below prints
	hide := func() {}
	if rc.showLoading {
		c.loading.Show("Processing...")
		hide = sync.OnceFunc(c.loading.Hide)
		defer hide()
	}

	log := c.logger.With().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Logger()

	policy := RetryPolicy{
		MaxAttempts: rc.retries + 1,
		Retryable:   IsTransportRetryable,
		Backoff:     LinearBackoff(c.backoffStep),
	}
	notify := func(retry int, err error, wait time.Duration) {
		log.Warn().
			Err(err).
			Int("retry", retry).
			Int("max_retries", rc.retries).
			Dur("wait", wait).
			Msg("Retrying request")
	}

	start := time.Now()
	resp, err := runWithRetry(ctx, policy, c.sleep, notify, func(int) (*Response, error) {
		return c.attempt(ctx, method, target, payload, header, rc.timeout)
	})
	hide()
	if err != nil {
		apiErr := c.transportFailure(ctx, err, method, path)
		log.Error().Err(err).Str("kind", apiErr.Kind.String()).Msg("Request failed")
		// the caller gave up, there is nobody to tell
		if rc.showErrors && apiErr.Kind != KindCanceled {
			c.notifier.Error(apiErr.Message)
		}
		return nil, apiErr
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Request completed")

	return c.classify(resp, method, path, rc, log)
}

// attempt sends one request bounded by timeout and reads the whole body
func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, header http.Header, timeout time.Duration) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = header.Clone()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, attemptCtx, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(ctx, attemptCtx, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       b,
	}, nil
}

// classifyTransport labels a failed attempt. The caller's context takes
// precedence; only the attempt's own deadline counts as a timeout.
func classifyTransport(ctx, attemptCtx context.Context, err error) *Error {
	switch {
	case ctx.Err() != nil:
		return &Error{Kind: KindCanceled, Message: MsgCanceled, Err: err}
	case errors.Is(attemptCtx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: MsgTimeoutError, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: MsgTimeoutError, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: MsgNetworkError, Err: err}
}

// transportFailure turns the last error of the retry loop into an *Error
func (c *Client) transportFailure(ctx context.Context, err error, method, path string) *Error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if ctx.Err() != nil {
			apiErr = &Error{Kind: KindCanceled, Message: MsgCanceled, Err: err}
		} else {
			apiErr = &Error{Kind: KindNetwork, Message: MsgNetworkError, Err: err}
		}
	}
	apiErr.Method = method
	apiErr.Path = path
	return apiErr
}

func (c *Client) classify(resp *Response, method, path string, rc requestConfig, log zerolog.Logger) (*Response, error) {
	status := resp.StatusCode
	if status >= 200 && status < 300 {
		return resp, nil
	}

	switch status {
	case http.StatusUnauthorized:
		log.Error().Msg("Session token expired or invalid")
		if err := c.ClearToken(); err != nil {
			log.Warn().Err(err).Msg("Failed to clear stored token")
		}
		if rc.showErrors {
			c.notifier.Error(MsgAuthExpired)
		}
		c.redirectToLogin()
		return nil, &Error{
			Kind:       KindAuthExpired,
			StatusCode: status,
			Message:    MsgAuthExpired,
			Method:     method,
			Path:       path,
		}

	case http.StatusInternalServerError:
		msg := errorMessage(resp, MsgServerError)
		log.Error().
			Int("status", status).
			Bytes("body", resp.Body).
			Str("message", msg).
			Msg("Server error")
		if rc.showErrors {
			c.notifier.Error(msg)
		}
		return nil, &Error{
			Kind:       KindServer,
			StatusCode: status,
			Message:    msg,
			Method:     method,
			Path:       path,
		}

	default:
		msg := errorMessage(resp, fmt.Sprintf("Request failed. (%d)", status))
		log.Error().
			Int("status", status).
			Str("message", msg).
			Msg("API request failed")
		if rc.showErrors {
			c.notifier.Error(msg)
		}
		return nil, &Error{
			Kind:       KindRequestFailed,
			StatusCode: status,
			Message:    msg,
			Method:     method,
			Path:       path,
		}
	}
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		return payload, nil
	}
}
