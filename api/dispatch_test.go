package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoAuthorizationHeader(t *testing.T) {
	var gotAuth atomic.Value
	var hasAuth atomic.Bool
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Header["Authorization"]
		hasAuth.Store(ok)
		gotAuth.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})
	ctx := context.Background()

	t.Run("no token", func(t *testing.T) {
		_, err := env.client.Do(ctx, http.MethodGet, "/api/posts", nil)
		require.NoError(t, err)
		assert.False(t, hasAuth.Load())
	})

	t.Run("with token", func(t *testing.T) {
		require.NoError(t, env.client.SetToken("abc123"))
		_, err := env.client.Do(ctx, http.MethodGet, "/api/posts", nil)
		require.NoError(t, err)
		assert.True(t, hasAuth.Load())
		assert.Equal(t, "Bearer abc123", gotAuth.Load())
	})

	t.Run("token cleared", func(t *testing.T) {
		require.NoError(t, env.client.ClearToken())
		_, err := env.client.Do(ctx, http.MethodGet, "/api/posts", nil)
		require.NoError(t, err)
		assert.False(t, hasAuth.Load())
	})
}

func TestDoHeaders(t *testing.T) {
	var got http.Header
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, `{}`)
	})
	env.client.requestID = func() string { return "req-1" }

	_, err := env.client.Do(context.Background(), http.MethodPost, "/api/posts", map[string]string{"a": "b"},
		WithHeader("content-type", "text/plain"),
		WithHeader("X-Extra", "yes"),
	)
	require.NoError(t, err)

	assert.Equal(t, "text/plain", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "yes", got.Get("X-Extra"))
	assert.Equal(t, "req-1", got.Get("X-Request-ID"))
}

func TestDoSendsBodyAndQuery(t *testing.T) {
	var body, query string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		query = r.URL.RawQuery
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := env.client.Do(context.Background(), http.MethodPost, "/api/x",
		map[string]int{"n": 1},
		WithQuery(map[string][]string{"page": {"2"}}),
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, body)
	assert.Equal(t, "page=2", query)
}

func TestDoResponseBody(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/text" {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("pong"))
			return
		}
		writeJSON(w, http.StatusOK, `{"value":42}`)
	})
	ctx := context.Background()

	resp, err := env.client.Do(ctx, http.MethodGet, "/json", nil)
	require.NoError(t, err)
	data, err := resp.Data()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": json.Number("42")}, data)

	resp, err = env.client.Do(ctx, http.MethodGet, "/text", nil)
	require.NoError(t, err)
	data, err = resp.Data()
	require.NoError(t, err)
	assert.Equal(t, "pong", data)

	var v map[string]any
	assert.ErrorIs(t, resp.Decode(&v), ErrNotJSON)
}

func TestDoUnauthorized(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"bad token"}`)
	})
	require.NoError(t, env.client.SetToken("stale"))

	_, err := env.client.Do(context.Background(), http.MethodGet, "/api/users/me", nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrAuthExpired)
	assert.Equal(t, KindAuthExpired, KindOf(err))
	assert.Empty(t, env.client.Token())
	_, found, _ := env.store.Get(KeyAccessToken)
	assert.False(t, found)
	assert.Equal(t, []string{MsgAuthExpired}, env.notifier.errorMessages())
	assert.Equal(t, []string{DefaultLoginURL}, env.navigator.redirects())

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestDoUnauthorizedRedirectsWithoutNotice(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, WithLoginURL("/login"))
	require.NoError(t, env.client.SetToken("stale"))

	_, err := env.client.Do(context.Background(), http.MethodGet, "/x", nil, WithoutErrorNotice())
	assert.ErrorIs(t, err, ErrAuthExpired)
	assert.Empty(t, env.notifier.errorMessages())
	assert.Equal(t, []string{"/login"}, env.navigator.redirects())
}

func TestDoUnauthorizedDelayedRedirect(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, WithRedirectDelay(10*time.Millisecond))

	_, err := env.client.Do(context.Background(), http.MethodGet, "/x", nil)
	assert.ErrorIs(t, err, ErrAuthExpired)
	assert.Eventually(t, func() bool {
		return len(env.navigator.redirects()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDoServerError(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantMessage string
	}{
		{"message field", "application/json", `{"message":"X"}`, "X"},
		{"error field", "application/json", `{"error":"db down"}`, "db down"},
		{"detail field", "application/json", `{"detail":"oops"}`, "oops"},
		{"detail list", "application/json", `{"detail":[{"msg":"a"},{"msg":"b"}]}`, "a; b"},
		{"no recognized field", "application/json", `{"code":1}`, MsgServerError},
		{"empty json body", "application/json", ``, MsgServerError},
		{"plain text", "text/plain", `upstream exploded`, "upstream exploded"},
		{"empty text", "text/plain", ``, MsgServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := env.client.Do(context.Background(), http.MethodGet, "/api/posts", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrServer)
			assert.Equal(t, tt.wantMessage, err.Error())
			assert.Equal(t, int32(1), calls.Load(), "server errors are not retried by the dispatcher")
			assert.Equal(t, []string{tt.wantMessage}, env.notifier.errorMessages())
		})
	}
}

func TestDoRequestFailed(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusBadRequest, `{"message":"title required"}`)
	})
	ctx := context.Background()

	_, err := env.client.Do(ctx, http.MethodPost, "/bad", nil)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "title required", err.Error())

	_, err = env.client.Do(ctx, http.MethodGet, "/missing", nil, WithoutErrorNotice())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindRequestFailed, apiErr.Kind)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Request failed. (404)", apiErr.Message)
	assert.Equal(t, http.MethodGet, apiErr.Method)
	assert.Equal(t, "/missing", apiErr.Path)

	assert.Equal(t, []string{"title required"}, env.notifier.errorMessages())
}

func TestDoRetriesTransportFailures(t *testing.T) {
	for _, retries := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("retries=%d", retries), func(t *testing.T) {
			var attempts atomic.Int32
			env := newTestEnvURL(t, "http://backend.invalid", WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
				attempts.Add(1)
				return nil, errors.New("connection refused")
			})))

			_, err := env.client.Do(context.Background(), http.MethodGet, "/api/posts", nil, WithRetries(retries))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNetwork)
			assert.Equal(t, MsgNetworkError, err.Error())
			assert.Equal(t, int32(retries+1), attempts.Load())

			var want []time.Duration
			for k := 1; k <= retries; k++ {
				want = append(want, time.Duration(k)*500*time.Millisecond)
			}
			assert.Equal(t, want, env.sleeps.recorded())
			assert.Equal(t, []string{MsgNetworkError}, env.notifier.errorMessages())
		})
	}
}

func TestDoRecoversOnSecondAttempt(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	}))
	defer server.Close()

	env := newTestEnvURL(t, server.URL, WithHTTPClient(doerFunc(func(req *http.Request) (*http.Response, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("connection reset")
		}
		return http.DefaultClient.Do(req)
	})))

	resp, err := env.client.Do(context.Background(), http.MethodGet, "/api/posts", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), attempts.Load())
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, env.sleeps.recorded())
	assert.Empty(t, env.notifier.errorMessages())
}

func TestDoTimeout(t *testing.T) {
	var attempts atomic.Int32
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		<-r.Context().Done()
	})

	_, err := env.client.Do(context.Background(), http.MethodGet, "/slow", nil,
		WithTimeout(20*time.Millisecond),
		WithRetries(1),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, MsgTimeoutError, err.Error())
	assert.Equal(t, int32(2), attempts.Load())
	assert.Len(t, env.sleeps.recorded(), 1)
}

func TestDoCanceled(t *testing.T) {
	var attempts atomic.Int32
	env := newTestEnvURL(t, "http://backend.invalid", WithHTTPClient(doerFunc(func(req *http.Request) (*http.Response, error) {
		attempts.Add(1)
		return nil, req.Context().Err()
	})))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.client.Do(ctx, http.MethodGet, "/api/posts", nil, WithRetries(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.Equal(t, int32(1), attempts.Load())
	assert.Empty(t, env.notifier.errorMessages())
}

func TestDoLoadingHiddenOnEveryPath(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			writeJSON(w, http.StatusOK, `{}`)
		case "/401":
			w.WriteHeader(http.StatusUnauthorized)
		case "/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	})
	ctx := context.Background()

	for _, path := range []string{"/ok", "/401", "/500", "/418"} {
		_, _ = env.client.Do(ctx, http.MethodGet, path, nil)
	}
	_, _ = env.client.Do(ctx, http.MethodGet, "/ok", nil, WithoutLoading())

	shows, hides := env.loading.counts()
	assert.Equal(t, 4, shows)
	assert.Equal(t, 4, hides)
}

func TestDoLoadingHiddenAfterTransportFailure(t *testing.T) {
	env := newTestEnvURL(t, "http://backend.invalid", WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("down")
	})))

	_, err := env.client.Do(context.Background(), http.MethodGet, "/x", nil)
	require.Error(t, err)
	shows, hides := env.loading.counts()
	assert.Equal(t, 1, shows)
	assert.Equal(t, 1, hides)
}

// feedbackLog records loading and notice calls in the order they happen
type feedbackLog struct {
	fakeNotifier
	mu     sync.Mutex
	events []string
}

func (f *feedbackLog) record(e string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *feedbackLog) Show(string)      { f.record("show") }
func (f *feedbackLog) Hide()            { f.record("hide") }
func (f *feedbackLog) Error(m string)   { f.record("error: " + m) }
func (f *feedbackLog) Warning(m string) { f.record("warning: " + m) }

func (f *feedbackLog) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func TestDoHidesLoadingBeforeNotice(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		handler http.HandlerFunc
		doer    HTTPDoer
		notice  string
	}{
		{
			name: "server error",
			path: "/500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusInternalServerError, `{"message":"db down"}`)
			},
			notice: "db down",
		},
		{
			name: "request failed",
			path: "/404",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusNotFound, `{"message":"no such post"}`)
			},
			notice: "no such post",
		},
		{
			name: "session expired",
			path: "/401",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			notice: MsgAuthExpired,
		},
		{
			name: "network",
			path: "/x",
			doer: doerFunc(func(*http.Request) (*http.Response, error) {
				return nil, errors.New("down")
			}),
			notice: MsgNetworkError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &feedbackLog{}
			opts := []Option{WithLoading(log), WithNotifier(log), WithDefaultRetries(0)}
			var env *testEnv
			if tt.doer != nil {
				env = newTestEnvURL(t, "http://backend.invalid", append(opts, WithHTTPClient(tt.doer))...)
			} else {
				env = newTestEnv(t, tt.handler, opts...)
			}

			_, err := env.client.Do(context.Background(), http.MethodGet, tt.path, nil)
			require.Error(t, err)
			assert.Equal(t, []string{"show", "hide", "error: " + tt.notice}, log.recorded())
		})
	}
}

func TestDoCapturesTokenAtIssue(t *testing.T) {
	release := make(chan struct{})
	seen := make(chan string, 1)
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("Authorization")
		<-release
		writeJSON(w, http.StatusOK, `{}`)
	})
	require.NoError(t, env.client.SetToken("first"))

	done := make(chan error, 1)
	go func() {
		_, err := env.client.Do(context.Background(), http.MethodGet, "/x", nil)
		done <- err
	}()

	assert.Equal(t, "Bearer first", <-seen)
	require.NoError(t, env.client.SetToken("second"))
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "second", env.client.Token())
}
