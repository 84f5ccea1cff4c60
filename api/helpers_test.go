package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/moasaja/moasaja/storage"
)

type fakeLoading struct {
	mu    sync.Mutex
	shows int
	hides int
}

func (f *fakeLoading) Show(string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shows++
}

func (f *fakeLoading) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hides++
}

func (f *fakeLoading) counts() (shows, hides int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shows, f.hides
}

type fakeNotifier struct {
	mu       sync.Mutex
	errors   []string
	warnings []string
	infos    []string
	success  []string
}

func (f *fakeNotifier) Success(m string) { f.add(&f.success, m) }
func (f *fakeNotifier) Error(m string)   { f.add(&f.errors, m) }
func (f *fakeNotifier) Warning(m string) { f.add(&f.warnings, m) }
func (f *fakeNotifier) Info(m string)    { f.add(&f.infos, m) }

func (f *fakeNotifier) add(dst *[]string, m string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*dst = append(*dst, m)
}

func (f *fakeNotifier) errorMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.errors...)
}

func (f *fakeNotifier) warningMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.warnings...)
}

type fakeNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (f *fakeNavigator) Redirect(target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
}

func (f *fakeNavigator) redirects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.targets...)
}

// sleepRecorder replaces real waits and records them
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

// doerFunc adapts a function to HTTPDoer
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

var errStoreDown = errors.New("store unavailable")

// brokenStore fails every operation
type brokenStore struct{}

func (brokenStore) Get(string) (string, bool, error) { return "", false, errStoreDown }
func (brokenStore) Set(string, string) error         { return errStoreDown }
func (brokenStore) Delete(string) error              { return errStoreDown }

type testEnv struct {
	client    *Client
	store     *storage.MemoryStore
	loading   *fakeLoading
	notifier  *fakeNotifier
	navigator *fakeNavigator
	sleeps    *sleepRecorder
}

// newTestEnv starts a server for handler and returns a client pointed at it
// with recording collaborators and no real sleeping or redirect delay.
func newTestEnv(t *testing.T, handler http.HandlerFunc, opts ...Option) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return newTestEnvURL(t, server.URL, opts...)
}

func newTestEnvURL(t *testing.T, baseURL string, opts ...Option) *testEnv {
	t.Helper()

	env := &testEnv{
		store:     storage.NewMemory(),
		loading:   &fakeLoading{},
		notifier:  &fakeNotifier{},
		navigator: &fakeNavigator{},
		sleeps:    &sleepRecorder{},
	}

	base := []Option{
		WithBaseURL(baseURL),
		WithLoading(env.loading),
		WithNotifier(env.notifier),
		WithNavigator(env.navigator),
		WithRedirectDelay(0),
	}
	client, err := NewClient(env.store, zerolog.Nop(), append(base, opts...)...)
	require.NoError(t, err)
	client.sleep = env.sleeps.sleep
	env.client = client
	return env
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
