// Package api provides a client for the moasaja group-buying marketplace backend.
//
// Every call goes through a single dispatcher that attaches the session token,
// bounds each attempt with a timeout, retries transport failures and turns
// failed responses into classified errors.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Resolver: picks the backend origin (override, stored, host based, production)
//   - Client: holds the session token and origin and dispatches requests
//   - RetryPolicy: attempt count, retry predicate and backoff shared by the dispatcher and Me
//   - Operations: typed wrappers for auth, posts, comments, reviews, wishlist and matching
//   - Loading, Notifier, Navigator: user feedback hooks with no-op defaults
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	store, err := storage.NewFile("") // ~/.moasaja/state.json
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := api.NewClient(store, logger,
//		api.WithBaseURL("https://moasaja.onrender.com"),
//		api.WithDefaultTimeout(10*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if _, err := client.Login(ctx, "me@example.com", "secret"); err != nil {
//		log.Fatal(err)
//	}
//	posts, err := client.ListPosts(ctx, api.ListPostsParams{Page: 1, Limit: 20})
//
// # Error Handling
//
// Failed requests return *Error. Its Kind is one of auth_expired, server,
// request_failed, network, timeout or canceled, and it matches the sentinel
// for that kind:
//
//	if errors.Is(err, api.ErrAuthExpired) {
//		// token was cleared; log in again
//	}
//
// Only network and timeout failures are retried by the dispatcher. Me
// additionally retries server errors and falls back to the cached profile.
package api
