package api

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MaxConcurrency bounds the requests an aggregate view has in flight
const MaxConcurrency = 4

// MyMatching returns the posts the current user joined, optionally filtered by status
func (c *Client) MyMatching(ctx context.Context, status MatchingStatus) ([]MatchingEntry, error) {
	return c.matching(ctx, status)
}

func (c *Client) matching(ctx context.Context, status MatchingStatus, opts ...RequestOption) ([]MatchingEntry, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid matching status %q", status)
	}
	if status != MatchingAll {
		opts = append(opts, WithQuery(url.Values{"status": {string(status)}}))
	}
	return listJSON[MatchingEntry](ctx, c, "/api/users/me/matching", []string{"matching"}, opts...)
}

// MyTransactions returns the completed group purchases
func (c *Client) MyTransactions(ctx context.Context) ([]MatchingEntry, error) {
	return c.transactions(ctx)
}

func (c *Client) transactions(ctx context.Context, opts ...RequestOption) ([]MatchingEntry, error) {
	return listJSON[MatchingEntry](ctx, c, "/api/users/me/transactions", []string{"transactions", "matching"}, opts...)
}

// MyCancellations returns the group purchases the user left or that were cancelled
func (c *Client) MyCancellations(ctx context.Context) ([]MatchingEntry, error) {
	return c.cancellations(ctx)
}

func (c *Client) cancellations(ctx context.Context, opts ...RequestOption) ([]MatchingEntry, error) {
	return listJSON[MatchingEntry](ctx, c, "/api/users/me/cancellations", []string{"cancellations", "matching"}, opts...)
}

// HistoryType tags where a history entry came from
type HistoryType string

const (
	HistoryMatching     HistoryType = "matching"
	HistoryTransaction  HistoryType = "transaction"
	HistoryCancellation HistoryType = "cancellation"
)

// HistoryEntry is one line of the participation history
type HistoryEntry struct {
	MatchingEntry
	Type HistoryType `json:"type"`
}

// History is the merged participation history, newest first
type History struct {
	Entries []HistoryEntry `json:"entries"`
	// Unavailable lists the sources that failed and were left out
	Unavailable []HistoryType `json:"unavailable,omitempty"`
}

// History fetches matching, transactions and cancellations concurrently and
// merges them. Matching is required; the other two are left out with a
// warning when they fail, unless the session expired or ctx ended.
func (c *Client) History(ctx context.Context) (*History, error) {
	c.loading.Show("Loading history...")
	defer c.loading.Hide()

	quiet := []RequestOption{WithoutLoading(), WithoutErrorNotice()}

	var (
		mu   sync.Mutex
		hist = &History{}
	)
	collect := func(kind HistoryType, items []MatchingEntry, status MatchingStatus) {
		mu.Lock()
		defer mu.Unlock()
		for _, item := range items {
			if status != "" {
				item.Status = status
			}
			hist.Entries = append(hist.Entries, HistoryEntry{MatchingEntry: item, Type: kind})
		}
	}
	optional := func(kind HistoryType, err error) error {
		if errors.Is(err, ErrAuthExpired) || errors.Is(err, ErrCanceled) {
			return err
		}
		c.logger.Warn().Err(err).Str("source", string(kind)).Msg("History source unavailable")
		mu.Lock()
		hist.Unavailable = append(hist.Unavailable, kind)
		mu.Unlock()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrency)

	g.Go(func() error {
		items, err := c.matching(gctx, MatchingAll, quiet...)
		if err != nil {
			return err
		}
		collect(HistoryMatching, items, "")
		return nil
	})
	g.Go(func() error {
		items, err := c.transactions(gctx, quiet...)
		if err != nil {
			return optional(HistoryTransaction, err)
		}
		collect(HistoryTransaction, items, MatchingCompleted)
		return nil
	})
	g.Go(func() error {
		items, err := c.cancellations(gctx, quiet...)
		if err != nil {
			return optional(HistoryCancellation, err)
		}
		collect(HistoryCancellation, items, MatchingCancelled)
		return nil
	})

	if err := g.Wait(); err != nil {
		c.notifyFailure(err)
		return nil, err
	}

	slices.SortStableFunc(hist.Entries, func(a, b HistoryEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})
	slices.SortFunc(hist.Unavailable, func(a, b HistoryType) int {
		return cmp.Compare(a, b)
	})
	if hist.Entries == nil {
		hist.Entries = []HistoryEntry{}
	}
	return hist, nil
}

// MatchingSummary counts the user's participations by status
type MatchingSummary struct {
	All     int `json:"all"`
	Waiting int `json:"waiting"`
	Success int `json:"success"`
	Closed  int `json:"closed"`
}

// MatchingSummary runs the four matching queries concurrently and counts the results
func (c *Client) MatchingSummary(ctx context.Context) (*MatchingSummary, error) {
	c.loading.Show("Loading matching summary...")
	defer c.loading.Hide()

	quiet := []RequestOption{WithoutLoading(), WithoutErrorNotice()}
	summary := &MatchingSummary{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrency)

	count := func(status MatchingStatus, dst *int) {
		g.Go(func() error {
			items, err := c.matching(gctx, status, quiet...)
			if err != nil {
				return err
			}
			*dst = len(items)
			return nil
		})
	}
	count(MatchingAll, &summary.All)
	count(MatchingWaiting, &summary.Waiting)
	count(MatchingSuccess, &summary.Success)
	count(MatchingClosed, &summary.Closed)

	if err := g.Wait(); err != nil {
		c.notifyFailure(err)
		return nil, err
	}
	return summary, nil
}

// notifyFailure reports an aggregate failure once. Sibling requests that were
// canceled because of it stay silent.
func (c *Client) notifyFailure(err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind != KindCanceled {
		c.notifier.Error(apiErr.Message)
	}
}
