package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
)

// doJSON performs a request and decodes the JSON body into T
func doJSON[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (*T, error) {
	resp, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return nil, err
	}
	var out T
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return &out, nil
}

// decodeList accepts either a bare JSON array or an object holding the array
// under the first of keys present, or under "data". An empty body decodes to
// an empty list.
func decodeList[T any](resp *Response, keys ...string) ([]T, error) {
	key := "list"
	if len(keys) > 0 {
		key = keys[0]
	}
	if !resp.IsJSON() {
		return nil, fmt.Errorf("%w: content type %q", ErrNotJSON, resp.Header.Get("Content-Type"))
	}
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || string(body) == "null" {
		return []T{}, nil
	}

	if body[0] == '[' {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", key, err)
		}
		return items, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	var raw json.RawMessage
	found := false
	for _, k := range append(slices.Clip(keys), "data") {
		if raw, found = wrapped[k]; found {
			break
		}
	}
	if !found || string(raw) == "null" {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return items, nil
}

// listJSON performs a GET and decodes a list response
func listJSON[T any](ctx context.Context, c *Client, path string, keys []string, opts ...RequestOption) ([]T, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, nil, opts...)
	if err != nil {
		return nil, err
	}
	return decodeList[T](resp, keys...)
}
