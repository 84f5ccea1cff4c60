package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// Response is a fully read backend response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsJSON reports whether the content type says JSON
func (r *Response) IsJSON() bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.Contains(strings.ToLower(ct), "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Text returns the body as a string
func (r *Response) Text() string {
	return string(r.Body)
}

// Data returns the decoded JSON value for JSON responses and the body text otherwise
func (r *Response) Data() (any, error) {
	if !r.IsJSON() {
		return r.Text(), nil
	}
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil, nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return v, nil
}

// Decode unmarshals a JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if !r.IsJSON() {
		return fmt.Errorf("%w: content type %q", ErrNotJSON, r.Header.Get("Content-Type"))
	}
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// errorMessage pulls a human-readable message out of an error response:
// the first non-empty of message, error, detail; else the raw text; else fallback.
func errorMessage(r *Response, fallback string) string {
	data, err := r.Data()
	if err != nil {
		// JSON header with a broken body: show what the server sent
		if text := strings.TrimSpace(r.Text()); text != "" {
			return text
		}
		return fallback
	}

	switch v := data.(type) {
	case map[string]any:
		for _, field := range []string{"message", "error", "detail"} {
			if msg := messageText(v[field]); msg != "" {
				return msg
			}
		}
	case string:
		if text := strings.TrimSpace(v); text != "" {
			return text
		}
	}
	return fallback
}

// messageText renders a message field. Validation errors arrive as a list of
// objects carrying "msg"; those are joined.
func messageText(v any) string {
	switch m := v.(type) {
	case string:
		return strings.TrimSpace(m)
	case map[string]any:
		if s, ok := m["message"].(string); ok {
			return s
		}
		if s, ok := m["msg"].(string); ok {
			return s
		}
	case []any:
		var parts []string
		for _, item := range m {
			if s := messageText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
