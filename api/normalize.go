package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// AuthResult is a login or signup response mapped onto one shape
type AuthResult struct {
	AccessToken     string `json:"access_token"`
	TokenType       string `json:"token_type,omitempty"`
	UserID          ID     `json:"user_id,omitempty"`
	Nickname        string `json:"nickname,omitempty"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`

	// Raw is the response as received
	Raw json.RawMessage `json:"-"`
}

var (
	tokenFields  = []string{"access_token", "accessToken", "token"}
	userIDFields = []string{"user_id", "userId", "id"}
)

// NormalizeAuthResponse maps the token and user fields of an auth response.
// The token may be named access_token, accessToken or token, at the top level
// or inside "data"; the user id may be named user_id, userId or id, at the top
// level or inside "user". A missing token is not an error here.
func NormalizeAuthResponse(body []byte) (*AuthResult, error) {
	res := &AuthResult{Raw: json.RawMessage(bytes.Clone(body))}
	if len(bytes.TrimSpace(body)) == 0 {
		return res, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("failed to parse auth response: %w", err)
	}

	data := nestedObject(top, "data")
	user := nestedObject(top, "user")
	if user == nil && data != nil {
		user = nestedObject(data, "user")
	}

	res.AccessToken = stripBearer(firstString(tokenFields, top, data))
	res.TokenType = firstString([]string{"token_type", "tokenType"}, top, data)
	res.UserID = ID(firstString(userIDFields, top, user, data))
	res.Nickname = firstString([]string{"nickname"}, top, user, data)
	res.Email = firstString([]string{"email"}, top, user, data)
	res.ProfileImageURL = firstString([]string{"profile_image_url"}, top, user, data)

	return res, nil
}

func nestedObject(obj map[string]json.RawMessage, key string) map[string]json.RawMessage {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil
	}
	return nested
}

// firstString returns the first non-empty string or number found under any of
// fields, searching the objects in order
func firstString(fields []string, objects ...map[string]json.RawMessage) string {
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		for _, field := range fields {
			raw, ok := obj[field]
			if !ok {
				continue
			}
			var id ID
			if err := json.Unmarshal(raw, &id); err != nil {
				continue
			}
			if s := strings.TrimSpace(string(id)); s != "" {
				return s
			}
		}
	}
	return ""
}
