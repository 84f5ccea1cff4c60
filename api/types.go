package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// the backend parses prices as integers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// ID is a backend identifier. The backend is inconsistent about sending ids as
// numbers or strings, so both decode into ID.
type ID string

// UnmarshalJSON accepts a JSON string, number or null
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Time is a timestamp that also accepts the zone-less layouts the backend uses
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses s with the first matching layout
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Time{t}, nil
		}
	}
	return Time{}, fmt.Errorf("unrecognized time %q", s)
}

// UnmarshalJSON parses any of the supported layouts; null and "" give the zero time
func (t *Time) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Time{}
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON writes the local wall clock without a zone, as the post form does
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Local().Format("2006-01-02T15:04:05"))
}

// User is a marketplace account
type User struct {
	UserID          ID     `json:"user_id"`
	Email           string `json:"email"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	// IsFallback marks a user built from cached values because the server kept failing
	IsFallback bool `json:"is_fallback,omitempty"`
}

// GetDisplayName returns the best available display name for the user
func (u *User) GetDisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	if u.Email != "" {
		return u.Email
	}
	return string(u.UserID)
}

// Author is the public profile attached to posts, comments and reviews
type Author struct {
	UserID          ID     `json:"user_id"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// PostStatus is the recruiting state of a post
type PostStatus string

const (
	PostStatusRecruiting PostStatus = "recruiting"
	PostStatusMatched    PostStatus = "matched"
	PostStatusClosed     PostStatus = "closed"
)

// Post is a group-buying listing
type Post struct {
	PostID              ID              `json:"post_id"`
	PostType            string          `json:"post_type"`
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	MainImageURL        string          `json:"main_image_url,omitempty"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	PerPersonPrice      decimal.Decimal `json:"per_person_price"`
	TargetParticipants  int             `json:"target_participants"`
	CurrentParticipants int             `json:"current_participants"`
	PickupDatetime      Time            `json:"pickup_datetime"`
	EndDate             Time            `json:"end_date"`
	PickupLocationText  string          `json:"pickup_location_text"`
	Status              PostStatus      `json:"status,omitempty"`
	Author              *Author         `json:"author,omitempty"`
	AuthorID            ID              `json:"author_id,omitempty"`
	IsWishlisted        bool            `json:"is_wishlisted"`
	IsUrgent            bool            `json:"is_urgent"`
	IsNew               bool            `json:"is_new"`
	CreatedAt           Time            `json:"created_at"`
}

// UnmarshalJSON also accepts the id under "id"
func (p *Post) UnmarshalJSON(b []byte) error {
	type alias Post
	aux := struct {
		*alias
		LegacyID ID `json:"id"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if p.PostID == "" {
		p.PostID = aux.LegacyID
	}
	if p.AuthorID == "" && p.Author != nil {
		p.AuthorID = p.Author.UserID
	}
	return nil
}

// SpotsLeft returns how many participants are still needed
func (p *Post) SpotsLeft() int {
	return max(p.TargetParticipants-p.CurrentParticipants, 0)
}

// IsFull reports whether the target participant count is reached
func (p *Post) IsFull() bool {
	return p.TargetParticipants > 0 && p.CurrentParticipants >= p.TargetParticipants
}

// PerPerson returns the per-person price, deriving it from the total when missing
func (p *Post) PerPerson() decimal.Decimal {
	if !p.PerPersonPrice.IsZero() || p.TargetParticipants <= 0 {
		return p.PerPersonPrice
	}
	return p.TotalPrice.Div(decimal.NewFromInt(int64(p.TargetParticipants))).Floor()
}

// AuthorName returns the author's nickname when present
func (p *Post) AuthorName() string {
	if p.Author != nil {
		return p.Author.Nickname
	}
	return ""
}

// PostList is one page of posts
type PostList struct {
	Posts []Post `json:"posts"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// HasMore reports whether more pages exist after this one
func (pl *PostList) HasMore() bool {
	if pl.Limit <= 0 || pl.Page <= 0 {
		return false
	}
	return pl.Page*pl.Limit < pl.Total
}

// Comment is a post comment; ParentCommentID is set on replies
type Comment struct {
	CommentID       ID     `json:"comment_id"`
	PostID          ID     `json:"post_id"`
	UserID          ID     `json:"user_id"`
	Nickname        string `json:"nickname"`
	Content         string `json:"content"`
	ParentCommentID *ID    `json:"parent_comment_id,omitempty"`
	CreatedAt       Time   `json:"created_at"`
}

// Review is a rating left after a completed group purchase
type Review struct {
	ReviewID  ID      `json:"review_id"`
	PostID    ID      `json:"post_id"`
	PostTitle string  `json:"post_title"`
	Rating    int     `json:"rating"`
	Comment   string  `json:"comment"`
	Reviewer  *Author `json:"reviewer,omitempty"`
	Receiver  *Author `json:"receiver,omitempty"`
	CreatedAt Time    `json:"created_at"`
}

// MatchingStatus filters the matching history
type MatchingStatus string

const (
	MatchingAll       MatchingStatus = ""
	MatchingWaiting   MatchingStatus = "waiting"
	MatchingSuccess   MatchingStatus = "success"
	MatchingClosed    MatchingStatus = "closed"
	MatchingCompleted MatchingStatus = "completed"
	MatchingCancelled MatchingStatus = "cancelled"
)

// Valid reports whether s can be sent as a matching filter
func (s MatchingStatus) Valid() bool {
	switch s {
	case MatchingAll, MatchingWaiting, MatchingSuccess, MatchingClosed:
		return true
	default:
		return false
	}
}

// MatchingEntry is a post the user joined, with the state of that participation
type MatchingEntry struct {
	PostID              ID              `json:"post_id"`
	Title               string          `json:"title"`
	Status              MatchingStatus  `json:"status"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	PerPersonPrice      decimal.Decimal `json:"per_person_price"`
	TargetParticipants  int             `json:"target_participants"`
	CurrentParticipants int             `json:"current_participants"`
	PickupDatetime      Time            `json:"pickup_datetime"`
	PickupLocationText  string          `json:"pickup_location_text"`
	CreatedAt           Time            `json:"created_at"`
}

// ActionResult is the body returned by create/delete style endpoints
type ActionResult struct {
	Message string `json:"message"`
	ID      ID     `json:"id,omitempty"`
}
