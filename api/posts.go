package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPostType is used when a new post has no type
const DefaultPostType = "group"

// ListPostsParams narrows a post listing. Zero values are left out of the query.
type ListPostsParams struct {
	Type      string
	Latitude  *float64
	Longitude *float64
	// Distance is the search radius in kilometres
	Distance float64
	Page     int
	Limit    int
}

func (p ListPostsParams) values() url.Values {
	v := url.Values{}
	if p.Type != "" {
		v.Set("type", p.Type)
	}
	if p.Latitude != nil {
		v.Set("latitude", strconv.FormatFloat(*p.Latitude, 'f', -1, 64))
	}
	if p.Longitude != nil {
		v.Set("longitude", strconv.FormatFloat(*p.Longitude, 'f', -1, 64))
	}
	if p.Distance > 0 {
		v.Set("distance", strconv.FormatFloat(p.Distance, 'f', -1, 64))
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// PostInput is the body of a create or update request
type PostInput struct {
	PostType           string          `json:"post_type,omitempty"`
	Title              string          `json:"title,omitempty"`
	Description        string          `json:"description,omitempty"`
	MainImageURL       *string         `json:"main_image_url,omitempty"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	PerPersonPrice     decimal.Decimal `json:"per_person_price"`
	TargetParticipants int             `json:"target_participants,omitempty"`
	PickupDatetime     Time            `json:"pickup_datetime"`
	EndDate            Time            `json:"end_date"`
	PickupLocationText string          `json:"pickup_location_text,omitempty"`
}

var errEmptyTitle = errors.New("post title is required")

// Normalize fills the post type and per-person price and checks the required fields
func (in *PostInput) Normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return errEmptyTitle
	}
	if in.PostType == "" {
		in.PostType = DefaultPostType
	}
	if in.TargetParticipants <= 0 {
		return fmt.Errorf("target participants must be positive, got %d", in.TargetParticipants)
	}
	if in.TotalPrice.IsNegative() {
		return fmt.Errorf("total price must not be negative, got %s", in.TotalPrice)
	}
	if in.PerPersonPrice.IsZero() {
		in.PerPersonPrice = in.TotalPrice.Div(decimal.NewFromInt(int64(in.TargetParticipants))).Floor()
	}
	return nil
}

// ListPosts returns one page of posts
func (c *Client) ListPosts(ctx context.Context, params ListPostsParams) (*PostList, error) {
	list, err := doJSON[PostList](ctx, c, http.MethodGet, "/api/posts", nil, WithQuery(params.values()))
	if err != nil {
		return nil, err
	}
	if list.Posts == nil {
		list.Posts = []Post{}
	}
	if list.Page == 0 {
		list.Page = params.Page
	}
	if list.Limit == 0 {
		list.Limit = params.Limit
	}
	return list, nil
}

// GetPost returns a single post
func (c *Client) GetPost(ctx context.Context, postID ID) (*Post, error) {
	return doJSON[Post](ctx, c, http.MethodGet, postPath(postID), nil)
}

// CreatePost publishes a new post and returns it as stored by the backend
func (c *Client) CreatePost(ctx context.Context, in PostInput) (*Post, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	return doJSON[Post](ctx, c, http.MethodPost, "/api/posts", in)
}

// UpdatePost patches the given fields of a post
func (c *Client) UpdatePost(ctx context.Context, postID ID, patch map[string]any) (*Post, error) {
	return doJSON[Post](ctx, c, http.MethodPatch, postPath(postID), patch)
}

// DeletePost removes a post
func (c *Client) DeletePost(ctx context.Context, postID ID) (*ActionResult, error) {
	return doJSON[ActionResult](ctx, c, http.MethodDelete, postPath(postID), nil)
}

func postPath(postID ID, sub ...string) string {
	p := "/api/posts/" + url.PathEscape(string(postID))
	for _, s := range sub {
		p += "/" + s
	}
	return p
}
