package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Participate joins the group purchase of a post
func (c *Client) Participate(ctx context.Context, postID ID) (*ActionResult, error) {
	return doJSON[ActionResult](ctx, c, http.MethodPost, postPath(postID, "participations"), struct{}{})
}

// CancelParticipation leaves the group purchase of a post
func (c *Client) CancelParticipation(ctx context.Context, postID ID) (*ActionResult, error) {
	return doJSON[ActionResult](ctx, c, http.MethodDelete, postPath(postID, "participations"), nil)
}

// ListComments returns the comments of a post
func (c *Client) ListComments(ctx context.Context, postID ID) ([]Comment, error) {
	return listJSON[Comment](ctx, c, postPath(postID, "comments"), []string{"comments"})
}

// CreateComment adds a comment to a post. parentID is nil for a top-level
// comment and is sent as null.
func (c *Client) CreateComment(ctx context.Context, postID ID, content string, parentID *ID) (*Comment, error) {
	body := struct {
		Content         string `json:"content"`
		ParentCommentID *ID    `json:"parent_comment_id"`
	}{
		Content:         strings.TrimSpace(content),
		ParentCommentID: parentID,
	}
	return doJSON[Comment](ctx, c, http.MethodPost, postPath(postID, "comments"), body)
}

// DeleteComment removes a comment
func (c *Client) DeleteComment(ctx context.Context, commentID ID) (*ActionResult, error) {
	return doJSON[ActionResult](ctx, c, http.MethodDelete, "/api/comments/"+url.PathEscape(string(commentID)), nil)
}

// CreateReview rates the other party of a finished group purchase
func (c *Client) CreateReview(ctx context.Context, postID ID, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	body := struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}{rating, comment}
	return doJSON[Review](ctx, c, http.MethodPost, postPath(postID, "reviews"), body)
}

// MyReviews returns the reviews the current user wrote
func (c *Client) MyReviews(ctx context.Context) ([]Review, error) {
	return listJSON[Review](ctx, c, "/api/users/me/reviews", []string{"reviews"})
}

// UserReviews returns the reviews a user received
func (c *Client) UserReviews(ctx context.Context, userID ID) ([]Review, error) {
	return listJSON[Review](ctx, c, "/api/users/"+url.PathEscape(string(userID))+"/reviews", []string{"reviews"})
}

// AddToWishlist bookmarks a post
func (c *Client) AddToWishlist(ctx context.Context, postID ID) (*ActionResult, error) {
	return doJSON[ActionResult](ctx, c, http.MethodPost, postPath(postID, "wishlist"), struct{}{})
}

// RemoveFromWishlist removes a bookmark
func (c *Client) RemoveFromWishlist(ctx context.Context, postID ID) (*ActionResult, error) {
	return doJSON[ActionResult](ctx, c, http.MethodDelete, postPath(postID, "wishlist"), nil)
}

// MyWishlist returns the bookmarked posts
func (c *Client) MyWishlist(ctx context.Context) ([]Post, error) {
	return listJSON[Post](ctx, c, "/api/users/me/wishlist", []string{"wishlist"})
}
