package api

import (
	"context"
)

// Session covers token and origin handling
type Session interface {
	// BaseURL returns the backend origin in use
	BaseURL() string

	// SetBaseURL switches the backend origin, persisting it unless persist is false
	SetBaseURL(baseURL string, persist bool) error

	// ResetBaseURL forgets the persisted origin and resolves it again
	ResetBaseURL() error

	// Token returns the held session token
	Token() string
}

// API defines the marketplace operations
type API interface {
	Session

	Signup(ctx context.Context, email, password, nickname, phoneNumber string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout() error
	Me(ctx context.Context) (*User, error)
	UpdateMe(ctx context.Context, patch map[string]any) (*User, error)

	ListPosts(ctx context.Context, params ListPostsParams) (*PostList, error)
	GetPost(ctx context.Context, postID ID) (*Post, error)
	CreatePost(ctx context.Context, in PostInput) (*Post, error)
	UpdatePost(ctx context.Context, postID ID, patch map[string]any) (*Post, error)
	DeletePost(ctx context.Context, postID ID) (*ActionResult, error)

	Participate(ctx context.Context, postID ID) (*ActionResult, error)
	CancelParticipation(ctx context.Context, postID ID) (*ActionResult, error)

	ListComments(ctx context.Context, postID ID) ([]Comment, error)
	CreateComment(ctx context.Context, postID ID, content string, parentID *ID) (*Comment, error)
	DeleteComment(ctx context.Context, commentID ID) (*ActionResult, error)

	CreateReview(ctx context.Context, postID ID, rating int, comment string) (*Review, error)
	MyReviews(ctx context.Context) ([]Review, error)
	UserReviews(ctx context.Context, userID ID) ([]Review, error)

	AddToWishlist(ctx context.Context, postID ID) (*ActionResult, error)
	RemoveFromWishlist(ctx context.Context, postID ID) (*ActionResult, error)
	MyWishlist(ctx context.Context) ([]Post, error)

	MyMatching(ctx context.Context, status MatchingStatus) ([]MatchingEntry, error)
	MyTransactions(ctx context.Context) ([]MatchingEntry, error)
	MyCancellations(ctx context.Context) ([]MatchingEntry, error)

	// History merges matching, transactions and cancellations
	History(ctx context.Context) (*History, error)

	// MatchingSummary counts participations by status
	MatchingSummary(ctx context.Context) (*MatchingSummary, error)
}

var _ API = (*Client)(nil)
