package articles

import "time"

// Article is a single post owned by exactly one user. Ownership is fixed
// at creation and never transferred.
type Article struct {
	ID        int64
	Title     string
	Body      string
	UserID    int64
	CreatedAt time.Time
}

// FeedItem is an article joined with its author's username for listings.
type FeedItem struct {
	ID             int64
	Title          string
	Body           string
	UserID         int64
	AuthorUsername string
	CreatedAt      time.Time
}

// Author is the owner record resolved through an explicit lookup rather
// than implicit relationship traversal.
type Author struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}
