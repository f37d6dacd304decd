package social

import (
	"context"
	"time"
)

// Store is the graph store contract consumed by the core. Every method runs as a
// single transaction. Missing or soft-deleted targets are reported with a
// NotFound error from chirp/backend/pkg/errors.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userID string) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUsersByUsernames(ctx context.Context, usernames []string) ([]User, error)
	UpdateUser(ctx context.Context, userID string, update ProfileUpdate) (*User, error)

	// Interaction ledger. The bool reports whether an edge was created or removed.
	Follow(ctx context.Context, followerID, targetID string) (bool, error)
	Unfollow(ctx context.Context, followerID, targetID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, targetID string) (bool, error)
	Like(ctx context.Context, userID, postID string) (bool, error)
	Unlike(ctx context.Context, userID, postID string) (bool, error)
	HasLiked(ctx context.Context, userID, postID string) (bool, error)
	ListFollows(ctx context.Context, userID string, page Page) ([]User, error)
	ListFollowers(ctx context.Context, userID string, page Page) ([]User, error)

	// Posts
	CreatePost(ctx context.Context, record PostRecord) (*Post, error)
	GetPost(ctx context.Context, postID string) (*Post, error)
	SoftDeletePost(ctx context.Context, postID string) (bool, error)
	ListUserPosts(ctx context.Context, userID string, page Page) ([]FeedItem, error)
	ListResponses(ctx context.Context, postID string, page Page) ([]FeedItem, error)
	ListQuotes(ctx context.Context, postID string, page Page) ([]FeedItem, error)

	// Feed and tags
	Feed(ctx context.Context, query FeedQuery) ([]FeedItem, error)
	TrendingTags(ctx context.Context, from, to time.Time, limit int) ([]TagCount, error)

	// Engagement
	PostInfo(ctx context.Context, postID string) (*PostInfo, error)
	UserProfileInfo(ctx context.Context, userID string) (*UserProfileInfo, error)

	// Notifications. CreateNotifications writes all records or none.
	CreateNotifications(ctx context.Context, notifications []Notification) (int, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	ListNotifications(ctx context.Context, userID string, page Page) ([]NotificationItem, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) (bool, error)
}

// TrendingCache stores trending rankings keyed by window and limit
type TrendingCache interface {
	Get(ctx context.Context, window string, limit int) ([]TagCount, bool, error)
	Set(ctx context.Context, window string, limit int, tags []TagCount) error
	// Invalidate drops every cached ranking
	Invalidate(ctx context.Context) error
}
