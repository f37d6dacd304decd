package graph

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

// These tests require a running Neo4j instance.
// Set NEO4J_URI, NEO4J_USER and NEO4J_PASSWORD to run them.
func setupRepository(t *testing.T) (*Repository, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}

	ctx := context.Background()
	driver, err := Connect(ctx, uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"))
	require.NoError(t, err)

	repo := NewRepository(driver, os.Getenv("NEO4J_DATABASE"))
	require.NoError(t, repo.EnsureSchema(ctx))

	prefix := "test-" + uuid.New().String()[:8] + "-"
	t.Cleanup(func() {
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH (n) WHERE n.id STARTS WITH $prefix DETACH DELETE n",
			map[string]any{"prefix": prefix})
		_ = repo.Close()
	})
	return repo, prefix
}

func createUser(t *testing.T, repo *Repository, prefix, name string) social.User {
	t.Helper()
	user := social.User{
		ID:          prefix + name,
		Username:    strings.ReplaceAll(prefix, "-", "_") + name,
		DisplayName: name,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func createPost(t *testing.T, repo *Repository, prefix, id, authorID, content string, at time.Time, ref *social.PostRef) *social.Post {
	t.Helper()
	post, err := repo.CreatePost(context.Background(), social.PostRecord{
		ID:        prefix + id,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: at,
		Ref:       ref,
	})
	require.NoError(t, err)
	return post
}

func TestRepository_FollowIsIdempotent(t *testing.T) {
	repo, prefix := setupRepository(t)
	ctx := context.Background()
	alice := createUser(t, repo, prefix, "alice")
	bob := createUser(t, repo, prefix, "bob")

	created, err := repo.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, created)

	follows, err := repo.ListFollows(ctx, alice.ID, social.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, follows, 1)
	assert.Equal(t, bob.ID, follows[0].ID)

	info, err := repo.UserProfileInfo(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Followers)
	assert.Equal(t, int64(0), info.Follows)

	removed, err := repo.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRepository_FollowUnknownUser(t *testing.T) {
	repo, prefix := setupRepository(t)
	alice := createUser(t, repo, prefix, "alice")

	_, err := repo.Follow(context.Background(), alice.ID, prefix+"ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRepository_DuplicateUsername(t *testing.T) {
	repo, prefix := setupRepository(t)
	alice := createUser(t, repo, prefix, "alice")

	err := repo.CreateUser(context.Background(), social.User{
		ID:        prefix + "alice2",
		Username:  strings.ToUpper(alice.Username),
		CreatedAt: time.Now().UTC(),
	})
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestRepository_LikeAndSoftDelete(t *testing.T) {
	repo, prefix := setupRepository(t)
	ctx := context.Background()
	alice := createUser(t, repo, prefix, "alice")
	bob := createUser(t, repo, prefix, "bob")
	post := createPost(t, repo, prefix, "p1", alice.ID, "hello", time.Now().UTC(), nil)

	liked, err := repo.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = repo.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	info, err := repo.PostInfo(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Likes)

	changed, err := repo.SoftDeletePost(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = repo.Like(ctx, alice.ID, post.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.PostInfo(ctx, post.ID)
	assert.True(t, apperrors.IsNotFound(err))

	stored, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, stored.Deleted)
}

func TestRepository_FeedOrdering(t *testing.T) {
	repo, prefix := setupRepository(t)
	ctx := context.Background()
	alice := createUser(t, repo, prefix, "alice")
	bob := createUser(t, repo, prefix, "bob")
	carol := createUser(t, repo, prefix, "carol")

	_, err := repo.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	older := createPost(t, repo, prefix, "older", bob.ID, "older", now.Add(-2*time.Hour), nil)
	newer := createPost(t, repo, prefix, "newer", alice.ID, "newer", now.Add(-time.Hour), nil)
	createPost(t, repo, prefix, "hidden", carol.ID, "not followed", now.Add(-time.Hour), nil)

	_, err = repo.Like(ctx, carol.ID, older.ID)
	require.NoError(t, err)

	query := social.FeedQuery{
		ViewerID: alice.ID,
		From:     now.Add(-24 * time.Hour),
		To:       now,
		Order:    social.FeedOrderChronological,
		Page:     social.Page{Limit: 10},
	}
	items, err := repo.Feed(ctx, query)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].UUID)
	assert.Equal(t, older.ID, items[1].UUID)

	query.Order = social.FeedOrderPopularity
	items, err = repo.Feed(ctx, query)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, older.ID, items[0].UUID)
}

func TestRepository_ResponsesAndNotifications(t *testing.T) {
	repo, prefix := setupRepository(t)
	ctx := context.Background()
	alice := createUser(t, repo, prefix, "alice")
	bob := createUser(t, repo, prefix, "bob")

	now := time.Now().UTC()
	parent := createPost(t, repo, prefix, "parent", alice.ID, "parent", now, nil)
	reply := createPost(t, repo, prefix, "reply", bob.ID, "reply", now.Add(time.Second),
		&social.PostRef{Kind: social.PostKindResponse, PostID: parent.ID})

	require.NotNil(t, reply.Ref)
	assert.Equal(t, alice.ID, reply.Ref.AuthorID)

	responses, err := repo.ListResponses(ctx, parent.ID, social.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, alice.Username, responses[0].RespondsToUsername)

	created, err := repo.CreateNotifications(ctx, []social.Notification{{
		ID:          prefix + "n1",
		RecipientID: alice.ID,
		PostID:      reply.ID,
		Kind:        social.NotificationResponse,
		CreatedAt:   now,
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	unread, err := repo.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	changed, err := repo.MarkRead(ctx, alice.ID, prefix+"n1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkRead(ctx, alice.ID, prefix+"n1")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRepository_CreateNotificationsIsAtomic(t *testing.T) {
	repo, prefix := setupRepository(t)
	ctx := context.Background()
	alice := createUser(t, repo, prefix, "alice")
	post := createPost(t, repo, prefix, "p1", alice.ID, "hi", time.Now().UTC(), nil)

	_, err := repo.CreateNotifications(ctx, []social.Notification{
		{ID: prefix + "n1", RecipientID: alice.ID, PostID: post.ID, Kind: social.NotificationMention, CreatedAt: time.Now().UTC()},
		{ID: prefix + "n2", RecipientID: prefix + "ghost", PostID: post.ID, Kind: social.NotificationMention, CreatedAt: time.Now().UTC()},
	})
	assert.True(t, apperrors.IsNotFound(err))

	unread, err := repo.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}
