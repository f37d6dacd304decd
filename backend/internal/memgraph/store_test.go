package memgraph

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func seedUsers(t *testing.T, s *Store, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, s.CreateUser(context.Background(), social.User{ID: name, Username: name, CreatedAt: now}))
	}
}

func TestCreateUser_SelfFollowAndUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUsers(t, s, "alice")

	following, err := s.IsFollowing(ctx, "alice", "alice")
	require.NoError(t, err)
	assert.True(t, following)

	err = s.CreateUser(ctx, social.User{ID: "other", Username: "Alice"})
	assert.True(t, apperrors.IsInvalidArgument(err))

	follows, err := s.ListFollows(ctx, "alice", social.Page{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, follows, "self-follow never appears in listings")
}

func TestFollow_ConcurrentCallersCreateOneEdge(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUsers(t, s, "alice", "bob")

	var wg sync.WaitGroup
	created := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Follow(ctx, "alice", "bob")
			assert.NoError(t, err)
			created <- ok
		}()
	}
	wg.Wait()
	close(created)

	n := 0
	for ok := range created {
		if ok {
			n++
		}
	}
	assert.Equal(t, 1, n)

	info, err := s.UserProfileInfo(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Followers)
}

func TestSoftDeletePost(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUsers(t, s, "alice")

	_, err := s.CreatePost(ctx, social.PostRecord{ID: "p1", AuthorID: "alice", Content: "hi", CreatedAt: now})
	require.NoError(t, err)

	deleted, err := s.SoftDeletePost(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.SoftDeletePost(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, deleted)

	p, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.Deleted)

	_, err = s.SoftDeletePost(ctx, "ghost")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.Like(ctx, "alice", "p1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateNotifications_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUsers(t, s, "alice", "bob")
	_, err := s.CreatePost(ctx, social.PostRecord{ID: "p1", AuthorID: "bob", Content: "@alice", CreatedAt: now})
	require.NoError(t, err)

	batch := []social.Notification{
		{ID: "n1", RecipientID: "alice", PostID: "p1", Kind: social.NotificationMention, CreatedAt: now},
		{ID: "n2", RecipientID: "ghost", PostID: "p1", Kind: social.NotificationMention, CreatedAt: now},
	}
	_, err = s.CreateNotifications(ctx, batch)
	assert.True(t, apperrors.IsNotFound(err))

	unread, err := s.CountUnread(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread, "no partial batch")

	n, err := s.CreateNotifications(ctx, batch[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTrendingTags_WindowAndDeleted(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedUsers(t, s, "alice")

	for i, tags := range [][]string{{"go"}, {"go", "redis"}, {"redis"}} {
		_, err := s.CreatePost(ctx, social.PostRecord{
			ID:        fmt.Sprintf("p%d", i),
			AuthorID:  "alice",
			Content:   "tagged",
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
			Tags:      tags,
		})
		require.NoError(t, err)
	}
	_, err := s.SoftDeletePost(ctx, "p2")
	require.NoError(t, err)

	tags, err := s.TrendingTags(ctx, now.Add(-time.Hour), now, 10)
	require.NoError(t, err)
	assert.Equal(t, []social.TagCount{{Name: "go", Count: 2}, {Name: "redis", Count: 1}}, tags)

	tags, err = s.TrendingTags(ctx, now.Add(-30*time.Second), now, 10)
	require.NoError(t, err)
	assert.Equal(t, []social.TagCount{{Name: "go", Count: 1}}, tags)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, paginate(items, social.Page{Skip: 2, Limit: 2}))
	assert.Empty(t, paginate(items, social.Page{Skip: 9, Limit: 2}))
	assert.Empty(t, paginate(items, social.Page{Skip: 0, Limit: 0}))
	assert.Equal(t, []int{2, 3, 4, 5}, paginate(items, social.Page{Skip: 1, Limit: math.MaxInt}))
}
