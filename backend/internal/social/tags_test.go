package social_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"case folding", "#Test #TEST #test", []string{"test"}},
		{"order of first use", "#bb then #aa then #BB", []string{"bb", "aa"}},
		{"too short", "#a is not a tag", []string{}},
		{"bounded not anchored", "#abcdefghijklmnopqrstuvwxyz", []string{"abcdefghijklmnopqrst"}},
		{"stops at punctuation", "love #golang, really", []string{"golang"}},
		{"no tags", "plain text", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, social.ExtractTags(tt.content))
		})
	}
}

func TestExtractMentions(t *testing.T) {
	assert.Equal(t, []string{"alice", "bob_1"}, social.ExtractMentions("hi @Alice and @bob_1 and @ALICE"))
	assert.Equal(t, []string{}, social.ExtractMentions("@ab too short"))
}

func TestCreatePost_StoresFoldedTags(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")

	p := f.post(alice, "#Test #TEST #test")
	assert.Equal(t, []string{"test"}, p.Tags)

	tags, err := f.svc.FindMostPopular(f.ctx, 10, "1h")
	require.NoError(t, err)
	assert.Equal(t, []social.TagCount{{Name: "test", Count: 1}}, tags)
}

func TestFindMostPopular(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")

	f.postAt(alice, "#go #neo4j", baseTime.Add(-10*time.Minute))
	f.postAt(alice, "#go #redis", baseTime.Add(-20*time.Minute))
	f.postAt(alice, "#go #neo4j", baseTime.Add(-30*time.Minute))
	f.postAt(alice, "#old", baseTime.Add(-3*time.Hour))
	f.postAt(alice, "#ancient", baseTime.Add(-8*24*time.Hour))

	tags, err := f.svc.FindMostPopular(f.ctx, 10, "1h")
	require.NoError(t, err)
	assert.Equal(t, []social.TagCount{
		{Name: "go", Count: 3},
		{Name: "neo4j", Count: 2},
		{Name: "redis", Count: 1},
	}, tags)

	tags, err = f.svc.FindMostPopular(f.ctx, 2, "1d")
	require.NoError(t, err)
	assert.Equal(t, []social.TagCount{{Name: "go", Count: 3}, {Name: "neo4j", Count: 2}}, tags)

	tags, err = f.svc.FindMostPopular(f.ctx, 10, "1w")
	require.NoError(t, err)
	assert.Len(t, tags, 4)

	tags, err = f.svc.FindMostPopular(f.ctx, 0, "1w")
	require.NoError(t, err)
	assert.Empty(t, tags)

	_, err = f.svc.FindMostPopular(f.ctx, -1, "1w")
	assert.True(t, apperrors.IsInvalidArgument(err))

	_, err = f.svc.FindMostPopular(f.ctx, 10, "1y")
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestFindMostPopular_TiesByName(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	f.post(alice, "#zeta #alpha #mid")

	tags, err := f.svc.FindMostPopular(f.ctx, 10, "1h")
	require.NoError(t, err)
	assert.Equal(t, []social.TagCount{
		{Name: "alpha", Count: 1},
		{Name: "mid", Count: 1},
		{Name: "zeta", Count: 1},
	}, tags)
}

// memoryCache is a social.TrendingCache backed by a map
type memoryCache struct {
	entries map[string][]social.TagCount
	gets    int
	failGet bool
}

func (c *memoryCache) key(window string, limit int) string {
	return fmt.Sprintf("%s:%d", window, limit)
}

func (c *memoryCache) Get(ctx context.Context, window string, limit int) ([]social.TagCount, bool, error) {
	c.gets++
	if c.failGet {
		return nil, false, apperrors.NewCacheFailed("get", context.DeadlineExceeded)
	}
	tags, ok := c.entries[c.key(window, limit)]
	return tags, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, window string, limit int, tags []social.TagCount) error {
	c.entries[c.key(window, limit)] = tags
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context) error {
	clear(c.entries)
	return nil
}

func TestGetTrendingTags_UsesCache(t *testing.T) {
	f := newFixture(t)
	cache := &memoryCache{entries: map[string][]social.TagCount{}}
	svc := social.NewService(f.store, social.WithClock(f.clock), social.WithTrendingCache(cache))
	alice := f.user("alice")
	f.post(alice, "#go")

	first, err := svc.GetTrendingTags(f.ctx, 5, "1D")
	require.NoError(t, err)
	assert.Equal(t, []social.TagCount{{Name: "go", Count: 1}}, first)
	assert.Contains(t, cache.entries, cache.key("1d", 5))

	// Served from cache even though the store has moved on
	f.post(alice, "#go again")
	second, err := svc.GetTrendingTags(f.ctx, 5, "1d")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, cache.gets)
}

func TestGetTrendingTags_DeleteDropsCachedRanking(t *testing.T) {
	f := newFixture(t)
	cache := &memoryCache{entries: map[string][]social.TagCount{}}
	svc := social.NewService(f.store, social.WithClock(f.clock), social.WithTrendingCache(cache))
	alice := f.user("alice")
	f.post(alice, "#go")
	spam := f.post(alice, "#spam")

	tags, err := svc.GetTrendingTags(f.ctx, 5, "1d")
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	require.NoError(t, svc.DeletePost(f.ctx, alice.ID, spam.ID))
	assert.Empty(t, cache.entries)

	tags, err = svc.GetTrendingTags(f.ctx, 5, "1d")
	require.NoError(t, err)
	assert.Equal(t, []social.TagCount{{Name: "go", Count: 1}}, tags)
}

func TestGetTrendingTags_CacheFailureFallsThrough(t *testing.T) {
	f := newFixture(t)
	cache := &memoryCache{entries: map[string][]social.TagCount{}, failGet: true}
	svc := social.NewService(f.store, social.WithClock(f.clock), social.WithTrendingCache(cache))
	alice := f.user("alice")
	f.post(alice, "#go")

	tags, err := svc.GetTrendingTags(f.ctx, 5, "1h")
	require.NoError(t, err)
	assert.Equal(t, []social.TagCount{{Name: "go", Count: 1}}, tags)

	_, err = svc.GetTrendingTags(f.ctx, 5, "bogus")
	assert.True(t, apperrors.IsInvalidArgument(err))
}
