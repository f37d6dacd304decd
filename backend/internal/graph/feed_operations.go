package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

// ============================================================================
// Feed Operations
// ============================================================================

const (
	// viewerScope reaches the viewer's own posts through the self-follow edge
	viewerScope = `
		MATCH (viewer:User {id: $viewerID})-[:FOLLOWS]->(author:User)-[:POSTED]->(p:Post)`
	anonymousScope = `
		MATCH (author:User)-[:POSTED]->(p:Post)`

	chronologicalOrder = `ORDER BY p.created_at DESC, p.id ASC`
	popularityOrder    = `ORDER BY likes DESC, p.created_at DESC, p.id ASC`
)

// Feed returns the windowed, paged feed for query.ViewerID, or the anonymous feed when it is empty
func (r *Repository) Feed(ctx context.Context, query social.FeedQuery) ([]social.FeedItem, error) {
	scope := anonymousScope
	if query.ViewerID != "" {
		scope = viewerScope
	}
	order := chronologicalOrder
	if query.Order == social.FeedOrderPopularity {
		order = popularityOrder
	}

	cypher := scope + `
		WHERE ` + notDeleted("p") + `
			AND p.created_at >= datetime($from)
			AND p.created_at <= datetime($to)` +
		feedItemJoins + `
		WITH p, author, quoted, parent, parentAuthor,
			size([(liker:User)-[:LIKES]->(p) | liker]) AS likes
		` + order + `
		SKIP $skip LIMIT $limit
		RETURN ` + feedItemProjection

	params := pageParams(map[string]any{
		"viewerID": query.ViewerID,
		"from":     isoTime(query.From),
		"to":       isoTime(query.To),
	}, query.Page)

	result, err := r.executeRead(ctx, "feed", func(tx neo4j.ManagedTransaction) (any, error) {
		if query.ViewerID != "" {
			if err := requireUsers(ctx, tx, query.ViewerID); err != nil {
				return nil, err
			}
		}
		records, err := collect(ctx, tx, cypher, params)
		if err != nil {
			return nil, err
		}
		return feedItemsFromRecords(records), nil
	})
	if err != nil {
		return nil, err
	}
	items, _ := result.([]social.FeedItem)
	return items, nil
}

// ============================================================================
// Tag Operations
// ============================================================================

// TrendingTags counts visible tagged posts created in [from, to], most used first
func (r *Repository) TrendingTags(ctx context.Context, from, to time.Time, limit int) ([]social.TagCount, error) {
	result, err := r.executeRead(ctx, "trending tags", func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (t:Tag)-[:TAGS]->(p:Post)
			WHERE `+notDeleted("p")+`
				AND p.created_at >= datetime($from)
				AND p.created_at <= datetime($to)
			WITH t.name AS name, count(DISTINCT p) AS count
			RETURN name, count
			ORDER BY count DESC, name ASC
			LIMIT $limit
		`, map[string]any{
			"from":  isoTime(from),
			"to":    isoTime(to),
			"limit": int64(limit),
		})
		if err != nil {
			return nil, err
		}
		tags := make([]social.TagCount, 0, len(records))
		for _, record := range records {
			tags = append(tags, social.TagCount{
				Name:  getStringFromRecord(record, "name"),
				Count: getInt64FromRecord(record, "count"),
			})
		}
		return tags, nil
	})
	if err != nil {
		return nil, err
	}
	tags, _ := result.([]social.TagCount)
	return tags, nil
}

// ============================================================================
// Engagement Operations
// ============================================================================

// PostInfo reads the three counters of a visible post in a single statement
func (r *Repository) PostInfo(ctx context.Context, postID string) (*social.PostInfo, error) {
	result, err := r.executeRead(ctx, "post info", func(tx neo4j.ManagedTransaction) (any, error) {
		record, err := first(ctx, tx, `
			MATCH (p:Post {id: $postID})
			WHERE `+notDeleted("p")+`
			RETURN
				size([(r:Post)-[:RESPONDS_TO]->(p) WHERE `+notDeleted("r")+` | r]) AS responses,
				size([(q:Post)-[:QUOTES]->(p) WHERE `+notDeleted("q")+` | q]) AS quotes,
				size([(liker:User)-[:LIKES]->(p) | liker]) AS likes
		`, map[string]any{"postID": postID})
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound("post", postID)
		}
		return &social.PostInfo{
			Responses: getInt64FromRecord(record, "responses"),
			Likes:     getInt64FromRecord(record, "likes"),
			Quotes:    getInt64FromRecord(record, "quotes"),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	info, ok := result.(*social.PostInfo)
	if !ok {
		return nil, unexpected("post info", result)
	}
	return info, nil
}

// UserProfileInfo reads the post, follow and follower counts of a user in a single statement
func (r *Repository) UserProfileInfo(ctx context.Context, userID string) (*social.UserProfileInfo, error) {
	result, err := r.executeRead(ctx, "user profile info", func(tx neo4j.ManagedTransaction) (any, error) {
		record, err := first(ctx, tx, `
			MATCH (u:User {id: $userID})
			RETURN
				size([(u)-[:POSTED]->(p:Post) WHERE `+notDeleted("p")+` | p]) AS posts,
				size([(u)-[:FOLLOWS]->(other:User) WHERE `+selfFollowFilter+` | other]) AS follows,
				size([(other:User)-[:FOLLOWS]->(u) WHERE `+selfFollowFilter+` | other]) AS followers
		`, map[string]any{"userID": userID})
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound("user", userID)
		}
		return &social.UserProfileInfo{
			Posts:     getInt64FromRecord(record, "posts"),
			Follows:   getInt64FromRecord(record, "follows"),
			Followers: getInt64FromRecord(record, "followers"),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	info, ok := result.(*social.UserProfileInfo)
	if !ok {
		return nil, unexpected("user profile info", result)
	}
	return info, nil
}
