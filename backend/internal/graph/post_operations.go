package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"chirp/backend/internal/constants"
	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

// ============================================================================
// Post Operations
// ============================================================================

// postColumns projects a full post; p and author must be bound
const postColumns = `
	OPTIONAL MATCH (p)-[ref:RESPONDS_TO|QUOTES]->(parent:Post)
	OPTIONAL MATCH (parent)<-[:POSTED]-(parentAuthor:User)
	OPTIONAL MATCH (t:Tag)-[:TAGS]->(p)
	WITH p, author, ref, parent, parentAuthor, t
	ORDER BY t.name
	RETURN p.id AS id,
		p.content AS content,
		p.created_at AS created_at,
		coalesce(p.deleted, false) AS deleted,
		author.id AS author_id,
		author.username AS author_username,
		type(ref) AS ref_type,
		parent.id AS ref_id,
		parentAuthor.id AS ref_author_id,
		parentAuthor.username AS ref_author_username,
		collect(t.name) AS tags
`

// CreatePost writes the post, its authorship, its reference edge and its tags in one transaction
func (r *Repository) CreatePost(ctx context.Context, record social.PostRecord) (*social.Post, error) {
	result, err := r.executeWrite(ctx, "create post", func(tx neo4j.ManagedTransaction) (any, error) {
		if err := requireUsers(ctx, tx, record.AuthorID); err != nil {
			return nil, err
		}

		params := map[string]any{
			"postID":    record.ID,
			"authorID":  record.AuthorID,
			"content":   record.Content,
			"createdAt": isoTime(record.CreatedAt),
		}
		if _, err := counters(ctx, tx, `
			MATCH (author:User {id: $authorID})
			CREATE (author)-[:POSTED]->(:Post {
				id: $postID,
				content: $content,
				created_at: datetime($createdAt),
				deleted: false
			})
		`, params); err != nil {
			return nil, err
		}

		if record.Ref != nil {
			relType := constants.RelRespondsTo
			if record.Ref.Kind == social.PostKindQuote {
				relType = constants.RelQuotes
			}
			c, err := counters(ctx, tx, fmt.Sprintf(`
				MATCH (p:Post {id: $postID})
				MATCH (parent:Post {id: $parentID})
				WHERE %s
				CREATE (p)-[:%s]->(parent)
			`, notDeleted("parent"), relType), map[string]any{
				"postID":   record.ID,
				"parentID": record.Ref.PostID,
			})
			if err != nil {
				return nil, err
			}
			if c.RelationshipsCreated() == 0 {
				return nil, apperrors.NewNotFound("post", record.Ref.PostID)
			}
		}

		if len(record.Tags) > 0 {
			tags := make([]map[string]any, 0, len(record.Tags))
			for _, name := range record.Tags {
				tags = append(tags, map[string]any{"name": name, "id": uuid.New().String()})
			}
			if _, err := counters(ctx, tx, `
				MATCH (p:Post {id: $postID})
				UNWIND $tags AS tag
				MERGE (t:Tag {name: tag.name})
				ON CREATE SET t.id = tag.id
				MERGE (t)-[:TAGS]->(p)
			`, map[string]any{"postID": record.ID, "tags": tags}); err != nil {
				return nil, err
			}
		}

		return readPost(ctx, tx, record.ID)
	})
	if err != nil {
		return nil, err
	}
	post, ok := result.(*social.Post)
	if !ok {
		return nil, unexpected("create post", result)
	}
	return post, nil
}

// GetPost returns a post including soft-deleted ones
func (r *Repository) GetPost(ctx context.Context, postID string) (*social.Post, error) {
	result, err := r.executeRead(ctx, "get post", func(tx neo4j.ManagedTransaction) (any, error) {
		return readPost(ctx, tx, postID)
	})
	if err != nil {
		return nil, err
	}
	post, ok := result.(*social.Post)
	if !ok {
		return nil, unexpected("get post", result)
	}
	return post, nil
}

func readPost(ctx context.Context, tx neo4j.ManagedTransaction, postID string) (*social.Post, error) {
	record, err := first(ctx, tx, `
		MATCH (author:User)-[:POSTED]->(p:Post {id: $postID})
	`+postColumns, map[string]any{"postID": postID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NewNotFound("post", postID)
	}

	post := &social.Post{
		ID:             getStringFromRecord(record, "id"),
		AuthorID:       getStringFromRecord(record, "author_id"),
		AuthorUsername: getStringFromRecord(record, "author_username"),
		Content:        getStringFromRecord(record, "content"),
		CreatedAt:      getTimeFromRecord(record, "created_at"),
		Deleted:        getBoolFromRecord(record, "deleted"),
		Tags:           getStringSliceFromRecord(record, "tags"),
	}
	if refID := getStringFromRecord(record, "ref_id"); refID != "" {
		kind := social.PostKindResponse
		if getStringFromRecord(record, "ref_type") == constants.RelQuotes {
			kind = social.PostKindQuote
		}
		post.Ref = &social.PostRef{
			Kind:           kind,
			PostID:         refID,
			AuthorID:       getStringFromRecord(record, "ref_author_id"),
			AuthorUsername: getStringFromRecord(record, "ref_author_username"),
		}
	}
	return post, nil
}

// SoftDeletePost flags the post deleted; edges are kept
func (r *Repository) SoftDeletePost(ctx context.Context, postID string) (bool, error) {
	result, err := r.executeWrite(ctx, "soft delete post", func(tx neo4j.ManagedTransaction) (any, error) {
		record, err := first(ctx, tx, `
			MATCH (p:Post {id: $postID})
			WITH p, coalesce(p.deleted, false) AS wasDeleted
			SET p.deleted = true
			RETURN wasDeleted
		`, map[string]any{"postID": postID})
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound("post", postID)
		}
		return !getBoolFromRecord(record, "wasDeleted"), nil
	})
	if err != nil {
		return false, err
	}
	changed, _ := result.(bool)
	return changed, nil
}

// ListUserPosts returns the visible posts of a user, newest first
func (r *Repository) ListUserPosts(ctx context.Context, userID string, page social.Page) ([]social.FeedItem, error) {
	return r.listPosts(ctx, "list user posts", page, map[string]any{"userID": userID},
		func(ctx context.Context, tx neo4j.ManagedTransaction) error {
			return requireUsers(ctx, tx, userID)
		}, `
		MATCH (author:User {id: $userID})-[:POSTED]->(p:Post)
		WHERE `+notDeleted("p"))
}

// ListResponses returns the visible responses to a post, newest first
func (r *Repository) ListResponses(ctx context.Context, postID string, page social.Page) ([]social.FeedItem, error) {
	return r.listChildren(ctx, "list responses", constants.RelRespondsTo, postID, page)
}

// ListQuotes returns the visible quotes of a post, newest first
func (r *Repository) ListQuotes(ctx context.Context, postID string, page social.Page) ([]social.FeedItem, error) {
	return r.listChildren(ctx, "list quotes", constants.RelQuotes, postID, page)
}

func (r *Repository) listChildren(ctx context.Context, op, relType, postID string, page social.Page) ([]social.FeedItem, error) {
	return r.listPosts(ctx, op, page, map[string]any{"postID": postID},
		func(ctx context.Context, tx neo4j.ManagedTransaction) error {
			record, err := first(ctx, tx, `MATCH (p:Post {id: $postID}) RETURN p.id AS id`,
				map[string]any{"postID": postID})
			if err != nil {
				return err
			}
			if record == nil {
				return apperrors.NewNotFound("post", postID)
			}
			return nil
		}, fmt.Sprintf(`
		MATCH (author:User)-[:POSTED]->(p:Post)-[:%s]->(:Post {id: $postID})
		WHERE %s`, relType, notDeleted("p")))
}

// listPosts runs check then match in one read transaction and pages the rows newest first
func (r *Repository) listPosts(
	ctx context.Context,
	op string,
	page social.Page,
	params map[string]any,
	check func(context.Context, neo4j.ManagedTransaction) error,
	match string,
) ([]social.FeedItem, error) {
	query := match + feedItemJoins + `
		WITH p, author, quoted, parent, parentAuthor
		ORDER BY p.created_at DESC, p.id ASC
		SKIP $skip LIMIT $limit
		RETURN ` + feedItemProjection

	result, err := r.executeRead(ctx, op, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := check(ctx, tx); err != nil {
			return nil, err
		}
		records, err := collect(ctx, tx, query, pageParams(params, page))
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
