package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

// ============================================================================
// Interaction Ledger Operations
// ============================================================================

// lockUser takes the write lock on a user node so concurrent ledger writes from
// the same user serialize and MERGE cannot race into a duplicate edge.
const lockUser = `
	MATCH (u:User {id: $userID})
	SET u.ledger_version = coalesce(u.ledger_version, 0) + 1
`

// Follow creates the FOLLOWS edge if absent and reports whether it was created
func (r *Repository) Follow(ctx context.Context, followerID, targetID string) (bool, error) {
	return r.ledgerWrite(ctx, "follow", func(tx neo4j.ManagedTransaction) (bool, error) {
		if err := requireUsers(ctx, tx, followerID, targetID); err != nil {
			return false, err
		}
		if _, err := counters(ctx, tx, lockUser, map[string]any{"userID": followerID}); err != nil {
			return false, err
		}
		c, err := counters(ctx, tx, `
			MATCH (a:User {id: $followerID})
			MATCH (b:User {id: $targetID})
			MERGE (a)-[:FOLLOWS]->(b)
		`, map[string]any{"followerID": followerID, "targetID": targetID})
		if err != nil {
			return false, err
		}
		return c.RelationshipsCreated() > 0, nil
	})
}

// Unfollow removes the FOLLOWS edge if present and reports whether it was removed
func (r *Repository) Unfollow(ctx context.Context, followerID, targetID string) (bool, error) {
	return r.ledgerWrite(ctx, "unfollow", func(tx neo4j.ManagedTransaction) (bool, error) {
		if err := requireUsers(ctx, tx, followerID, targetID); err != nil {
			return false, err
		}
		c, err := counters(ctx, tx, `
			MATCH (:User {id: $followerID})-[f:FOLLOWS]->(:User {id: $targetID})
			DELETE f
		`, map[string]any{"followerID": followerID, "targetID": targetID})
		if err != nil {
			return false, err
		}
		return c.RelationshipsDeleted() > 0, nil
	})
}

// IsFollowing reports whether the FOLLOWS edge exists
func (r *Repository) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	return r.edgeExists(ctx, "is following", `
		MATCH (:User {id: $from})-[f:FOLLOWS]->(:User {id: $to})
		RETURN count(f) > 0 AS found
	`, followerID, targetID)
}

// Like creates the LIKES edge if absent. Deleted posts cannot be liked.
func (r *Repository) Like(ctx context.Context, userID, postID string) (bool, error) {
	return r.ledgerWrite(ctx, "like", func(tx neo4j.ManagedTransaction) (bool, error) {
		if err := requireVisiblePost(ctx, tx, userID, postID); err != nil {
			return false, err
		}
		if _, err := counters(ctx, tx, lockUser, map[string]any{"userID": userID}); err != nil {
			return false, err
		}
		c, err := counters(ctx, tx, `
			MATCH (u:User {id: $userID})
			MATCH (p:Post {id: $postID})
			MERGE (u)-[:LIKES]->(p)
		`, map[string]any{"userID": userID, "postID": postID})
		if err != nil {
			return false, err
		}
		return c.RelationshipsCreated() > 0, nil
	})
}

// Unlike removes the LIKES edge if present
func (r *Repository) Unlike(ctx context.Context, userID, postID string) (bool, error) {
	return r.ledgerWrite(ctx, "unlike", func(tx neo4j.ManagedTransaction) (bool, error) {
		if err := requireVisiblePost(ctx, tx, userID, postID); err != nil {
			return false, err
		}
		c, err := counters(ctx, tx, `
			MATCH (:User {id: $userID})-[l:LIKES]->(:Post {id: $postID})
			DELETE l
		`, map[string]any{"userID": userID, "postID": postID})
		if err != nil {
			return false, err
		}
		return c.RelationshipsDeleted() > 0, nil
	})
}

// HasLiked reports whether the LIKES edge exists
func (r *Repository) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	return r.edgeExists(ctx, "has liked", `
		MATCH (:User {id: $from})-[l:LIKES]->(:Post {id: $to})
		RETURN count(l) > 0 AS found
	`, userID, postID)
}

// ListFollows returns the users userID follows, self excluded, by username
func (r *Repository) ListFollows(ctx context.Context, userID string, page social.Page) ([]social.User, error) {
	return r.listNeighbours(ctx, "list follows", userID, page, `
		MATCH (u:User {id: $userID})-[:FOLLOWS]->(other:User)
		WHERE `+selfFollowFilter+`
		RETURN `+userColumns("other")+`
		ORDER BY other.username_lower ASC, other.id ASC
		SKIP $skip LIMIT $limit
	`)
}

// ListFollowers returns the users following userID, self excluded, by username
func (r *Repository) ListFollowers(ctx context.Context, userID string, page social.Page) ([]social.User, error) {
	return r.listNeighbours(ctx, "list followers", userID, page, `
		MATCH (other:User)-[:FOLLOWS]->(u:User {id: $userID})
		WHERE `+selfFollowFilter+`
		RETURN `+userColumns("other")+`
		ORDER BY other.username_lower ASC, other.id ASC
		SKIP $skip LIMIT $limit
	`)
}

func (r *Repository) listNeighbours(ctx context.Context, op, userID string, page social.Page, query string) ([]social.User, error) {
	result, err := r.executeRead(ctx, op, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := requireUsers(ctx, tx, userID); err != nil {
			return nil, err
		}
		records, err := collect(ctx, tx, query, pageParams(map[string]any{"userID": userID}, page))
		if err != nil {
			return nil, err
		}
		return usersFromRecords(records), nil
	})
	if err != nil {
		return nil, err
	}
	users, _ := result.([]social.User)
	return users, nil
}

func (r *Repository) ledgerWrite(ctx context.Context, op string, work func(tx neo4j.ManagedTransaction) (bool, error)) (bool, error) {
	result, err := r.executeWrite(ctx, op, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(tx)
	})
	if err != nil {
		return false, err
	}
	changed, _ := result.(bool)
	return changed, nil
}

func (r *Repository) edgeExists(ctx context.Context, op, query, from, to string) (bool, error) {
	result, err := r.executeRead(ctx, op, func(tx neo4j.ManagedTransaction) (any, error) {
		record, err := first(ctx, tx, query, map[string]any{"from": from, "to": to})
		if err != nil || record == nil {
			return false, err
		}
		return getBoolFromRecord(record, "found"), nil
	})
	if err != nil {
		return false, err
	}
	exists, _ := result.(bool)
	return exists, nil
}

// requireVisiblePost checks the acting user exists and the post exists and is not deleted
func requireVisiblePost(ctx context.Context, tx neo4j.ManagedTransaction, userID, postID string) error {
	if err := requireUsers(ctx, tx, userID); err != nil {
		return err
	}
	record, err := first(ctx, tx, `
		MATCH (p:Post {id: $postID})
		WHERE `+notDeleted("p")+`
		RETURN p.id AS id
	`, map[string]any{"postID": postID})
	if err != nil {
		return err
	}
	if record == nil {
		return apperrors.NewNotFound("post", postID)
	}
	return nil
}
