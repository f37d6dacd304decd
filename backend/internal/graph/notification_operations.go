package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

// ============================================================================
// Notification Operations
// ============================================================================

// CreateNotifications writes the whole batch in one transaction or nothing
func (r *Repository) CreateNotifications(ctx context.Context, notifications []social.Notification) (int, error) {
	if len(notifications) == 0 {
		return 0, nil
	}
	rows := make([]map[string]any, 0, len(notifications))
	for _, n := range notifications {
		rows = append(rows, map[string]any{
			"id":           n.ID,
			"recipient_id": n.RecipientID,
			"post_id":      n.PostID,
			"kind":         string(n.Kind),
			"read":         n.Read,
			"created_at":   isoTime(n.CreatedAt),
		})
	}

	result, err := r.executeWrite(ctx, "create notifications", func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			UNWIND $rows AS row
			OPTIONAL MATCH (u:User {id: row.recipient_id})
			OPTIONAL MATCH (p:Post {id: row.post_id})
			RETURN row.recipient_id AS recipient_id, row.post_id AS post_id,
				u IS NOT NULL AS has_user, p IS NOT NULL AS has_post
		`, map[string]any{"rows": rows})
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			if !getBoolFromRecord(record, "has_user") {
				return nil, apperrors.NewNotFound("user", getStringFromRecord(record, "recipient_id"))
			}
			if !getBoolFromRecord(record, "has_post") {
				return nil, apperrors.NewNotFound("post", getStringFromRecord(record, "post_id"))
			}
		}

		c, err := counters(ctx, tx, `
			UNWIND $rows AS row
			MATCH (u:User {id: row.recipient_id})
			MATCH (p:Post {id: row.post_id})
			CREATE (n:Notification {
				id: row.id,
				kind: row.kind,
				read: row.read,
				created_at: datetime(row.created_at)
			})
			CREATE (n)-[:NOTIFIES]->(u)
			CREATE (n)-[:ABOUT]->(p)
		`, map[string]any{"rows": rows})
		if err != nil {
			return nil, err
		}
		return c.NodesCreated(), nil
	})
	if err != nil {
		return 0, err
	}
	created, _ := result.(int)
	return created, nil
}

// CountUnread counts unread notifications addressed to userID
func (r *Repository) CountUnread(ctx context.Context, userID string) (int64, error) {
	result, err := r.executeRead(ctx, "count unread", func(tx neo4j.ManagedTransaction) (any, error) {
		record, err := first(ctx, tx, `
			MATCH (n:Notification)-[:NOTIFIES]->(:User {id: $userID})
			WHERE n.read = false
			RETURN count(n) AS unread
		`, map[string]any{"userID": userID})
		if err != nil || record == nil {
			return int64(0), err
		}
		return getInt64FromRecord(record, "unread"), nil
	})
	if err != nil {
		return 0, err
	}
	count, _ := result.(int64)
	return count, nil
}

// ListNotifications returns notifications addressed to userID, newest first
func (r *Repository) ListNotifications(ctx context.Context, userID string, page social.Page) ([]social.NotificationItem, error) {
	result, err := r.executeRead(ctx, "list notifications", func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (n:Notification)-[:NOTIFIES]->(:User {id: $userID})
			OPTIONAL MATCH (n)-[:ABOUT]->(p:Post)
			OPTIONAL MATCH (p)<-[:POSTED]-(author:User)
			WITH n, p, author
			ORDER BY n.created_at DESC, n.id ASC
			SKIP $skip LIMIT $limit
			RETURN n.id AS uuid,
				n.kind AS kind,
				n.read AS read,
				n.created_at AS date,
				p.id AS post_uuid,
				p.content AS post_content,
				author.username AS author
		`, pageParams(map[string]any{"userID": userID}, page))
		if err != nil {
			return nil, err
		}
		items := make([]social.NotificationItem, 0, len(records))
		for _, record := range records {
			items = append(items, social.NotificationItem{
				UUID:        getStringFromRecord(record, "uuid"),
				Kind:        social.NotificationKind(getStringFromRecord(record, "kind")),
				Read:        getBoolFromRecord(record, "read"),
				Date:        getTimeFromRecord(record, "date"),
				PostUUID:    getStringFromRecord(record, "post_uuid"),
				PostContent: getStringFromRecord(record, "post_content"),
				Author:      getStringFromRecord(record, "author"),
			})
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	items, _ := result.([]social.NotificationItem)
	return items, nil
}

// MarkAllRead flags every unread notification of userID as read and returns how many changed
func (r *Repository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	result, err := r.executeWrite(ctx, "mark all read", func(tx neo4j.ManagedTransaction) (any, error) {
		c, err := counters(ctx, tx, `
			MATCH (n:Notification)-[:NOTIFIES]->(:User {id: $userID})
			WHERE n.read = false
			SET n.read = true
		`, map[string]any{"userID": userID})
		if err != nil {
			return 0, err
		}
		return c.PropertiesSet(), nil
	})
	if err != nil {
		return 0, err
	}
	changed, _ := result.(int)
	return changed, nil
}

// MarkRead flags one unread notification owned by userID as read
func (r *Repository) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	result, err := r.executeWrite(ctx, "mark read", func(tx neo4j.ManagedTransaction) (any, error) {
		c, err := counters(ctx, tx, `
			MATCH (n:Notification {id: $notificationID})-[:NOTIFIES]->(:User {id: $userID})
			WHERE n.read = false
			SET n.read = true
		`, map[string]any{"userID": userID, "notificationID": notificationID})
		if err != nil {
			return false, err
		}
		return c.PropertiesSet() > 0, nil
	})
	if err != nil {
		return false, err
	}
	changed, _ := result.(bool)
	return changed, nil
}
