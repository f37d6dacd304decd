package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"chirp/backend/internal/social"
)

// ============================================================================
// Helper Functions
// ============================================================================

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}

func getBoolFromRecord(record *neo4j.Record, key string) bool {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return false
	}
	b, _ := val.(bool)
	return b
}

func getTimeFromRecord(record *neo4j.Record, key string) time.Time {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return time.Time{}
	}
	// Neo4j datetime values come as time.Time
	switch t := val.(type) {
	case time.Time:
		return t.UTC()
	case neo4j.LocalDateTime:
		return t.Time().UTC()
	}
	return time.Time{}
}

func getStringSliceFromRecord(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return []string{}
	}
	if slice, ok := val.([]interface{}); ok {
		result := make([]string, 0, len(slice))
		for _, v := range slice {
			if str, ok := v.(string); ok {
				result = append(result, str)
			}
		}
		return result
	}
	return []string{}
}

// userColumns projects a User node bound to v
func userColumns(v string) string {
	return v + ".id AS id, " +
		v + ".username AS username, " +
		v + ".display_name AS display_name, " +
		v + ".description AS description, " +
		v + ".avatar AS avatar, " +
		v + ".created_at AS created_at"
}

func userFromRecord(record *neo4j.Record) social.User {
	return social.User{
		ID:          getStringFromRecord(record, "id"),
		Username:    getStringFromRecord(record, "username"),
		DisplayName: getStringFromRecord(record, "display_name"),
		Description: getStringFromRecord(record, "description"),
		Avatar:      getStringFromRecord(record, "avatar"),
		CreatedAt:   getTimeFromRecord(record, "created_at"),
	}
}

func usersFromRecords(records []*neo4j.Record) []social.User {
	users := make([]social.User, 0, len(records))
	for _, record := range records {
		users = append(users, userFromRecord(record))
	}
	return users
}

// feedItemProjection expects p, author, quoted, parent and parentAuthor in scope
const feedItemProjection = `
		p.id AS uuid,
		p.content AS content,
		p.created_at AS date,
		author.username AS author,
		quoted.id AS quotes_uuid,
		parent.id AS responds_to_uuid,
		parentAuthor.username AS responds_to_username`

// feedItemJoins binds the optional reference targets of p
const feedItemJoins = `
		OPTIONAL MATCH (p)-[:QUOTES]->(quoted:Post)
		OPTIONAL MATCH (p)-[:RESPONDS_TO]->(parent:Post)
		OPTIONAL MATCH (parent)<-[:POSTED]-(parentAuthor:User)`

func feedItemsFromRecords(records []*neo4j.Record) []social.FeedItem {
	items := make([]social.FeedItem, 0, len(records))
	for _, record := range records {
		items = append(items, social.FeedItem{
			UUID:               getStringFromRecord(record, "uuid"),
			Content:            getStringFromRecord(record, "content"),
			Date:               getTimeFromRecord(record, "date"),
			Author:             getStringFromRecord(record, "author"),
			QuotesUUID:         getStringFromRecord(record, "quotes_uuid"),
			RespondsToUUID:     getStringFromRecord(record, "responds_to_uuid"),
			RespondsToUsername: getStringFromRecord(record, "responds_to_username"),
		})
	}
	return items
}

// notDeleted is the soft-delete filter for a Post bound to v
func notDeleted(v string) string {
	return "coalesce(" + v + ".deleted, false) = false"
}

// selfFollowFilter hides the self-follow edge between u and other. Every public
// follow listing and count goes through it.
const selfFollowFilter = "other.id <> u.id"
