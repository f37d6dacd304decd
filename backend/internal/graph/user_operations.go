package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

// ============================================================================
// User Operations
// ============================================================================

// CreateUser creates a user node and its self-follow edge in one transaction
func (r *Repository) CreateUser(ctx context.Context, user social.User) error {
	_, err := r.executeWrite(ctx, "create user", func(tx neo4j.ManagedTransaction) (any, error) {
		existing, err := first(ctx, tx, `
			MATCH (u:User {username_lower: $usernameLower})
			RETURN u.id AS id
		`, map[string]any{"usernameLower": strings.ToLower(user.Username)})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperrors.NewInvalidArgument("username", "username already taken")
		}

		query := `
			CREATE (u:User {
				id: $userID,
				username: $username,
				username_lower: $usernameLower,
				display_name: $displayName,
				description: $description,
				avatar: $avatar,
				created_at: datetime($createdAt)
			})
			CREATE (u)-[:FOLLOWS]->(u)
		`
		_, err = counters(ctx, tx, query, map[string]any{
			"userID":        user.ID,
			"username":      user.Username,
			"usernameLower": strings.ToLower(user.Username),
			"displayName":   user.DisplayName,
			"description":   user.Description,
			"avatar":        user.Avatar,
			"createdAt":     isoTime(user.CreatedAt),
		})
		return nil, err
	})
	return err
}

// GetUser returns a user by id
func (r *Repository) GetUser(ctx context.Context, userID string) (*social.User, error) {
	return r.findUser(ctx, "get user", userID, `
		MATCH (u:User {id: $key})
		RETURN `+userColumns("u"))
}

// FindUserByUsername returns a user by username, case-insensitively
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*social.User, error) {
	return r.findUser(ctx, "find user by username", strings.ToLower(username), `
		MATCH (u:User {username_lower: $key})
		RETURN `+userColumns("u"))
}

func (r *Repository) findUser(ctx context.Context, op, key, query string) (*social.User, error) {
	result, err := r.executeRead(ctx, op, func(tx neo4j.ManagedTransaction) (any, error) {
		record, err := first(ctx, tx, query, map[string]any{"key": key})
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound("user", key)
		}
		user := userFromRecord(record)
		return &user, nil
	})
	if err != nil {
		return nil, err
	}
	user, ok := result.(*social.User)
	if !ok {
		return nil, unexpected(op, result)
	}
	return user, nil
}

// FindUsersByUsernames resolves usernames in one query; unknown names are skipped
func (r *Repository) FindUsersByUsernames(ctx context.Context, usernames []string) ([]social.User, error) {
	if len(usernames) == 0 {
		return []social.User{}, nil
	}
	lowered := make([]string, 0, len(usernames))
	for _, name := range usernames {
		lowered = append(lowered, strings.ToLower(name))
	}

	result, err := r.executeRead(ctx, "find users by usernames", func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (u:User)
			WHERE u.username_lower IN $usernames
			RETURN `+userColumns("u")+`
			ORDER BY u.username_lower
		`, map[string]any{"usernames": lowered})
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

// UpdateUser sets the non-nil fields of update
func (r *Repository) UpdateUser(ctx context.Context, userID string, update social.ProfileUpdate) (*social.User, error) {
	params := map[string]any{"userID": userID}
	var sets []string
	if update.DisplayName != nil {
		sets = append(sets, "u.display_name = $displayName")
		params["displayName"] = *update.DisplayName
	}
	if update.Description != nil {
		sets = append(sets, "u.description = $description")
		params["description"] = *update.Description
	}
	if update.Avatar != nil {
		sets = append(sets, "u.avatar = $avatar")
		params["avatar"] = *update.Avatar
	}

	query := `MATCH (u:User {id: $userID})`
	if len(sets) > 0 {
		query += "\nSET " + strings.Join(sets, ", ")
	}
	query += "\nRETURN " + userColumns("u")

	result, err := r.executeWrite(ctx, "update user", func(tx neo4j.ManagedTransaction) (any, error) {
		record, err := first(ctx, tx, query, params)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, apperrors.NewNotFound("user", userID)
		}
		user := userFromRecord(record)
		return &user, nil
	})
	if err != nil {
		return nil, err
	}
	user, ok := result.(*social.User)
	if !ok {
		return nil, unexpected("update user", result)
	}
	return user, nil
}

// requireUsers reports the first id with no User node
func requireUsers(ctx context.Context, tx neo4j.ManagedTransaction, ids ...string) error {
	records, err := collect(ctx, tx, `
		UNWIND $ids AS id
		OPTIONAL MATCH (u:User {id: id})
		RETURN id, u IS NOT NULL AS found
	`, map[string]any{"ids": ids})
	if err != nil {
		return err
	}
	for _, record := range records {
		if !getBoolFromRecord(record, "found") {
			return apperrors.NewNotFound("user", getStringFromRecord(record, "id"))
		}
	}
	return nil
}
