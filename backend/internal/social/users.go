package social

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	apperrors "chirp/backend/pkg/errors"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// RegisterUser creates a user together with its self-follow edge
func (s *Service) RegisterUser(ctx context.Context, in NewUser) (*User, error) {
	username := strings.TrimSpace(in.Username)
	if !usernamePattern.MatchString(username) {
		return nil, apperrors.NewInvalidArgument("username", "username must be 3-20 letters, digits or underscores")
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = username
	}

	user := User{
		ID:          s.newID(),
		Username:    username,
		DisplayName: displayName,
		Description: in.Description,
		Avatar:      in.Avatar,
		CreatedAt:   s.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return &user, nil
}

// GetUser returns a user by id
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, userID)
}

// FindUserByUsername returns a user by username, case-insensitively
func (s *Service) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	if err := requireID("username", username); err != nil {
		return nil, err
	}
	return s.store.FindUserByUsername(ctx, username)
}

// UpdateProfile changes the mutable display fields of a user
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	if update.DisplayName != nil && strings.TrimSpace(*update.DisplayName) == "" {
		return nil, apperrors.NewInvalidArgument("display_name", "display name cannot be empty")
	}
	return s.store.UpdateUser(ctx, userID, update)
}
