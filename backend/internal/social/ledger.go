package social

import (
	"context"

	"go.uber.org/zap"

	"chirp/backend/internal/metrics"
	apperrors "chirp/backend/pkg/errors"
)

// ============================================================================
// Interaction Ledger
// ============================================================================

// Follow creates the follower -> target edge. Repeating it is a successful no-op.
// The returned bool reports whether a new edge was written.
func (s *Service) Follow(ctx context.Context, followerID, targetID string) (bool, error) {
	if err := s.checkPair(followerID, targetID, "follow"); err != nil {
		return false, err
	}
	created, err := s.store.Follow(ctx, followerID, targetID)
	if err != nil {
		return false, err
	}
	metrics.IncLedger("follow", created)
	if created {
		s.logger.Debug("Follow created",
			zap.String("follower_id", followerID),
			zap.String("target_id", targetID),
		)
	}
	return created, nil
}

// Unfollow removes the follower -> target edge. Removing a missing edge is a no-op.
func (s *Service) Unfollow(ctx context.Context, followerID, targetID string) (bool, error) {
	if err := s.checkPair(followerID, targetID, "unfollow"); err != nil {
		return false, err
	}
	removed, err := s.store.Unfollow(ctx, followerID, targetID)
	if err != nil {
		return false, err
	}
	metrics.IncLedger("unfollow", removed)
	return removed, nil
}

// IsFollowing reports whether follower follows target. A user always follows itself.
func (s *Service) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	if err := requireID("follower_id", followerID); err != nil {
		return false, err
	}
	if err := requireID("target_id", targetID); err != nil {
		return false, err
	}
	return s.store.IsFollowing(ctx, followerID, targetID)
}

// Like creates the user -> post edge. Soft-deleted posts report NotFound.
func (s *Service) Like(ctx context.Context, userID, postID string) (bool, error) {
	if err := requireID("user_id", userID); err != nil {
		return false, err
	}
	if err := requireID("post_id", postID); err != nil {
		return false, err
	}
	created, err := s.store.Like(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	metrics.IncLedger("like", created)
	return created, nil
}

// Unlike removes the user -> post edge. Removing a missing edge is a no-op.
func (s *Service) Unlike(ctx context.Context, userID, postID string) (bool, error) {
	if err := requireID("user_id", userID); err != nil {
		return false, err
	}
	if err := requireID("post_id", postID); err != nil {
		return false, err
	}
	removed, err := s.store.Unlike(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	metrics.IncLedger("unlike", removed)
	return removed, nil
}

// HasLiked reports whether the user likes the post
func (s *Service) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	if err := requireID("user_id", userID); err != nil {
		return false, err
	}
	if err := requireID("post_id", postID); err != nil {
		return false, err
	}
	return s.store.HasLiked(ctx, userID, postID)
}

// FindAllFollowsOfUser lists the users followed by userID, self excluded
func (s *Service) FindAllFollowsOfUser(ctx context.Context, userID string, skip, limit int) ([]User, error) {
	page, err := NewPage(skip, limit)
	if err != nil {
		return nil, err
	}
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	return usersOrEmpty(s.store.ListFollows(ctx, userID, page))
}

// FindAllFollowersOfUser lists the users following userID, self excluded
func (s *Service) FindAllFollowersOfUser(ctx context.Context, userID string, skip, limit int) ([]User, error) {
	page, err := NewPage(skip, limit)
	if err != nil {
		return nil, err
	}
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	return usersOrEmpty(s.store.ListFollowers(ctx, userID, page))
}

// checkPair rejects empty ids and self-targeting through the public path.
// The self-follow edge is only written by RegisterUser.
func (s *Service) checkPair(followerID, targetID, action string) error {
	if err := requireID("follower_id", followerID); err != nil {
		return err
	}
	if err := requireID("target_id", targetID); err != nil {
		return err
	}
	if followerID == targetID {
		return apperrors.NewInvalidArgument("target_id", "cannot "+action+" yourself")
	}
	return nil
}

func usersOrEmpty(users []User, err error) ([]User, error) {
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}
