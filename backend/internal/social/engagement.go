package social

import "context"

// ============================================================================
// Engagement Counter
// ============================================================================

// GetPostInfo returns response, quote and like counts read in one snapshot.
// Deleted children are not counted; a deleted or missing post reports NotFound.
func (s *Service) GetPostInfo(ctx context.Context, postID string) (*PostInfo, error) {
	if err := requireID("post_id", postID); err != nil {
		return nil, err
	}
	return s.store.PostInfo(ctx, postID)
}

// GetUserProfileInfo returns post, follow and follower counts. Self-follow is not
// counted and an empty neighborhood yields zeros.
func (s *Service) GetUserProfileInfo(ctx context.Context, userID string) (*UserProfileInfo, error) {
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	return s.store.UserProfileInfo(ctx, userID)
}
