package social

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chirp/backend/internal/constants"
	"chirp/backend/internal/metrics"
	apperrors "chirp/backend/pkg/errors"
)

// ============================================================================
// Post Operations
// ============================================================================

// CreatePost resolves tags, persists the post and fans out notifications.
// Fan-out failures are logged and counted but never fail the call.
func (s *Service) CreatePost(ctx context.Context, in NewPost) (*Post, error) {
	if err := requireID("author_id", in.AuthorID); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperrors.NewInvalidArgument("content", "content cannot be empty")
	}
	if utf8.RuneCountInString(content) > constants.MaxPostLength {
		return nil, apperrors.NewInvalidArgument("content", "content is too long")
	}
	if in.RespondsTo != "" && in.Quotes != "" {
		return nil, apperrors.NewInvalidArgument("ref", "a post cannot both respond to and quote a post")
	}

	record := PostRecord{
		ID:        s.newID(),
		AuthorID:  in.AuthorID,
		Content:   content,
		CreatedAt: s.Now(),
		Tags:      ExtractTags(content),
	}
	switch {
	case in.RespondsTo != "":
		record.Ref = &PostRef{Kind: PostKindResponse, PostID: in.RespondsTo}
	case in.Quotes != "":
		record.Ref = &PostRef{Kind: PostKindQuote, PostID: in.Quotes}
	}

	post, err := s.store.CreatePost(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Post created",
		zap.String("post_id", post.ID),
		zap.String("author_id", post.AuthorID),
		zap.String("kind", string(post.Kind())),
		zap.Strings("tags", post.Tags),
	)

	s.fanOut(ctx, post, ExtractMentions(content))
	return post, nil
}

// fanOut runs the parent notification and the mention notifications side by side.
// Each branch is independent: one failing does not cancel the other.
func (s *Service) fanOut(ctx context.Context, post *Post, mentions []string) {
	var g errgroup.Group

	if post.Ref != nil {
		g.Go(func() error {
			if _, err := s.NotifyParentAuthor(ctx, post); err != nil {
				s.reportFanOutFailure(post, string(post.Ref.Kind), err)
			}
			return nil
		})
	}

	if len(mentions) > 0 {
		g.Go(func() error {
			users, err := s.store.FindUsersByUsernames(ctx, mentions)
			if err == nil {
				_, err = s.NotifyMentions(ctx, post, users)
			}
			if err != nil {
				s.reportFanOutFailure(post, string(NotificationMention), err)
			}
			return nil
		})
	}

	// Branches report their own failures and never return an error.
	_ = g.Wait()
}

// invalidateTrending drops cached rankings so a deleted post stops counting
func (s *Service) invalidateTrending(ctx context.Context, postID string) {
	if s.trending == nil {
		return
	}
	if err := s.trending.Invalidate(ctx); err != nil {
		s.logger.Warn("Trending cache invalidation failed", zap.String("post_id", postID), zap.Error(err))
	}
}

func (s *Service) reportFanOutFailure(post *Post, kind string, err error) {
	metrics.IncFanOutFailure(kind)
	s.logger.Error("Notification fan-out failed",
		zap.String("post_id", post.ID),
		zap.String("author_id", post.AuthorID),
		zap.String("kind", kind),
		zap.Error(err),
	)
}

// GetPost returns a visible post. Deleted posts report NotFound.
func (s *Service) GetPost(ctx context.Context, postID string) (*Post, error) {
	if err := requireID("post_id", postID); err != nil {
		return nil, err
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Deleted {
		return nil, apperrors.NewNotFound("post", postID)
	}
	return post, nil
}

// DeletePost soft-deletes a post authored by actorID
func (s *Service) DeletePost(ctx context.Context, actorID, postID string) error {
	if err := requireID("actor_id", actorID); err != nil {
		return err
	}
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return apperrors.NewForbidden("delete post", "post belongs to another user")
	}
	return s.softDelete(ctx, postID, "author")
}

// ModeratePost soft-deletes a post without an ownership check. Accepted reports use it.
func (s *Service) ModeratePost(ctx context.Context, postID string) error {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return err
	}
	return s.softDelete(ctx, postID, "moderation")
}

func (s *Service) softDelete(ctx context.Context, postID, reason string) error {
	changed, err := s.store.SoftDeletePost(ctx, postID)
	if err != nil {
		return err
	}
	if !changed {
		return apperrors.NewNotFound("post", postID)
	}
	s.invalidateTrending(ctx, postID)
	s.logger.Info("Post deleted", zap.String("post_id", postID), zap.String("reason", reason))
	return nil
}

// GetResponses lists the non-deleted responses of a post. The parent may itself be deleted.
func (s *Service) GetResponses(ctx context.Context, postID string, skip, limit int) ([]FeedItem, error) {
	page, err := NewPage(skip, limit)
	if err != nil {
		return nil, err
	}
	if err := requireID("post_id", postID); err != nil {
		return nil, err
	}
	return nonNil(s.store.ListResponses(ctx, postID, page))
}

// GetQuotes lists the non-deleted quotes of a post. The parent may itself be deleted.
func (s *Service) GetQuotes(ctx context.Context, postID string, skip, limit int) ([]FeedItem, error) {
	page, err := NewPage(skip, limit)
	if err != nil {
		return nil, err
	}
	if err := requireID("post_id", postID); err != nil {
		return nil, err
	}
	return nonNil(s.store.ListQuotes(ctx, postID, page))
}

// GetUserPosts lists the user's non-deleted posts, newest first
func (s *Service) GetUserPosts(ctx context.Context, userID string, skip, limit int) ([]FeedItem, error) {
	page, err := NewPage(skip, limit)
	if err != nil {
		return nil, err
	}
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	return nonNil(s.store.ListUserPosts(ctx, userID, page))
}

func nonNil(items []FeedItem, err error) ([]FeedItem, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []FeedItem{}
	}
	return items, nil
}
