package social

import (
	"context"

	"go.uber.org/zap"

	"chirp/backend/internal/metrics"
	apperrors "chirp/backend/pkg/errors"
)

// ============================================================================
// Notification Fan-out
// ============================================================================

// NotifyParentAuthor notifies the author of the post that a response or quote
// refers to. Nothing is written when the author responds to or quotes themselves.
// The returned bool reports whether a notification was created.
func (s *Service) NotifyParentAuthor(ctx context.Context, post *Post) (bool, error) {
	if post == nil || post.Ref == nil {
		return false, apperrors.NewInvalidArgument("post", "post is neither a response nor a quote")
	}

	var kind NotificationKind
	switch post.Ref.Kind {
	case PostKindResponse:
		kind = NotificationResponse
	case PostKindQuote:
		kind = NotificationQuote
	default:
		return false, apperrors.NewInvalidArgument("post", "unknown reference kind: "+string(post.Ref.Kind))
	}

	recipient := post.Ref.AuthorID
	if recipient == "" {
		parent, err := s.store.GetPost(ctx, post.Ref.PostID)
		if err != nil {
			return false, err
		}
		recipient = parent.AuthorID
	}
	if recipient == post.AuthorID {
		return false, nil
	}

	n, err := s.store.CreateNotifications(ctx, []Notification{s.newNotification(recipient, post.ID, kind)})
	if err != nil {
		return false, err
	}
	metrics.AddNotifications(string(kind), n)
	return n == 1, nil
}

// NotifyMentions writes one mention notification per mentioned user other than
// the author, all in one transaction. It returns the number created.
func (s *Service) NotifyMentions(ctx context.Context, post *Post, mentioned []User) (int, error) {
	if post == nil {
		return 0, apperrors.NewInvalidArgument("post", "post is required")
	}

	seen := make(map[string]bool, len(mentioned))
	batch := make([]Notification, 0, len(mentioned))
	for _, u := range mentioned {
		if u.ID == "" || u.ID == post.AuthorID || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		batch = append(batch, s.newNotification(u.ID, post.ID, NotificationMention))
	}
	if len(batch) == 0 {
		return 0, nil
	}

	n, err := s.store.CreateNotifications(ctx, batch)
	if err != nil {
		return 0, err
	}
	metrics.AddNotifications(string(NotificationMention), n)
	return n, nil
}

// CountUnread counts the user's unread notifications
func (s *Service) CountUnread(ctx context.Context, userID string) (int64, error) {
	if err := requireID("user_id", userID); err != nil {
		return 0, err
	}
	return s.store.CountUnread(ctx, userID)
}

// ListNotifications returns the user's notifications, newest first
func (s *Service) ListNotifications(ctx context.Context, userID string, skip, limit int) ([]NotificationItem, error) {
	page, err := NewPage(skip, limit)
	if err != nil {
		return nil, err
	}
	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}
	items, err := s.store.ListNotifications(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []NotificationItem{}
	}
	return items, nil
}

// ReadAll marks every unread notification of the user read and returns how many changed
func (s *Service) ReadAll(ctx context.Context, userID string) (int, error) {
	if err := requireID("user_id", userID); err != nil {
		return 0, err
	}
	n, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("Notifications read", zap.String("user_id", userID), zap.Int("count", n))
	return n, nil
}

// ReadOne marks one notification read. It returns false when the notification is
// already read, missing, or addressed to someone else.
func (s *Service) ReadOne(ctx context.Context, userID, notificationID string) (bool, error) {
	if err := requireID("user_id", userID); err != nil {
		return false, err
	}
	if notificationID == "" {
		return false, nil
	}
	return s.store.MarkRead(ctx, userID, notificationID)
}

func (s *Service) newNotification(recipientID, postID string, kind NotificationKind) Notification {
	return Notification{
		ID:          s.newID(),
		RecipientID: recipientID,
		PostID:      postID,
		Kind:        kind,
		CreatedAt:   s.Now(),
	}
}
