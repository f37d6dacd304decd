package social

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chirp/backend/internal/metrics"
	apperrors "chirp/backend/pkg/errors"
)

// ============================================================================
// Feed Engine
// ============================================================================

// FeedRequest describes one page of a feed. Window is one of 1h, 6h, 12h, 24h.
type FeedRequest struct {
	ViewerID string
	Window   string
	Order    FeedOrder
	Skip     int
	Limit    int
}

// Feed returns the viewer's feed: posts by the viewer and everyone they follow,
// created inside the window, ordered chronologically or by popularity.
func (s *Service) Feed(ctx context.Context, req FeedRequest) ([]FeedItem, error) {
	if err := requireID("viewer_id", req.ViewerID); err != nil {
		return nil, err
	}
	return s.feed(ctx, req)
}

// ChronologicalFeed is Feed ordered by creation time descending
func (s *Service) ChronologicalFeed(ctx context.Context, viewerID, window string, skip, limit int) ([]FeedItem, error) {
	return s.Feed(ctx, FeedRequest{ViewerID: viewerID, Window: window, Order: FeedOrderChronological, Skip: skip, Limit: limit})
}

// PopularFeed is Feed ordered by like count descending, then creation time descending
func (s *Service) PopularFeed(ctx context.Context, viewerID, window string, skip, limit int) ([]FeedItem, error) {
	return s.Feed(ctx, FeedRequest{ViewerID: viewerID, Window: window, Order: FeedOrderPopularity, Skip: skip, Limit: limit})
}

// AnonymousFeed ranks every user's posts in the window by popularity, ignoring the follow graph
func (s *Service) AnonymousFeed(ctx context.Context, window string, skip, limit int) ([]FeedItem, error) {
	return s.feed(ctx, FeedRequest{Window: window, Order: FeedOrderPopularity, Skip: skip, Limit: limit})
}

func (s *Service) feed(ctx context.Context, req FeedRequest) ([]FeedItem, error) {
	page, err := NewPage(req.Skip, req.Limit)
	if err != nil {
		return nil, err
	}
	d, err := ParseFeedWindow(req.Window)
	if err != nil {
		return nil, err
	}
	switch req.Order {
	case FeedOrderChronological, FeedOrderPopularity:
	case "":
		req.Order = FeedOrderChronological
	default:
		return nil, apperrors.NewInvalidArgument("mode", "unknown feed mode: "+string(req.Order))
	}
	// Anonymous viewers only get the popularity ranking
	if req.ViewerID == "" {
		req.Order = FeedOrderPopularity
	}

	from, to := s.window(d)
	start := time.Now()
	items, err := s.store.Feed(ctx, FeedQuery{
		ViewerID: req.ViewerID,
		From:     from,
		To:       to,
		Order:    req.Order,
		Page:     page,
	})
	if err != nil {
		return nil, err
	}

	mode := string(req.Order)
	if req.ViewerID == "" {
		mode = "anonymous"
	}
	metrics.FeedRequests.WithLabelValues(mode).Inc()
	s.logger.Debug("Feed built",
		zap.String("viewer_id", req.ViewerID),
		zap.String("mode", mode),
		zap.String("window", req.Window),
		zap.Int("items", len(items)),
		zap.Duration("latency", time.Since(start)),
	)
	if items == nil {
		items = []FeedItem{}
	}
	return items, nil
}
