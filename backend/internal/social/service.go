// Package social is the engagement core: follow/like ledger, feeds, tags,
// notification fan-out and engagement counters over a graph Store.
package social

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"chirp/backend/internal/constants"
	apperrors "chirp/backend/pkg/errors"
	"chirp/backend/pkg/logger"
)

// Service is request-scoped and keeps no state between calls besides its collaborators
type Service struct {
	store    Store
	clock    clockwork.Clock
	trending TrendingCache
	newID    func() string
	logger   *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces the real clock
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithTrendingCache enables caching of trending rankings
func WithTrendingCache(c TrendingCache) Option {
	return func(s *Service) { s.trending = c }
}

// WithIDGenerator replaces uuid generation
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithLogger replaces the global logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates the core service over a store
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		clock:  clockwork.NewRealClock(),
		newID:  func() string { return uuid.New().String() },
		logger: logger.Named("social"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time in UTC
func (s *Service) Now() time.Time {
	return s.clock.Now().UTC()
}

// NewPage validates a skip/limit pair before anything reaches the store
func NewPage(skip, limit int) (Page, error) {
	if skip < 0 || limit < 0 {
		return Page{}, apperrors.NewNegativePagination()
	}
	return Page{Skip: skip, Limit: limit}, nil
}

// ParseFeedWindow resolves a feed window name (1h, 6h, 12h, 24h)
func ParseFeedWindow(name string) (time.Duration, error) {
	d, ok := constants.FeedWindows[strings.ToLower(name)]
	if !ok {
		return 0, apperrors.NewInvalidArgument("window", "unknown feed window: "+name)
	}
	return d, nil
}

// ParseTagWindow resolves a trending window name (1h, 1d, 1w)
func ParseTagWindow(name string) (time.Duration, error) {
	d, ok := constants.TagWindows[strings.ToLower(name)]
	if !ok {
		return 0, apperrors.NewInvalidArgument("window", "unknown tag window: "+name)
	}
	return d, nil
}

// window returns [now-d, now]
func (s *Service) window(d time.Duration) (time.Time, time.Time) {
	now := s.Now()
	return now.Add(-d), now
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewInvalidArgument(field, field+" is required")
	}
	return nil
}
