package social

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"chirp/backend/internal/constants"
	"chirp/backend/internal/metrics"
	apperrors "chirp/backend/pkg/errors"
)

// ============================================================================
// Tag Engine
// ============================================================================

// tagPattern is bounded, not anchored: "#abc...xyz" past 20 characters keeps the first 20
var tagPattern = regexp.MustCompile(fmt.Sprintf(`#([A-Za-z0-9]{%d,%d})`, constants.TagMinLength, constants.TagMaxLength))

var mentionPattern = regexp.MustCompile(fmt.Sprintf(`@([A-Za-z0-9_]{%d,%d})`, constants.MentionMinLength, constants.MentionMaxLength))

// ExtractTags returns the lowercase, deduplicated hashtags of content in order of first use
func ExtractTags(content string) []string {
	return uniqueLower(tagPattern.FindAllStringSubmatch(content, -1))
}

// ExtractMentions returns the lowercase, deduplicated @usernames of content
func ExtractMentions(content string) []string {
	return uniqueLower(mentionPattern.FindAllStringSubmatch(content, -1))
}

func uniqueLower(matches [][]string) []string {
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.ToLower(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// FindMostPopular counts non-deleted posts per tag created inside the window
// (1h, 1d, 1w) and returns at most limit tags, highest count first.
func (s *Service) FindMostPopular(ctx context.Context, limit int, window string) ([]TagCount, error) {
	if limit < 0 {
		return nil, apperrors.NewInvalidArgument("limit", "limit cannot be negative")
	}
	d, err := ParseTagWindow(window)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		return []TagCount{}, nil
	}
	from, to := s.window(d)
	tags, err := s.store.TrendingTags(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []TagCount{}
	}
	return tags, nil
}

// GetTrendingTags is FindMostPopular behind the trending cache. Cache failures
// fall through to the store.
func (s *Service) GetTrendingTags(ctx context.Context, limit int, window string) ([]TagCount, error) {
	if s.trending == nil || limit <= 0 {
		return s.FindMostPopular(ctx, limit, window)
	}
	if _, err := ParseTagWindow(window); err != nil {
		return nil, err
	}
	window = strings.ToLower(window)

	cached, ok, err := s.trending.Get(ctx, window, limit)
	switch {
	case err != nil:
		metrics.TrendingCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("Trending cache read failed", zap.String("window", window), zap.Error(err))
	case ok:
		metrics.TrendingCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.TrendingCacheLookups.WithLabelValues("miss").Inc()
	}

	tags, err := s.FindMostPopular(ctx, limit, window)
	if err != nil {
		return nil, err
	}
	if err := s.trending.Set(ctx, window, limit, tags); err != nil {
		s.logger.Warn("Trending cache write failed", zap.String("window", window), zap.Error(err))
	}
	return tags, nil
}
