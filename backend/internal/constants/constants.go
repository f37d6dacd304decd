package constants

import "time"

// Feed windows
const (
	FeedWindow1h  = "1h"
	FeedWindow6h  = "6h"
	FeedWindow12h = "12h"
	FeedWindow24h = "24h"
)

// Trending tag windows
const (
	TagWindowHour = "1h"
	TagWindowDay  = "1d"
	TagWindowWeek = "1w"
)

// FeedWindows maps each recognized feed window to its duration
var FeedWindows = map[string]time.Duration{
	FeedWindow1h:  time.Hour,
	FeedWindow6h:  6 * time.Hour,
	FeedWindow12h: 12 * time.Hour,
	FeedWindow24h: 24 * time.Hour,
}

// TagWindows maps each recognized trending window to its duration
var TagWindows = map[string]time.Duration{
	TagWindowHour: time.Hour,
	TagWindowDay:  24 * time.Hour,
	TagWindowWeek: 7 * 24 * time.Hour,
}

// Content constants
const (
	// MaxPostLength is the maximum number of characters in a post
	MaxPostLength = 280

	// TagMinLength and TagMaxLength bound the alphanumeric part of a hashtag
	TagMinLength = 2
	TagMaxLength = 20

	// MentionMinLength and MentionMaxLength bound the part of an @mention after the @
	MentionMinLength = 3
	MentionMaxLength = 20
)

// Pagination defaults used by the HTTP layer
const (
	DefaultPageSize = 20
)

// Relationship types that link a post to the post it refers to
const (
	RelRespondsTo = "RESPONDS_TO"
	RelQuotes     = "QUOTES"
)
