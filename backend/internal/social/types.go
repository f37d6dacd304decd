package social

import "time"

// User is a registered account
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUser holds the fields supplied at registration
type NewUser struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Avatar      string `json:"avatar"`
}

// ProfileUpdate changes display fields; nil fields are left untouched
type ProfileUpdate struct {
	DisplayName *string `json:"display_name"`
	Description *string `json:"description"`
	Avatar      *string `json:"avatar"`
}

// PostKind tells plain posts, responses and quotes apart
type PostKind string

const (
	PostKindPlain    PostKind = "post"
	PostKindResponse PostKind = "response"
	PostKindQuote    PostKind = "quote"
)

// PostRef is the optional outgoing content relationship of a post
type PostRef struct {
	Kind           PostKind `json:"kind"`
	PostID         string   `json:"post_id"`
	AuthorID       string   `json:"author_id,omitempty"`
	AuthorUsername string   `json:"author_username,omitempty"`
}

// Post is a single piece of content. Responses and quotes are posts with a Ref.
type Post struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	Deleted        bool      `json:"deleted"`
	Ref            *PostRef  `json:"ref,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
}

// Kind returns the variant of the post
func (p *Post) Kind() PostKind {
	if p.Ref == nil {
		return PostKindPlain
	}
	return p.Ref.Kind
}

// NewPost is the input of CreatePost. At most one of RespondsTo and Quotes may be set.
type NewPost struct {
	AuthorID   string `json:"author_id"`
	Content    string `json:"content"`
	RespondsTo string `json:"responds_to,omitempty"`
	Quotes     string `json:"quotes,omitempty"`
}

// PostRecord is what the store persists for a new post
type PostRecord struct {
	ID        string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	Ref       *PostRef
	Tags      []string
}

// FeedItem is the flat row returned by feed and post listings
type FeedItem struct {
	UUID               string    `json:"uuid"`
	Content            string    `json:"content"`
	Date               time.Time `json:"date"`
	Author             string    `json:"author"`
	QuotesUUID         string    `json:"quotes_uuid,omitempty"`
	RespondsToUUID     string    `json:"responds_to_uuid,omitempty"`
	RespondsToUsername string    `json:"responds_to_username,omitempty"`
}

// FeedOrder selects the ranking of a feed
type FeedOrder string

const (
	FeedOrderChronological FeedOrder = "chronological"
	FeedOrderPopularity    FeedOrder = "popular"
)

// FeedQuery is passed to the store. An empty ViewerID means the anonymous feed.
type FeedQuery struct {
	ViewerID string
	From     time.Time
	To       time.Time
	Order    FeedOrder
	Page     Page
}

// Page is a validated skip/limit pair
type Page struct {
	Skip  int
	Limit int
}

// Tag is a lowercase hashtag
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TagCount is one row of the trending ranking
type TagCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// NotificationKind is the reason a notification was created
type NotificationKind string

const (
	NotificationResponse NotificationKind = "response"
	NotificationQuote    NotificationKind = "quote"
	NotificationMention  NotificationKind = "mention"
)

// Notification is a record addressed to one recipient about one post
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	PostID      string           `json:"post_id"`
	Kind        NotificationKind `json:"kind"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationItem is a listed notification with the triggering post flattened in
type NotificationItem struct {
	UUID        string           `json:"uuid"`
	Kind        NotificationKind `json:"kind"`
	Read        bool             `json:"read"`
	Date        time.Time        `json:"date"`
	PostUUID    string           `json:"post_uuid"`
	PostContent string           `json:"post_content"`
	Author      string           `json:"author"`
}

// PostInfo holds the engagement counters of a post
type PostInfo struct {
	Responses int64 `json:"responses"`
	Likes     int64 `json:"likes"`
	Quotes    int64 `json:"quotes"`
}

// UserProfileInfo holds the aggregate counters of a user
type UserProfileInfo struct {
	Posts     int64 `json:"posts"`
	Follows   int64 `json:"follows"`
	Followers int64 `json:"followers"`
}
