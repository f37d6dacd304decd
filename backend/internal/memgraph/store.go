// Package memgraph is an in-memory social.Store. One mutex serializes writers,
// which gives every call the single-transaction semantics the core expects.
package memgraph

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

type postNode struct {
	id        string
	authorID  string
	content   string
	createdAt time.Time
	deleted   bool
	ref       *social.PostRef // Kind and PostID only
	tags      []string
}

// Store keeps the whole graph in maps
type Store struct {
	mu sync.RWMutex

	users     map[string]*social.User
	usernames map[string]string          // lower(username) -> user id
	follows   map[string]map[string]bool // follower -> followed
	posts     map[string]*postNode
	likes     map[string]map[string]bool // post -> users
	tags      map[string]string          // name -> tag id

	notifications map[string]*social.Notification
}

var _ social.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		users:         make(map[string]*social.User),
		usernames:     make(map[string]string),
		follows:       make(map[string]map[string]bool),
		posts:         make(map[string]*postNode),
		likes:         make(map[string]map[string]bool),
		tags:          make(map[string]string),
		notifications: make(map[string]*social.Notification),
	}
}

// ============================================================================
// Users
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user social.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Username)
	if _, taken := s.usernames[key]; taken {
		return apperrors.NewInvalidArgument("username", "username already taken")
	}
	if _, exists := s.users[user.ID]; exists {
		return apperrors.NewInvalidArgument("id", "user already exists")
	}
	u := user
	s.users[u.ID] = &u
	s.usernames[key] = u.ID
	s.follows[u.ID] = map[string]bool{u.ID: true}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*social.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, apperrors.NewNotFound("user", userID)
	}
	out := *u
	return &out, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*social.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[strings.ToLower(username)]
	if !ok {
		return nil, apperrors.NewNotFound("user", username)
	}
	out := *s.users[id]
	return &out, nil
}

func (s *Store) FindUsersByUsernames(ctx context.Context, usernames []string) ([]social.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]social.User, 0, len(usernames))
	for _, name := range usernames {
		if id, ok := s.usernames[strings.ToLower(name)]; ok {
			out = append(out, *s.users[id])
		}
	}
	return out, nil
}

func (s *Store) UpdateUser(ctx context.Context, userID string, update social.ProfileUpdate) (*social.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, apperrors.NewNotFound("user", userID)
	}
	if update.DisplayName != nil {
		u.DisplayName = *update.DisplayName
	}
	if update.Description != nil {
		u.Description = *update.Description
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	out := *u
	return &out, nil
}

// ============================================================================
// Interaction Ledger
// ============================================================================

func (s *Store) Follow(ctx context.Context, followerID, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUsers(followerID, targetID); err != nil {
		return false, err
	}
	if s.follows[followerID][targetID] {
		return false, nil
	}
	s.follows[followerID][targetID] = true
	return true, nil
}

func (s *Store) Unfollow(ctx context.Context, followerID, targetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUsers(followerID, targetID); err != nil {
		return false, err
	}
	if !s.follows[followerID][targetID] {
		return false, nil
	}
	delete(s.follows[followerID], targetID)
	return true, nil
}

func (s *Store) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.follows[followerID][targetID], nil
}

func (s *Store) Like(ctx context.Context, userID, postID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireVisiblePost(userID, postID); err != nil {
		return false, err
	}
	if s.likes[postID] == nil {
		s.likes[postID] = make(map[string]bool)
	}
	if s.likes[postID][userID] {
		return false, nil
	}
	s.likes[postID][userID] = true
	return true, nil
}

func (s *Store) Unlike(ctx context.Context, userID, postID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireVisiblePost(userID, postID); err != nil {
		return false, err
	}
	if !s.likes[postID][userID] {
		return false, nil
	}
	delete(s.likes[postID], userID)
	return true, nil
}

func (s *Store) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likes[postID][userID], nil
}

func (s *Store) ListFollows(ctx context.Context, userID string, page social.Page) ([]social.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, apperrors.NewNotFound("user", userID)
	}
	var out []social.User
	for target := range s.follows[userID] {
		if publicEdge(userID, target) {
			out = append(out, *s.users[target])
		}
	}
	sortUsers(out)
	return paginate(out, page), nil
}

func (s *Store) ListFollowers(ctx context.Context, userID string, page social.Page) ([]social.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, apperrors.NewNotFound("user", userID)
	}
	var out []social.User
	for follower, targets := range s.follows {
		if targets[userID] && publicEdge(follower, userID) {
			out = append(out, *s.users[follower])
		}
	}
	sortUsers(out)
	return paginate(out, page), nil
}

// publicEdge is the single place the self-follow edge is hidden from listings
func publicEdge(followerID, targetID string) bool {
	return followerID != targetID
}

// ============================================================================
// Posts
// ============================================================================

func (s *Store) CreatePost(ctx context.Context, record social.PostRecord) (*social.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[record.AuthorID]; !ok {
		return nil, apperrors.NewNotFound("user", record.AuthorID)
	}
	var ref *social.PostRef
	if record.Ref != nil {
		parent, ok := s.posts[record.Ref.PostID]
		if !ok || parent.deleted {
			return nil, apperrors.NewNotFound("post", record.Ref.PostID)
		}
		ref = &social.PostRef{Kind: record.Ref.Kind, PostID: parent.id}
	}
	if _, exists := s.posts[record.ID]; exists {
		return nil, apperrors.NewInvalidArgument("id", "post already exists")
	}

	for _, name := range record.Tags {
		if _, ok := s.tags[name]; !ok {
			s.tags[name] = uuid.New().String()
		}
	}
	node := &postNode{
		id:        record.ID,
		authorID:  record.AuthorID,
		content:   record.Content,
		createdAt: record.CreatedAt,
		ref:       ref,
		tags:      append([]string(nil), record.Tags...),
	}
	s.posts[node.id] = node
	return s.toPost(node), nil
}

func (s *Store) GetPost(ctx context.Context, postID string) (*social.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.posts[postID]
	if !ok {
		return nil, apperrors.NewNotFound("post", postID)
	}
	return s.toPost(node), nil
}

func (s *Store) SoftDeletePost(ctx context.Context, postID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.posts[postID]
	if !ok {
		return false, apperrors.NewNotFound("post", postID)
	}
	if node.deleted {
		return false, nil
	}
	node.deleted = true
	return true, nil
}

func (s *Store) ListUserPosts(ctx context.Context, userID string, page social.Page) ([]social.FeedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, apperrors.NewNotFound("user", userID)
	}
	return s.listPosts(page, func(p *postNode) bool { return p.authorID == userID }), nil
}

func (s *Store) ListResponses(ctx context.Context, postID string, page social.Page) ([]social.FeedItem, error) {
	return s.listChildren(postID, social.PostKindResponse, page)
}

func (s *Store) ListQuotes(ctx context.Context, postID string, page social.Page) ([]social.FeedItem, error) {
	return s.listChildren(postID, social.PostKindQuote, page)
}

func (s *Store) listChildren(postID string, kind social.PostKind, page social.Page) ([]social.FeedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.posts[postID]; !ok {
		return nil, apperrors.NewNotFound("post", postID)
	}
	return s.listPosts(page, func(p *postNode) bool {
		return p.ref != nil && p.ref.Kind == kind && p.ref.PostID == postID
	}), nil
}

// listPosts returns non-deleted posts matching keep, newest first
func (s *Store) listPosts(page social.Page, keep func(*postNode) bool) []social.FeedItem {
	var nodes []*postNode
	for _, p := range s.posts {
		if !p.deleted && keep(p) {
			nodes = append(nodes, p)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return newerFirst(nodes[i], nodes[j]) })
	return s.toFeedItems(paginate(nodes, page))
}

// ============================================================================
// Feed and Tags
// ============================================================================

func (s *Store) Feed(ctx context.Context, query social.FeedQuery) ([]social.FeedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var visible map[string]bool
	if query.ViewerID != "" {
		if _, ok := s.users[query.ViewerID]; !ok {
			return nil, apperrors.NewNotFound("user", query.ViewerID)
		}
		// Includes the viewer through the self-follow edge
		visible = s.follows[query.ViewerID]
	}

	var nodes []*postNode
	for _, p := range s.posts {
		if p.deleted || !inWindow(p.createdAt, query.From, query.To) {
			continue
		}
		if visible != nil && !visible[p.authorID] {
			continue
		}
		nodes = append(nodes, p)
	}

	if query.Order == social.FeedOrderPopularity {
		sort.Slice(nodes, func(i, j int) bool {
			li, lj := len(s.likes[nodes[i].id]), len(s.likes[nodes[j].id])
			if li != lj {
				return li > lj
			}
			return newerFirst(nodes[i], nodes[j])
		})
	} else {
		sort.Slice(nodes, func(i, j int) bool { return newerFirst(nodes[i], nodes[j]) })
	}
	return s.toFeedItems(paginate(nodes, query.Page)), nil
}

func (s *Store) TrendingTags(ctx context.Context, from, to time.Time, limit int) ([]social.TagCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, p := range s.posts {
		if p.deleted || !inWindow(p.createdAt, from, to) {
			continue
		}
		for _, name := range p.tags {
			counts[name]++
		}
	}

	out := make([]social.TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, social.TagCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ============================================================================
// Engagement
// ============================================================================

func (s *Store) PostInfo(ctx context.Context, postID string) (*social.PostInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.posts[postID]
	if !ok || node.deleted {
		return nil, apperrors.NewNotFound("post", postID)
	}
	info := &social.PostInfo{Likes: int64(len(s.likes[postID]))}
	for _, p := range s.posts {
		if p.deleted || p.ref == nil || p.ref.PostID != postID {
			continue
		}
		switch p.ref.Kind {
		case social.PostKindResponse:
			info.Responses++
		case social.PostKindQuote:
			info.Quotes++
		}
	}
	return info, nil
}

func (s *Store) UserProfileInfo(ctx context.Context, userID string) (*social.UserProfileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, apperrors.NewNotFound("user", userID)
	}
	info := &social.UserProfileInfo{}
	for _, p := range s.posts {
		if p.authorID == userID && !p.deleted {
			info.Posts++
		}
	}
	for target := range s.follows[userID] {
		if publicEdge(userID, target) {
			info.Follows++
		}
	}
	for follower, targets := range s.follows {
		if targets[userID] && publicEdge(follower, userID) {
			info.Followers++
		}
	}
	return info, nil
}

// ============================================================================
// Notifications
// ============================================================================

func (s *Store) CreateNotifications(ctx context.Context, notifications []social.Notification) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before writing any of it
	for _, n := range notifications {
		if _, ok := s.users[n.RecipientID]; !ok {
			return 0, apperrors.NewNotFound("user", n.RecipientID)
		}
		if _, ok := s.posts[n.PostID]; !ok {
			return 0, apperrors.NewNotFound("post", n.PostID)
		}
		if _, dup := s.notifications[n.ID]; dup {
			return 0, apperrors.NewInvalidArgument("id", "notification already exists")
		}
	}
	for _, n := range notifications {
		stored := n
		s.notifications[stored.ID] = &stored
	}
	return len(notifications), nil
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, n := range s.notifications {
		if n.RecipientID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, page social.Page) ([]social.NotificationItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []*social.Notification
	for _, n := range s.notifications {
		if n.RecipientID == userID {
			owned = append(owned, n)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return owned[i].ID < owned[j].ID
	})

	owned = paginate(owned, page)
	out := make([]social.NotificationItem, 0, len(owned))
	for _, n := range owned {
		item := social.NotificationItem{
			UUID:     n.ID,
			Kind:     n.Kind,
			Read:     n.Read,
			Date:     n.CreatedAt,
			PostUUID: n.PostID,
		}
		if p, ok := s.posts[n.PostID]; ok {
			item.PostContent = p.content
			item.Author = s.username(p.authorID)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Store) MarkAllRead(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, n := range s.notifications {
		if n.RecipientID == userID && !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[notificationID]
	if !ok || n.RecipientID != userID || n.Read {
		return false, nil
	}
	n.Read = true
	return true, nil
}

// ============================================================================
// Helpers
// ============================================================================

func (s *Store) requireUsers(ids ...string) error {
	for _, id := range ids {
		if _, ok := s.users[id]; !ok {
			return apperrors.NewNotFound("user", id)
		}
	}
	return nil
}

func (s *Store) requireVisiblePost(userID, postID string) error {
	if err := s.requireUsers(userID); err != nil {
		return err
	}
	p, ok := s.posts[postID]
	if !ok || p.deleted {
		return apperrors.NewNotFound("post", postID)
	}
	return nil
}

func (s *Store) username(userID string) string {
	if u, ok := s.users[userID]; ok {
		return u.Username
	}
	return ""
}

func (s *Store) toPost(node *postNode) *social.Post {
	post := &social.Post{
		ID:             node.id,
		AuthorID:       node.authorID,
		AuthorUsername: s.username(node.authorID),
		Content:        node.content,
		CreatedAt:      node.createdAt,
		Deleted:        node.deleted,
		Tags:           append([]string(nil), node.tags...),
	}
	if node.ref != nil {
		ref := *node.ref
		if parent, ok := s.posts[ref.PostID]; ok {
			ref.AuthorID = parent.authorID
			ref.AuthorUsername = s.username(parent.authorID)
		}
		post.Ref = &ref
	}
	return post
}

func (s *Store) toFeedItems(nodes []*postNode) []social.FeedItem {
	out := make([]social.FeedItem, 0, len(nodes))
	for _, p := range nodes {
		item := social.FeedItem{
			UUID:    p.id,
			Content: p.content,
			Date:    p.createdAt,
			Author:  s.username(p.authorID),
		}
		if p.ref != nil {
			switch p.ref.Kind {
			case social.PostKindQuote:
				item.QuotesUUID = p.ref.PostID
			case social.PostKindResponse:
				item.RespondsToUUID = p.ref.PostID
				if parent, ok := s.posts[p.ref.PostID]; ok {
					item.RespondsToUsername = s.username(parent.authorID)
				}
			}
		}
		out = append(out, item)
	}
	return out
}

func newerFirst(a, b *postNode) bool {
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.After(b.createdAt)
	}
	return a.id < b.id
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func sortUsers(users []social.User) {
	sort.Slice(users, func(i, j int) bool {
		a, b := strings.ToLower(users[i].Username), strings.ToLower(users[j].Username)
		if a != b {
			return a < b
		}
		return users[i].ID < users[j].ID
	})
}

func paginate[T any](items []T, page social.Page) []T {
	if page.Skip >= len(items) {
		return nil
	}
	end := len(items)
	if page.Limit < end-page.Skip {
		end = page.Skip + page.Limit
	}
	return items[page.Skip:end]
}
