package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chirp/backend/internal/memgraph"
	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T, maxPageSize int) *testServer {
	gin.SetMode(gin.TestMode)
	svc := social.NewService(memgraph.New(),
		social.WithClock(clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))),
		social.WithLogger(zap.NewNop()),
	)
	h := NewHandler(svc, zap.NewNop(), Options{MaxPageSize: maxPageSize, RequestTimeout: time.Second})
	return &testServer{t: t, router: NewRouter(h)}
}

func (s *testServer) do(method, path, actor string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(ActorHeader, actor)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(username string) social.User {
	w := s.do(http.MethodPost, "/api/users", "", map[string]string{"username": username})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var user social.User
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &user))
	return user
}

func (s *testServer) post(actor, content string) social.Post {
	w := s.do(http.MethodPost, "/api/posts", actor, map[string]string{"content": content})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var post social.Post
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &post))
	return post
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, 100)

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
}

func TestFollowEndpoint_Idempotent(t *testing.T) {
	s := newTestServer(t, 100)
	alice := s.register("alice")
	bob := s.register("bob")

	w := s.do(http.MethodPost, "/api/users/"+bob.ID+"/follow", alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]bool](t, w)["changed"])

	w = s.do(http.MethodPost, "/api/users/"+bob.ID+"/follow", alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]bool](t, w)["changed"])

	w = s.do(http.MethodGet, "/api/users/"+bob.ID+"/followers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	followers := decode[[]social.User](t, w)
	require.Len(t, followers, 1)
	assert.Equal(t, alice.ID, followers[0].ID)
}

func TestFollowEndpoint_RequiresActor(t *testing.T) {
	s := newTestServer(t, 100)
	bob := s.register("bob")

	w := s.do(http.MethodPost, "/api/users/"+bob.ID+"/follow", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFollowEndpoint_Self(t *testing.T) {
	s := newTestServer(t, 100)
	alice := s.register("alice")

	w := s.do(http.MethodPost, "/api/users/"+alice.ID+"/follow", alice.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedEndpoint_NegativePagination(t *testing.T) {
	s := newTestServer(t, 100)
	alice := s.register("alice")

	w := s.do(http.MethodGet, "/api/feed?skip=-1", alice.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.ErrNegativePagination)
}

func TestFeedEndpoint_InvalidParameters(t *testing.T) {
	s := newTestServer(t, 100)
	alice := s.register("alice")

	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric limit", "?limit=ten"},
		{"unknown window", "?window=2h"},
		{"unknown mode", "?mode=random"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, "/api/feed"+tt.query, alice.ID, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestFeedEndpoint_ClampsLimit(t *testing.T) {
	s := newTestServer(t, 2)
	alice := s.register("alice")
	for _, content := range []string{"one", "two", "three"} {
		s.post(alice.ID, content)
	}

	w := s.do(http.MethodGet, "/api/feed?window=1h&limit=50", alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]social.FeedItem](t, w), 2)
}

func TestAnonymousFeedEndpoint(t *testing.T) {
	s := newTestServer(t, 100)
	alice := s.register("alice")
	bob := s.register("bob")
	s.post(alice.ID, "first")
	liked := s.post(alice.ID, "second")

	w := s.do(http.MethodPost, "/api/posts/"+liked.ID+"/like", bob.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/feed/anonymous?window=6h", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[[]social.FeedItem](t, w)
	require.Len(t, items, 2)
	assert.Equal(t, liked.ID, items[0].UUID)
}

func TestDeletePostEndpoint(t *testing.T) {
	s := newTestServer(t, 100)
	alice := s.register("alice")
	bob := s.register("bob")
	post := s.post(alice.ID, "mine")

	w := s.do(http.MethodDelete, "/api/posts/"+post.ID, bob.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/posts/"+post.ID, alice.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/posts/"+post.ID+"/like", bob.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePostEndpoint_InvalidRequest(t *testing.T) {
	s := newTestServer(t, 100)
	alice := s.register("alice")

	w := s.do(http.MethodPost, "/api/posts", alice.ID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	s := newTestServer(t, 100)
	alice := s.register("alice")
	bob := s.register("bob")
	parent := s.post(alice.ID, "hello")

	w := s.do(http.MethodPost, "/api/posts", bob.ID, map[string]string{
		"content":     "hi @alice",
		"responds_to": parent.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/notifications/unread", alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode[map[string]float64](t, w)["unread"])

	w = s.do(http.MethodGet, "/api/notifications", alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[[]social.NotificationItem](t, w)
	require.Len(t, items, 2)

	w = s.do(http.MethodPost, "/api/notifications/"+items[0].UUID+"/read", alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]bool](t, w)["changed"])

	w = s.do(http.MethodPost, "/api/notifications/read", alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]float64](t, w)["read"])

	w = s.do(http.MethodGet, "/api/notifications/unread", alice.ID, nil)
	assert.Equal(t, float64(0), decode[map[string]float64](t, w)["unread"])
}

func TestTrendingTagsEndpoint(t *testing.T) {
	s := newTestServer(t, 100)
	alice := s.register("alice")
	s.post(alice.ID, "#Go and #neo4j")
	s.post(alice.ID, "more #go")

	w := s.do(http.MethodGet, "/api/tags/trending?window=1d&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode[[]social.TagCount](t, w)
	require.Len(t, tags, 2)
	assert.Equal(t, social.TagCount{Name: "go", Count: 2}, tags[0])

	w = s.do(http.MethodGet, "/api/tags/trending?window=1m", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfileEndpoint_OtherUser(t *testing.T) {
	s := newTestServer(t, 100)
	alice := s.register("alice")
	bob := s.register("bob")

	w := s.do(http.MethodPatch, "/api/users/"+alice.ID, bob.ID, map[string]string{"display_name": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPatch, "/api/users/"+alice.ID, alice.ID, map[string]string{"display_name": "Alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", decode[social.User](t, w).DisplayName)
}
