package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chirp/backend/internal/social"
	apperrors "chirp/backend/pkg/errors"
)

// ============================================================================
// Users
// ============================================================================

func (h *Handler) registerUser(c *gin.Context) {
	var req social.NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.svc.RegisterUser(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) findUserByUsername(c *gin.Context) {
	user, err := h.svc.FindUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	userID := c.Param("id")
	if userID != actorID(c) {
		h.respondError(c, apperrors.NewForbidden("update profile", "profile belongs to another user"))
		return
	}
	var req social.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.svc.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) getUserProfileInfo(c *gin.Context) {
	info, err := h.svc.GetUserProfileInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) listFollows(c *gin.Context) {
	skip, limit, ok := h.pagination(c)
	if !ok {
		return
	}
	users, err := h.svc.FindAllFollowsOfUser(c.Request.Context(), c.Param("id"), skip, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) listFollowers(c *gin.Context) {
	skip, limit, ok := h.pagination(c)
	if !ok {
		return
	}
	users, err := h.svc.FindAllFollowersOfUser(c.Request.Context(), c.Param("id"), skip, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) listUserPosts(c *gin.Context) {
	skip, limit, ok := h.pagination(c)
	if !ok {
		return
	}
	items, err := h.svc.GetUserPosts(c.Request.Context(), c.Param("id"), skip, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) isFollowing(c *gin.Context) {
	following, err := h.svc.IsFollowing(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}

func (h *Handler) follow(c *gin.Context) {
	changed, err := h.svc.Follow(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *Handler) unfollow(c *gin.Context) {
	changed, err := h.svc.Unfollow(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// ============================================================================
// Posts
// ============================================================================

func (h *Handler) createPost(c *gin.Context) {
	var req struct {
		Content    string `json:"content" binding:"required"`
		RespondsTo string `json:"responds_to"`
		Quotes     string `json:"quotes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post, err := h.svc.CreatePost(c.Request.Context(), social.NewPost{
		AuthorID:   actorID(c),
		Content:    req.Content,
		RespondsTo: req.RespondsTo,
		Quotes:     req.Quotes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) getPost(c *gin.Context) {
	post, err := h.svc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) deletePost(c *gin.Context) {
	if err := h.svc.DeletePost(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) moderatePost(c *gin.Context) {
	if err := h.svc.ModeratePost(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getPostInfo(c *gin.Context) {
	info, err := h.svc.GetPostInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) listResponses(c *gin.Context) {
	skip, limit, ok := h.pagination(c)
	if !ok {
		return
	}
	items, err := h.svc.GetResponses(c.Request.Context(), c.Param("id"), skip, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) listQuotes(c *gin.Context) {
	skip, limit, ok := h.pagination(c)
	if !ok {
		return
	}
	items, err := h.svc.GetQuotes(c.Request.Context(), c.Param("id"), skip, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) hasLiked(c *gin.Context) {
	liked, err := h.svc.HasLiked(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (h *Handler) like(c *gin.Context) {
	changed, err := h.svc.Like(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *Handler) unlike(c *gin.Context) {
	changed, err := h.svc.Unlike(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// ============================================================================
// Feed and Tags
// ============================================================================

func (h *Handler) feed(c *gin.Context) {
	skip, limit, ok := h.pagination(c)
	if !ok {
		return
	}
	items, err := h.svc.Feed(c.Request.Context(), social.FeedRequest{
		ViewerID: actorID(c),
		Window:   c.DefaultQuery("window", "24h"),
		Order:    social.FeedOrder(c.Query("mode")),
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) anonymousFeed(c *gin.Context) {
	skip, limit, ok := h.pagination(c)
	if !ok {
		return
	}
	items, err := h.svc.AnonymousFeed(c.Request.Context(), c.DefaultQuery("window", "24h"), skip, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) trendingTags(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit", 10)
	if !ok {
		return
	}
	if h.opts.MaxPageSize > 0 && limit > h.opts.MaxPageSize {
		limit = h.opts.MaxPageSize
	}
	tags, err := h.svc.GetTrendingTags(c.Request.Context(), limit, c.DefaultQuery("window", "1d"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// ============================================================================
// Notifications
// ============================================================================

func (h *Handler) listNotifications(c *gin.Context) {
	skip, limit, ok := h.pagination(c)
	if !ok {
		return
	}
	items, err := h.svc.ListNotifications(c.Request.Context(), actorID(c), skip, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) countUnread(c *gin.Context) {
	count, err := h.svc.CountUnread(c.Request.Context(), actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) readAll(c *gin.Context) {
	n, err := h.svc.ReadAll(c.Request.Context(), actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": n})
}

func (h *Handler) readOne(c *gin.Context) {
	changed, err := h.svc.ReadOne(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}
