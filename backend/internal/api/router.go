// Package api is the HTTP surface over the social service
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chirp/backend/internal/metrics"
	"chirp/backend/internal/social"
)

// ActorHeader carries the id of the acting user
const ActorHeader = "X-User-ID"

const actorKey = "actor"

// Options tune request handling
type Options struct {
	MaxPageSize    int
	RequestTimeout time.Duration
}

// Handler serves the social API
type Handler struct {
	svc  *social.Service
	log  *zap.Logger
	opts Options
}

func NewHandler(svc *social.Service, log *zap.Logger, opts Options) *Handler {
	return &Handler{svc: svc, log: log, opts: opts}
}

// NewRouter builds the gin engine with middleware and all routes
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(h.log))
	router.Use(gin.Recovery())
	router.Use(cors())
	if h.opts.RequestTimeout > 0 {
		router.Use(requestTimeout(h.opts.RequestTimeout))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	h.Register(router.Group("/api"))
	return router
}

// Register mounts the API routes on group
func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/users", h.registerUser)
	api.GET("/usernames/:username", h.findUserByUsername)

	users := api.Group("/users/:id")
	{
		users.GET("", h.getUser)
		users.PATCH("", requireActor(), h.updateProfile)
		users.GET("/profile", h.getUserProfileInfo)
		users.GET("/follows", h.listFollows)
		users.GET("/followers", h.listFollowers)
		users.GET("/posts", h.listUserPosts)
		users.GET("/follow", requireActor(), h.isFollowing)
		users.POST("/follow", requireActor(), h.follow)
		users.DELETE("/follow", requireActor(), h.unfollow)
	}

	api.POST("/posts", requireActor(), h.createPost)
	posts := api.Group("/posts/:id")
	{
		posts.GET("", h.getPost)
		posts.DELETE("", requireActor(), h.deletePost)
		posts.GET("/info", h.getPostInfo)
		posts.GET("/responses", h.listResponses)
		posts.GET("/quotes", h.listQuotes)
		posts.GET("/like", requireActor(), h.hasLiked)
		posts.POST("/like", requireActor(), h.like)
		posts.DELETE("/like", requireActor(), h.unlike)
	}

	// Authorization of moderators happens upstream
	api.POST("/moderation/posts/:id/remove", h.moderatePost)

	api.GET("/feed", requireActor(), h.feed)
	api.GET("/feed/anonymous", h.anonymousFeed)
	api.GET("/tags/trending", h.trendingTags)

	notifications := api.Group("/notifications", requireActor())
	{
		notifications.GET("", h.listNotifications)
		notifications.GET("/unread", h.countUnread)
		notifications.POST("/read", h.readAll)
		notifications.POST("/:id/read", h.readOne)
	}
}

// ============================================================================
// Middleware
// ============================================================================

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, "+ActorHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireActor rejects requests without an actor header
func requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(ActorHeader)
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ActorHeader + " header is required"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func actorID(c *gin.Context) string {
	return c.GetString(actorKey)
}
