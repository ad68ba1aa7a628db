package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nextfeed/feedapi/internal/feed"
	"github.com/nextfeed/feedapi/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler *JSONRPCHandler
	logger  *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(registry *feed.Registry, cached *feed.CachedClient) *Router {
	handler := NewJSONRPCHandler()

	feedAPI := NewFeedAPI(registry, cached)
	handler.RegisterMethod("feed.get", feedAPI.GetFeed)
	handler.RegisterMethod("feed.invalidate", feedAPI.Invalidate)

	return &Router{
		handler: handler,
		logger:  logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	engine.POST("/", r.handler.Handle)
}

func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "feedapi",
	})
}
