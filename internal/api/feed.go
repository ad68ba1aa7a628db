package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nextfeed/feedapi/internal/feed"
	"github.com/nextfeed/feedapi/pkg/logging"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// FeedAPI provides the feed retrieval methods
type FeedAPI struct {
	registry *feed.Registry
	cached   *feed.CachedClient
	logger   *zap.Logger
}

// NewFeedAPI creates a new feed API. cached may be nil when no cache store
// is configured; feed.invalidate is then unavailable.
func NewFeedAPI(registry *feed.Registry, cached *feed.CachedClient) *FeedAPI {
	return &FeedAPI{
		registry: registry,
		cached:   cached,
		logger:   logging.WithComponent("feed-api"),
	}
}

type feedItemObject struct {
	PostID   string          `json:"post_id"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// GetFeed handles feed.get
func (a *FeedAPI) GetFeed(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Version  interface{} `json:"version"`
		UserID   string      `json:"user_id"`
		PageSize int         `json:"page_size"`
		Offset   int         `json:"offset"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewError(ErrInvalidParams, "Invalid parameters format", err)
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	if p.Offset < 0 {
		return nil, NewError(ErrInvalidParams, "Invalid parameters format", fmt.Errorf("offset must be non-negative"))
	}

	gen := a.registry.Resolve(versionString(p.Version))
	res, err := gen.Generate(c.Request.Context(), p.UserID, p.PageSize, p.Offset)
	if err != nil {
		var ue *feed.UpstreamError
		if errors.As(err, &ue) && !ue.Retryable() {
			return nil, NewError(ErrInvalidParams, "Feed request rejected", err)
		}
		return nil, NewError(ErrServerError, "Feed service unavailable", err)
	}

	items := make([]feedItemObject, len(res))
	for i, it := range res {
		items[i].PostID = it.PostID
		if it.Metadata != nil {
			items[i].Metadata = json.RawMessage(*it.Metadata)
		}
	}
	return gin.H{"data": items}, nil
}

// Invalidate handles feed.invalidate
func (a *FeedAPI) Invalidate(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		FeedID string `json:"feed_id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, NewError(ErrInvalidParams, "Invalid parameters format", err)
	}
	if p.FeedID == "" {
		return nil, NewError(ErrInvalidParams, "Invalid parameters format", fmt.Errorf("missing required parameter: feed_id"))
	}
	if a.cached == nil {
		return nil, NewError(ErrServerError, "Feed cache not configured", nil)
	}

	if err := a.cached.Invalidate(c.Request.Context(), p.FeedID); err != nil {
		return nil, NewError(ErrServerError, "Failed to invalidate feed", err)
	}
	a.logger.Info("feed invalidated", zap.String("feed_id", p.FeedID))
	return gin.H{"status": "ok"}, nil
}

// versionString normalizes the version parameter, which callers send as
// either a string or a number.
func versionString(v interface{}) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.Itoa(int(n))
	case json.Number:
		return n.String()
	default:
		return ""
	}
}
