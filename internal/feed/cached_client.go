package feed

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/nextfeed/feedapi/internal/cache"
	"github.com/nextfeed/feedapi/pkg/config"
	"github.com/nextfeed/feedapi/pkg/logging"
	"github.com/nextfeed/feedapi/pkg/telemetry"
)

// cacheWriteTimeout bounds the detached cache write so an abandoned request
// cannot leak its goroutine.
const cacheWriteTimeout = 5 * time.Second

// Store is the key-value store backing the cache decorator. Missing keys
// yield empty strings, not errors.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	MGet(ctx context.Context, keys ...string) ([]string, error)
	SetBatch(ctx context.Context, entries []cache.Entry) error
}

// CachedClient serves feeds from the cache when a fresh full snapshot exists
// and delegates to the wrapped client otherwise. It is a drop-in wrapper
// around any Client.
//
// A cache entry holds the full unpaginated feed as computed by the wrapped
// client, plus its generation time; pages beyond the first are always sliced
// out of that snapshot rather than re-requested upstream.
type CachedClient struct {
	client          Client
	store           Store
	freshnessWindow time.Duration
	retentionTTL    time.Duration
	logger          *zap.Logger
	now             func() time.Time
}

// NewCachedClient wraps client with read-through/write-through caching on
// store, tuned by cfg.
func NewCachedClient(client Client, store Store, cfg *config.CacheConfig) *CachedClient {
	return &CachedClient{
		client:          client,
		store:           store,
		freshnessWindow: cfg.FreshnessWindow,
		retentionTTL:    cfg.RetentionTTL,
		logger:          logging.WithComponent("cached-feed-client"),
		now:             time.Now,
	}
}

func cacheKeyPrefix(feedID string) string {
	return "feeds:" + feedID
}

func cacheKey(userID, feedID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return cacheKeyPrefix(feedID) + ":" + userID
}

func updateKey(feedID string) string {
	return cacheKeyPrefix(feedID) + ":update"
}

// shouldServeFromCache decides cache-hit eligibility. Requests beyond the
// first page are always eligible: they must read the same snapshot that
// produced the earlier pages. First-page requests are eligible only when a
// generation timestamp exists, the feed has not been invalidated since, and
// the snapshot is within the freshness window.
func (c *CachedClient) shouldServeFromCache(ctx context.Context, offset int, key, feedID string) (bool, error) {
	if offset > 0 {
		return true, nil
	}

	vals, err := c.store.MGet(ctx, key+":time", updateKey(feedID))
	if err != nil {
		return false, err
	}
	lastGenerated, lastUpdated := vals[0], vals[1]
	if lastGenerated == "" {
		return false, nil
	}
	generatedAt, err := time.Parse(time.RFC3339Nano, lastGenerated)
	if err != nil {
		// Unreadable timestamp, treat the entry as stale.
		return false, nil
	}
	if lastUpdated != "" {
		if updatedAt, err := time.Parse(time.RFC3339Nano, lastUpdated); err == nil && updatedAt.After(generatedAt) {
			return false, nil
		}
	}
	return c.now().Sub(generatedAt) <= c.freshnessWindow, nil
}

// fetchFromCache returns the requested page from the cached snapshot. The
// blob read starts concurrently with the eligibility check; the eligibility
// decision is resolved before the blob is consumed.
func (c *CachedClient) fetchFromCache(ctx context.Context, feedID string, cfg Config) (Response, bool, error) {
	offset, pageSize := cfg.Offset(), cfg.PageSize()
	key := cacheKey(cfg.UserID(), feedID)

	type blobResult struct {
		blob string
		err  error
	}
	blobCh := make(chan blobResult, 1)
	go func() {
		blob, err := c.store.Get(ctx, key+":posts")
		blobCh <- blobResult{blob, err}
	}()

	eligible, err := c.shouldServeFromCache(ctx, offset, key, feedID)
	if err != nil {
		return nil, false, err
	}
	if !eligible {
		return nil, false, nil
	}

	res := <-blobCh
	if res.err != nil {
		return nil, false, res.err
	}

	var cached Response
	if res.blob != "" {
		if err := json.Unmarshal([]byte(res.blob), &cached); err != nil {
			return nil, false, err
		}
	}
	if len(cached) == 0 {
		if offset > 0 {
			// Paginating past a snapshot that was never written must not
			// re-trigger generation; the page is simply empty.
			return Response{}, true, nil
		}
		return nil, false, nil
	}
	return cached.Slice(offset, pageSize), true, nil
}

// updateCache stores the full unpaginated result together with its
// generation timestamp, both under the retention TTL.
func (c *CachedClient) updateCache(feedID string, cfg Config, items Response) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	blob, err := json.Marshal(items)
	if err != nil {
		c.logger.Error("failed to encode feed for cache", zap.String("feed_id", feedID), zap.Error(err))
		return
	}

	key := cacheKey(cfg.UserID(), feedID)
	entries := []cache.Entry{
		{Key: key + ":time", Value: c.now().UTC().Format(time.RFC3339Nano), TTL: c.retentionTTL},
		{Key: key + ":posts", Value: string(blob), TTL: c.retentionTTL},
	}
	if err := c.store.SetBatch(ctx, entries); err != nil {
		c.logger.Error("failed to update feed cache", zap.String("feed_id", feedID), zap.Error(err))
	}
}

// FetchFeed implements Client. A cache outage degrades to always-fetch: read
// errors fall through to the wrapped client and write errors never surface.
func (c *CachedClient) FetchFeed(ctx context.Context, feedID string, cfg Config) (Response, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.fetch_cached")
	defer span.End()

	cached, hit, err := c.fetchFromCache(ctx, feedID, cfg)
	if err != nil {
		c.logger.Error("failed to get feed from cache", zap.String("feed_id", feedID), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	res, err := c.client.FetchFeed(ctx, feedID, cfg.WithoutOffset())
	if err != nil {
		return nil, err
	}
	if len(res) > 0 {
		// Don't make the caller wait for the cache write.
		go c.updateCache(feedID, cfg, res)
	}
	return res.Slice(cfg.Offset(), cfg.PageSize()), nil
}

// Invalidate bumps the feed's update marker, forcing the next first-page
// request for every user of the feed to regenerate regardless of freshness.
func (c *CachedClient) Invalidate(ctx context.Context, feedID string) error {
	entry := cache.Entry{
		Key:   updateKey(feedID),
		Value: c.now().UTC().Format(time.RFC3339Nano),
		TTL:   c.retentionTTL,
	}
	return c.store.SetBatch(ctx, []cache.Entry{entry})
}
