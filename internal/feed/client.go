package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nextfeed/feedapi/pkg/config"
	"github.com/nextfeed/feedapi/pkg/logging"
	"github.com/nextfeed/feedapi/pkg/telemetry"
)

const (
	defaultInitialBackoff = 250 * time.Millisecond
	maxBackoff            = 5 * time.Second
)

type rawServiceResponse struct {
	Data []struct {
		PostID   string            `json:"post_id"`
		Metadata map[string]string `json:"metadata"`
	} `json:"data"`
}

// ServiceClient fetches feeds from the feed generation service. It is
// stateless and safe for concurrent use.
type ServiceClient struct {
	url         string
	httpClient  *http.Client
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
}

// NewServiceClient creates a client for the configured generation service
func NewServiceClient(cfg *config.UpstreamConfig) *ServiceClient {
	return &ServiceClient{
		url:         cfg.URL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		maxAttempts: cfg.MaxAttempts,
		backoff:     defaultInitialBackoff,
		logger:      logging.WithComponent("feed-client"),
	}
}

// doFetch issues a single request to the generation service.
func (c *ServiceClient) doFetch(ctx context.Context, cfg Config) (*rawServiceResponse, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build feed service request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed service request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		io.Copy(io.Discard, res.Body)
		return nil, &UpstreamError{StatusCode: res.StatusCode}
	}

	var raw rawServiceResponse
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode feed service response: %w", err)
	}
	return &raw, nil
}

// FetchFeed requests a feed computation, retrying transient failures up to
// the attempt bound. Client errors fail immediately.
func (c *ServiceClient) FetchFeed(ctx context.Context, feedID string, cfg Config) (Response, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.fetch_upstream")
	defer span.End()

	var raw *rawServiceResponse
	var lastErr error
	backoff := c.backoff

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		raw, lastErr = c.doFetch(ctx, cfg)
		if lastErr == nil {
			break
		}

		var ue *UpstreamError
		if errors.As(lastErr, &ue) && !ue.Retryable() {
			return nil, lastErr
		}
		if attempt == c.maxAttempts {
			break
		}

		c.logger.Warn("retrying feed service request",
			zap.String("feed_id", feedID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("feed service unavailable after %d attempts: %w", c.maxAttempts, lastErr)
	}

	if len(raw.Data) == 0 {
		c.logger.Warn("empty response received from feed service", zap.Any("config", cfg))
		return Response{}, nil
	}

	items := make(Response, 0, len(raw.Data))
	for _, d := range raw.Data {
		item := Item{PostID: d.PostID}
		if len(d.Metadata) > 0 {
			meta, err := json.Marshal(d.Metadata)
			if err != nil {
				return nil, fmt.Errorf("failed to encode item metadata: %w", err)
			}
			s := string(meta)
			item.Metadata = &s
		}
		items = append(items, item)
	}
	return items, nil
}
