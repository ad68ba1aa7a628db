package feed

import (
	"context"
	"fmt"

	"github.com/nextfeed/feedapi/pkg/telemetry"
)

// ConfigGenerator produces the request config for one feed computation.
// Implementations may read external personalization state; they are not
// required to be idempotent for identical inputs.
type ConfigGenerator interface {
	Generate(ctx context.Context, userID string, pageSize, offset int) (Config, error)
}

// Generator binds a config generator to a client, forming one named feed
// strategy. When feedID is empty the requesting user's id doubles as the
// feed id, so logged-in users never share a cache entry; a fixed feedID
// lets all requesters of a public feed share one.
type Generator struct {
	client Client
	config ConfigGenerator
	feedID string
}

// NewGenerator creates a feed generator. feedID may be empty.
func NewGenerator(client Client, config ConfigGenerator, feedID string) *Generator {
	return &Generator{
		client: client,
		config: config,
		feedID: feedID,
	}
}

// Generate builds the request config and fetches the feed through the bound
// client.
func (g *Generator) Generate(ctx context.Context, userID string, pageSize, offset int) (Response, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.generate")
	defer span.End()

	cfg, err := g.config.Generate(ctx, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed config: %w", err)
	}

	feedID := g.feedID
	if feedID == "" {
		feedID = userID
	}
	return g.client.FetchFeed(ctx, feedID, cfg)
}
