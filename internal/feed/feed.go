package feed

import (
	"context"
	"encoding/json"
	"fmt"
)

// Item is a single feed entry: a post id plus optional serialized metadata
// attached by the generation service. Order within a feed is significant, it
// encodes rank.
type Item struct {
	PostID   string
	Metadata *string
}

// MarshalJSON encodes the item as a [post_id, metadata] pair.
func (it Item) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{it.PostID, it.Metadata})
}

// UnmarshalJSON decodes either a [post_id, metadata] pair or a bare post id.
// Bare ids are what older cache entries contain; they carry no metadata.
func (it *Item) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		it.PostID = id
		it.Metadata = nil
		return nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("feed item must be a post id or a [post_id, metadata] pair: %w", err)
	}
	if len(pair) == 0 {
		return fmt.Errorf("feed item pair is empty")
	}
	if err := json.Unmarshal(pair[0], &it.PostID); err != nil {
		return fmt.Errorf("invalid post id in feed item: %w", err)
	}
	it.Metadata = nil
	if len(pair) > 1 {
		if err := json.Unmarshal(pair[1], &it.Metadata); err != nil {
			return fmt.Errorf("invalid metadata in feed item: %w", err)
		}
	}
	return nil
}

// Response is an ordered feed result.
type Response []Item

// Slice returns the [offset, offset+pageSize) window of the response,
// clamped to its bounds.
func (r Response) Slice(offset, pageSize int) Response {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(r) {
		return Response{}
	}
	end := offset + pageSize
	if pageSize <= 0 || end > len(r) {
		end = len(r)
	}
	return r[offset:end]
}

// Client fetches a feed for the given feed id using the supplied request
// config. Implementations must be safe for concurrent use.
type Client interface {
	FetchFeed(ctx context.Context, feedID string, cfg Config) (Response, error)
}

// Keys of the config fields the serving pipeline itself manipulates. Concrete
// config generators contribute arbitrary additional fields which pass through
// to the generation service untouched.
const (
	configKeyUserID   = "user_id"
	configKeyOffset   = "offset"
	configKeyPageSize = "page_size"
)

// Config is the opaque request payload sent to the feed generation service.
type Config map[string]interface{}

// UserID returns the user the feed is generated for, empty for anonymous.
func (c Config) UserID() string {
	if s, ok := c[configKeyUserID].(string); ok {
		return s
	}
	return ""
}

// Offset returns the request-local pagination cursor.
func (c Config) Offset() int {
	return intField(c[configKeyOffset])
}

// PageSize returns the requested page size.
func (c Config) PageSize() int {
	return intField(c[configKeyPageSize])
}

// Clone returns a shallow copy of the config.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// WithoutOffset returns a copy of the config with the offset removed. The
// generation service is always asked for the feed from its logical start;
// pagination is applied locally.
func (c Config) WithoutOffset() Config {
	out := c.Clone()
	delete(out, configKeyOffset)
	return out
}

// intField tolerates the numeric types a config field may hold after JSON
// round trips.
func intField(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}
