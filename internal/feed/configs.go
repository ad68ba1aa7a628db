package feed

import (
	"context"
	"fmt"
)

// StaticConfigGenerator returns a fixed base config with the pagination and
// user fields of the request applied on top.
type StaticConfigGenerator struct {
	base Config
}

// NewStaticConfigGenerator creates a config generator around a fixed base
// payload.
func NewStaticConfigGenerator(base Config) *StaticConfigGenerator {
	return &StaticConfigGenerator{base: base}
}

// Generate implements ConfigGenerator
func (g *StaticConfigGenerator) Generate(_ context.Context, userID string, pageSize, offset int) (Config, error) {
	cfg := g.base.Clone()
	cfg[configKeyPageSize] = pageSize
	cfg[configKeyOffset] = offset
	if userID != "" {
		cfg[configKeyUserID] = userID
	}
	return cfg, nil
}

// PreferencesStore loads the personalization state a preferences-driven
// config generator attaches to the request.
type PreferencesStore interface {
	GetTagPreferences(ctx context.Context, feedID string) (followed, blocked []string, err error)
	GetExcludedSources(ctx context.Context, feedID string) ([]string, error)
	GetSourceMemberships(ctx context.Context, userID string) ([]string, error)
}

// PreferencesOptions toggles which personalization blocks are loaded into
// the config.
type PreferencesOptions struct {
	IncludeAllowedTags       bool
	IncludeBlockedTags       bool
	IncludeBlockedSources    bool
	IncludeSourceMemberships bool
}

// PreferencesConfigGenerator assembles a request config from a fixed base
// plus the user's stored feed preferences.
type PreferencesConfigGenerator struct {
	base  Config
	store PreferencesStore
	opts  PreferencesOptions
}

// NewPreferencesConfigGenerator creates a preferences-backed config
// generator.
func NewPreferencesConfigGenerator(base Config, store PreferencesStore, opts PreferencesOptions) *PreferencesConfigGenerator {
	return &PreferencesConfigGenerator{
		base:  base,
		store: store,
		opts:  opts,
	}
}

// Generate implements ConfigGenerator. Anonymous requests skip the
// preference lookups entirely.
func (g *PreferencesConfigGenerator) Generate(ctx context.Context, userID string, pageSize, offset int) (Config, error) {
	cfg := g.base.Clone()
	cfg[configKeyPageSize] = pageSize
	cfg[configKeyOffset] = offset
	if userID == "" {
		return cfg, nil
	}
	cfg[configKeyUserID] = userID

	if g.opts.IncludeAllowedTags || g.opts.IncludeBlockedTags {
		followed, blocked, err := g.store.GetTagPreferences(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load tag preferences: %w", err)
		}
		if g.opts.IncludeAllowedTags {
			cfg["allowed_tags"] = followed
		}
		if g.opts.IncludeBlockedTags {
			cfg["blocked_tags"] = blocked
		}
	}
	if g.opts.IncludeBlockedSources {
		sources, err := g.store.GetExcludedSources(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load excluded sources: %w", err)
		}
		cfg["blocked_sources"] = sources
	}
	if g.opts.IncludeSourceMemberships {
		squads, err := g.store.GetSourceMemberships(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load source memberships: %w", err)
		}
		cfg["squad_ids"] = squads
	}
	return cfg, nil
}
