package db

import (
	"context"

	"gorm.io/gorm"

	"github.com/nextfeed/feedapi/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetTagPreferences retrieves the followed and blocked tags of a feed.
func (r *Repository) GetTagPreferences(ctx context.Context, feedID string) (followed, blocked []string, err error) {
	var tags []models.FeedTag
	if err := r.db.WithContext(ctx).Where("feed_id = ?", feedID).Find(&tags).Error; err != nil {
		return nil, nil, err
	}

	followed = make([]string, 0, len(tags))
	blocked = make([]string, 0)
	for _, t := range tags {
		if t.Blocked {
			blocked = append(blocked, t.Tag)
		} else {
			followed = append(followed, t.Tag)
		}
	}
	return followed, blocked, nil
}

// GetExcludedSources retrieves the sources a feed filters out.
func (r *Repository) GetExcludedSources(ctx context.Context, feedID string) ([]string, error) {
	sources := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&models.FeedSource{}).
		Where("feed_id = ?", feedID).
		Pluck("source_id", &sources).Error
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// GetSourceMemberships retrieves the private sources a user belongs to.
func (r *Repository) GetSourceMemberships(ctx context.Context, userID string) ([]string, error) {
	squads := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&models.SourceMember{}).
		Where("user_id = ?", userID).
		Pluck("source_id", &squads).Error
	if err != nil {
		return nil, err
	}
	return squads, nil
}
