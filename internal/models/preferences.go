package models

import "time"

// FeedTag is a per-feed tag preference. Blocked tags are filtered out of the
// generated feed; the rest are boosted.
type FeedTag struct {
	FeedID    string    `gorm:"primaryKey;type:varchar(36);column:feed_id"`
	Tag       string    `gorm:"primaryKey;type:varchar(255);column:tag"`
	Blocked   bool      `gorm:"not null;default:false;column:blocked"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for FeedTag
func (FeedTag) TableName() string {
	return "feed_tag"
}

// FeedSource is a source excluded from a feed.
type FeedSource struct {
	FeedID    string    `gorm:"primaryKey;type:varchar(36);column:feed_id"`
	SourceID  string    `gorm:"primaryKey;type:varchar(36);column:source_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for FeedSource
func (FeedSource) TableName() string {
	return "feed_source"
}

// SourceMember records a user's membership in a private source (squad);
// member-only content is surfaced to members.
type SourceMember struct {
	SourceID  string    `gorm:"primaryKey;type:varchar(36);column:source_id"`
	UserID    string    `gorm:"primaryKey;type:varchar(36);column:user_id"`
	Role      string    `gorm:"type:varchar(16);not null;default:'member';column:role"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for SourceMember
func (SourceMember) TableName() string {
	return "source_member"
}
