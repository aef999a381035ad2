package domain

import "time"

type BannerStatus string

const (
	BannerActive   BannerStatus = "active"
	BannerInactive BannerStatus = "inactive"
	BannerArchived BannerStatus = "archived"
	BannerExpired  BannerStatus = "expired"
)

func (s BannerStatus) Valid() bool {
	switch s {
	case BannerActive, BannerInactive, BannerArchived, BannerExpired:
		return true
	}
	return false
}

type Banner struct {
	ID                int64        `json:"id" db:"id"`
	Title             string       `json:"title" db:"title"`
	URLImage          string       `json:"url_image" db:"url_image"`
	ExhibitionOrder   int          `json:"exhibition_order" db:"exhibition_order"`
	Description       *string      `json:"description,omitempty" db:"description"`
	Status            BannerStatus `json:"status" db:"status"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	ScheduledStart    *time.Time   `json:"scheduled_start,omitempty" db:"scheduled_start"`
	ScheduledEnd      *time.Time   `json:"scheduled_end,omitempty" db:"scheduled_end"`
	FromSuggestedPost bool         `json:"from_suggested_post" db:"from_suggested_post"`
}

// DisplayableAt reports whether the banner should be shown at the given
// instant: status must be active and the instant must fall inside the
// optional [scheduled_start, scheduled_end) window.
func (b *Banner) DisplayableAt(now time.Time) bool {
	if b.Status != BannerActive {
		return false
	}
	if b.ScheduledStart != nil && now.Before(*b.ScheduledStart) {
		return false
	}
	if b.ScheduledEnd != nil && !now.Before(*b.ScheduledEnd) {
		return false
	}
	return true
}

// Validate checks the invariants that must hold before a banner is persisted.
func (b *Banner) Validate() error {
	if b.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if b.URLImage == "" {
		return &ValidationError{Field: "url_image", Message: "url_image is required"}
	}
	if !b.Status.Valid() {
		return &ValidationError{Field: "status", Message: "status must be one of active, inactive, archived, expired"}
	}
	if b.ScheduledStart != nil && b.ScheduledEnd != nil && !b.ScheduledEnd.After(*b.ScheduledStart) {
		return &ValidationError{Field: "scheduled_end", Message: "scheduled_end must be after scheduled_start"}
	}
	return nil
}
