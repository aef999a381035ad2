package domain

import (
	"strings"
	"time"
)

// Interval bounds for a site's crawl cadence, in hours.
const (
	MinIntervalHours = 0.5
	MaxIntervalHours = 168
)

type Site struct {
	ID            int64      `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	URL           string     `json:"url" db:"url"`
	IntervalHours float64    `json:"interval_hours" db:"interval_hours"`
	SelectorTitle string     `json:"selector_title" db:"selector_title"`
	SelectorImage string     `json:"selector_image" db:"selector_image"`
	SelectorLink  *string    `json:"selector_link,omitempty" db:"selector_link"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	LastCrawled   *time.Time `json:"last_crawled,omitempty" db:"last_crawled"`
}

// Validate checks the invariants that must hold before a site is persisted.
func (s *Site) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(s.URL) == "" {
		return &ValidationError{Field: "url", Message: "url is required"}
	}
	if s.IntervalHours < MinIntervalHours || s.IntervalHours > MaxIntervalHours {
		return &ValidationError{Field: "interval_hours", Message: "interval_hours must be between 0.5 and 168"}
	}
	if strings.TrimSpace(s.SelectorTitle) == "" {
		return &ValidationError{Field: "selector_title", Message: "selector_title is required"}
	}
	if strings.TrimSpace(s.SelectorImage) == "" {
		return &ValidationError{Field: "selector_image", Message: "selector_image is required"}
	}
	return nil
}

type SuggestedPost struct {
	ID                  int64      `json:"id" db:"id"`
	SiteID              int64      `json:"site_id" db:"site_id"`
	Title               string     `json:"title" db:"title"`
	ImageURL            string     `json:"image_url" db:"image_url"`
	ArticleURL          *string    `json:"article_url,omitempty" db:"article_url"`
	SourceSite          string     `json:"source_site" db:"source_site"`
	IsApproved          bool       `json:"is_approved" db:"is_approved"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	ConvertedToBannerAt *time.Time `json:"converted_to_banner_at,omitempty" db:"converted_to_banner_at"`
}

// SuggestionFilter narrows a moderation listing. Approved additionally
// restricts the result to posts already converted to a banner, matching the
// moderation UI's "approved" view.
type SuggestionFilter struct {
	Approved *bool
	Page     int
	Limit    int
}

// SuggestionPage is one page of the deduplicated moderation listing.
type SuggestionPage struct {
	Posts      []SuggestedPost `json:"posts"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
}
