package domain

import "time"

// CrawlStats holds statistics about one crawl cycle for a site.
type CrawlStats struct {
	SiteID    int64         `json:"site_id"`
	Extracted int           `json:"extracted"`
	Persisted int           `json:"persisted"`
	Dropped   int           `json:"dropped"`
	Published int           `json:"published"`
	Duration  time.Duration `json:"duration"`
}
