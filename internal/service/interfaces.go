package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"promo_watch/internal/domain"
)

type SiteStore interface {
	List(ctx context.Context) ([]domain.Site, error)
	ListActive(ctx context.Context) ([]domain.Site, error)
	GetByID(ctx context.Context, id int64) (*domain.Site, error)
	Create(ctx context.Context, site *domain.Site) (int64, error)
	Update(ctx context.Context, site *domain.Site) error
	Delete(ctx context.Context, id int64) error
	StampLastCrawled(ctx context.Context, id int64, at time.Time) error
}

type SuggestedPostStore interface {
	InsertBatch(ctx context.Context, posts []domain.SuggestedPost) error
	List(ctx context.Context, approved *bool, convertedOnly bool) ([]domain.SuggestedPost, error)
	GetByID(ctx context.Context, id int64) (*domain.SuggestedPost, error)
	Approve(ctx context.Context, id int64) error
	MarkConverted(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

type BannerStore interface {
	List(ctx context.Context, includeExpired bool) ([]domain.Banner, error)
	ListDisplayable(ctx context.Context, now time.Time) ([]domain.Banner, error)
	GetByID(ctx context.Context, id int64) (*domain.Banner, error)
	Insert(ctx context.Context, banner *domain.Banner) (int64, error)
	Update(ctx context.Context, banner *domain.Banner) error
	Delete(ctx context.Context, id int64) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// ObjectStorage uploads banner images and deletes them by key. Implementations
// decide how keys map to public URLs.
type ObjectStorage interface {
	Upload(ctx context.Context, data []byte, contentType string) (publicURL string, key string, err error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(publicURL string) (string, bool)
}

// Publisher notifies downstream consumers about newly discovered suggestions.
type Publisher interface {
	Publish(ctx context.Context, post *domain.SuggestedPost) error
	Close() error
}

// PageFetcher downloads raw HTML for a site's URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ContentExtractor turns raw HTML plus a site's selector config into candidate
// posts.
type ContentExtractor interface {
	Extract(html string, site *domain.Site) []domain.SuggestedPost
}

// JobScheduler is the slice of the crawl scheduler that site administration
// needs: rebuild or remove a site's trigger after an edit.
type JobScheduler interface {
	ScheduleSite(site domain.Site)
	StopSite(siteID int64)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
