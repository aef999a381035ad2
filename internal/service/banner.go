package service

import (
	"context"
	"log/slog"
	"time"

	"promo_watch/internal/domain"
)

// BannerService governs the banner lifecycle: creation (directly or via
// image upload), the periodic expiration sweep, and reactivation.
type BannerService struct {
	banners       BannerStore
	storage       ObjectStorage
	defaultWindow time.Duration
	logger        *slog.Logger
}

func NewBannerService(
	banners BannerStore,
	storage ObjectStorage,
	defaultWindow time.Duration,
	logger *slog.Logger,
) *BannerService {
	if defaultWindow == 0 {
		defaultWindow = 24 * time.Hour
	}
	return &BannerService{
		banners:       banners,
		storage:       storage,
		defaultWindow: defaultWindow,
		logger:        logger,
	}
}

// List returns banners for administration, ordered by exhibition_order then
// id. Expired banners are hidden unless requested.
func (s *BannerService) List(ctx context.Context, includeExpired bool) ([]domain.Banner, error) {
	return s.banners.List(ctx, includeExpired)
}

// ListDisplayable returns the banners to show to end users right now.
func (s *BannerService) ListDisplayable(ctx context.Context) ([]domain.Banner, error) {
	return s.banners.ListDisplayable(ctx, time.Now())
}

func (s *BannerService) Get(ctx context.Context, id int64) (*domain.Banner, error) {
	return s.banners.GetByID(ctx, id)
}

func (s *BannerService) Create(ctx context.Context, banner *domain.Banner) error {
	if banner.Status == "" {
		banner.Status = domain.BannerActive
	}
	if err := banner.Validate(); err != nil {
		return err
	}

	id, err := s.banners.Insert(ctx, banner)
	if err != nil {
		return err
	}
	banner.ID = id

	s.logger.Info("banner created", "banner_id", id, "title", banner.Title)
	return nil
}

// CreateFromUpload stores the image bytes in object storage and creates a
// banner pointing at the public URL. An upload failure aborts the operation.
func (s *BannerService) CreateFromUpload(ctx context.Context, data []byte, contentType, title string, exhibitionOrder int) (*domain.Banner, error) {
	if s.storage == nil {
		return nil, domain.ErrStorageDisabled
	}
	if title == "" {
		return nil, &domain.ValidationError{Field: "title", Message: "title is required"}
	}
	if len(data) == 0 {
		return nil, &domain.ValidationError{Field: "file", Message: "file is required"}
	}

	publicURL, key, err := s.storage.Upload(ctx, data, contentType)
	if err != nil {
		return nil, err
	}

	banner := &domain.Banner{
		Title:           title,
		URLImage:        publicURL,
		ExhibitionOrder: exhibitionOrder,
		Status:          domain.BannerActive,
	}

	id, err := s.banners.Insert(ctx, banner)
	if err != nil {
		// The banner row never existed; don't leave the image orphaned.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to delete uploaded image after insert failure",
				"key", key,
				"error", delErr,
			)
		}
		return nil, err
	}
	banner.ID = id

	s.logger.Info("banner created from upload", "banner_id", id, "title", title, "key", key)
	return banner, nil
}

func (s *BannerService) Update(ctx context.Context, banner *domain.Banner) error {
	if err := banner.Validate(); err != nil {
		return err
	}
	if err := s.banners.Update(ctx, banner); err != nil {
		return err
	}
	s.logger.Info("banner updated", "banner_id", banner.ID)
	return nil
}

// Delete removes the banner and, when its image lives in our object storage,
// deletes the image as well. Cleanup failures are logged and swallowed.
func (s *BannerService) Delete(ctx context.Context, id int64) error {
	banner, err := s.banners.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.banners.Delete(ctx, id); err != nil {
		return err
	}

	if s.storage != nil {
		if key, ok := s.storage.KeyFromURL(banner.URLImage); ok {
			if err := s.storage.Delete(ctx, key); err != nil {
				s.logger.Warn("failed to delete banner image",
					"banner_id", id,
					"key", key,
					"error", err,
				)
			}
		}
	}

	s.logger.Info("banner deleted", "banner_id", id)
	return nil
}

// SweepExpired transitions every active banner whose window has closed to
// expired. The operation is idempotent: re-running it changes nothing.
func (s *BannerService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.banners.ExpireOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired banners swept", "count", n)
	}
	return n, nil
}

// Reactivate resets the banner to active with a fresh [now, now+duration)
// window. A zero duration takes the default.
func (s *BannerService) Reactivate(ctx context.Context, id int64, duration time.Duration) (*domain.Banner, error) {
	if duration == 0 {
		duration = s.defaultWindow
	}
	if duration < 0 {
		return nil, &domain.ValidationError{Field: "duration_hours", Message: "duration must be positive"}
	}

	banner, err := s.banners.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	end := now.Add(duration)
	banner.Status = domain.BannerActive
	banner.ScheduledStart = &now
	banner.ScheduledEnd = &end

	if err := s.banners.Update(ctx, banner); err != nil {
		return nil, err
	}

	s.logger.Info("banner reactivated",
		"banner_id", id,
		"scheduled_end", end,
	)
	return banner, nil
}

// RunSweeper runs the expiration sweep on a fixed interval until the context
// is canceled. One sweep runs immediately on start.
func (s *BannerService) RunSweeper(ctx context.Context, interval time.Duration) {
	s.sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("banner sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *BannerService) sweep(ctx context.Context) {
	if _, err := s.SweepExpired(ctx); err != nil {
		s.logger.Error("expiration sweep failed", "error", err)
	}
}
