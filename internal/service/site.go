package service

import (
	"context"
	"log/slog"

	"promo_watch/internal/domain"
)

// SiteService handles site administration and keeps the crawl scheduler in
// sync with the active-site set.
type SiteService struct {
	sites  SiteStore
	jobs   JobScheduler
	logger *slog.Logger
}

func NewSiteService(sites SiteStore, jobs JobScheduler, logger *slog.Logger) *SiteService {
	return &SiteService{
		sites:  sites,
		jobs:   jobs,
		logger: logger,
	}
}

func (s *SiteService) List(ctx context.Context) ([]domain.Site, error) {
	return s.sites.List(ctx)
}

func (s *SiteService) Get(ctx context.Context, id int64) (*domain.Site, error) {
	return s.sites.GetByID(ctx, id)
}

func (s *SiteService) Create(ctx context.Context, site *domain.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}

	id, err := s.sites.Create(ctx, site)
	if err != nil {
		return err
	}
	site.ID = id

	if site.IsActive {
		s.jobs.ScheduleSite(*site)
	}

	s.logger.Info("site created", "site_id", site.ID, "site", site.Name)
	return nil
}

func (s *SiteService) Update(ctx context.Context, site *domain.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}

	if err := s.sites.Update(ctx, site); err != nil {
		return err
	}

	// ScheduleSite replaces the prior trigger and removes it for inactive
	// sites, so one call covers both activation and cadence changes.
	s.jobs.ScheduleSite(*site)

	s.logger.Info("site updated", "site_id", site.ID, "site", site.Name)
	return nil
}

func (s *SiteService) Delete(ctx context.Context, id int64) error {
	if err := s.sites.Delete(ctx, id); err != nil {
		return err
	}
	s.jobs.StopSite(id)
	s.logger.Info("site deleted", "site_id", id)
	return nil
}
