// Package scheduler maintains one recurring crawl trigger per active site.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"promo_watch/internal/domain"
)

// Runner executes one crawl-and-persist cycle for a site.
type Runner interface {
	CrawlSite(ctx context.Context, site *domain.Site) (*domain.CrawlStats, error)
}

// SiteLister reads the currently active sites.
type SiteLister interface {
	ListActive(ctx context.Context) ([]domain.Site, error)
}

type Config struct {
	Timezone     string
	CrawlTimeout time.Duration
}

// Scheduler owns the site-id → cron-entry table. Entries are always replaced,
// never stacked, so at most one live trigger exists per site id.
type Scheduler struct {
	runner       Runner
	sites        SiteLister
	cron         *cron.Cron
	crawlTimeout time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	entries map[int64]cron.EntryID
	stopped bool
}

func New(runner Runner, sites SiteLister, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
		cron.WithChain(cron.Recover(cron.DiscardLogger)),
	)

	return &Scheduler{
		runner:       runner,
		sites:        sites,
		cron:         c,
		crawlTimeout: cfg.CrawlTimeout,
		logger:       logger,
		entries:      make(map[int64]cron.EntryID),
	}, nil
}

// Start begins firing triggers and loads the active site set.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()
	if err := s.LoadActiveSites(ctx); err != nil {
		return fmt.Errorf("load active sites: %w", err)
	}
	s.logger.Info("scheduler started", "jobs", s.JobCount())
	return nil
}

// LoadActiveSites rebuilds the trigger table from the store: all existing
// triggers are cleared and one job is created per active site.
func (s *Scheduler) LoadActiveSites(ctx context.Context) error {
	sites, err := s.sites.ListActive(ctx)
	if err != nil {
		return err
	}

	s.ClearAllJobs()

	for i := range sites {
		s.ScheduleSite(sites[i])
	}

	s.logger.Info("active sites loaded", "count", len(sites))
	return nil
}

// ScheduleSite registers a recurring trigger for the site, replacing any
// prior trigger for the same site id. Inactive sites only have their trigger
// removed.
func (s *Scheduler) ScheduleSite(site domain.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[site.ID]; ok {
		s.cron.Remove(prev)
		delete(s.entries, site.ID)
	}

	if s.stopped || !site.IsActive {
		return
	}

	spec := CronExpression(site.IntervalHours)

	// Capture by value: the trigger keeps firing with the site as it was
	// when scheduled. Admin edits go through ScheduleSite again.
	siteCopy := site
	id, err := s.cron.AddFunc(spec, func() {
		s.runSite(&siteCopy)
	})
	if err != nil {
		s.logger.Error("failed to schedule site",
			"site_id", site.ID,
			"site", site.Name,
			"spec", spec,
			"error", err,
		)
		return
	}

	s.entries[site.ID] = id
	s.logger.Info("site scheduled",
		"site_id", site.ID,
		"site", site.Name,
		"interval_hours", site.IntervalHours,
		"spec", spec,
	)
}

// StopSite cancels the site's trigger. Calling it for an unknown id is a
// no-op.
func (s *Scheduler) StopSite(siteID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[siteID]
	if !ok {
		return
	}
	s.cron.Remove(id)
	delete(s.entries, siteID)
	s.logger.Info("site job stopped", "site_id", siteID)
}

// ClearAllJobs cancels every live trigger.
func (s *Scheduler) ClearAllJobs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for siteID, id := range s.entries {
		s.cron.Remove(id)
		delete(s.entries, siteID)
	}
}

// JobCount returns the number of live triggers.
func (s *Scheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// HasJob reports whether the site currently has a live trigger.
func (s *Scheduler) HasJob(siteID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[siteID]
	return ok
}

// runSite executes one cycle. A failure is logged and contained: it never
// cancels or delays other sites' triggers.
func (s *Scheduler) runSite(site *domain.Site) {
	ctx, cancel := context.WithTimeout(context.Background(), s.crawlTimeout)
	defer cancel()

	stats, err := s.runner.CrawlSite(ctx, site)
	if err != nil {
		if errors.Is(err, domain.ErrCrawlInFlight) {
			s.logger.Info("skipping crawl, previous run still in flight",
				"site_id", site.ID,
				"site", site.Name,
			)
			return
		}
		s.logger.Error("scheduled crawl failed",
			"site_id", site.ID,
			"site", site.Name,
			"error", err,
		)
		return
	}

	s.logger.Info("scheduled crawl finished",
		"site_id", site.ID,
		"site", site.Name,
		"extracted", stats.Extracted,
		"persisted", stats.Persisted,
		"duration", stats.Duration,
	)
}

// Stop cancels every trigger and waits for running jobs to return. Safe to
// call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.ClearAllJobs()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.logger.Info("scheduler stopped")
}
