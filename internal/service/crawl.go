package service

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"promo_watch/internal/domain"
)

type CrawlConfig struct {
	ProbeImages  bool
	ProbeTimeout time.Duration
}

// CrawlService runs the crawl-and-persist cycle: fetch the page, extract
// candidates, persist them as suggested posts, stamp the site's last_crawled.
type CrawlService struct {
	sites     SiteStore
	posts     SuggestedPostStore
	fetcher   PageFetcher
	extractor ContentExtractor
	publisher Publisher // optional
	probe     *http.Client
	cfg       CrawlConfig
	logger    *slog.Logger

	mu       sync.Mutex
	inFlight map[int64]bool
}

func NewCrawlService(
	sites SiteStore,
	posts SuggestedPostStore,
	fetcher PageFetcher,
	extractor ContentExtractor,
	publisher Publisher,
	cfg CrawlConfig,
	logger *slog.Logger,
) *CrawlService {
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 3 * time.Second
	}
	return &CrawlService{
		sites:     sites,
		posts:     posts,
		fetcher:   fetcher,
		extractor: extractor,
		publisher: publisher,
		probe:     &http.Client{Timeout: cfg.ProbeTimeout},
		cfg:       cfg,
		logger:    logger,
		inFlight:  make(map[int64]bool),
	}
}

// CrawlSite executes one cycle for the site. At most one cycle runs per site
// id at a time; an overlapping request returns domain.ErrCrawlInFlight.
// A fetch or parse failure is recoverable: the cycle completes with zero
// candidates and no error.
func (s *CrawlService) CrawlSite(ctx context.Context, site *domain.Site) (*domain.CrawlStats, error) {
	if !s.acquire(site.ID) {
		return nil, domain.ErrCrawlInFlight
	}
	defer s.release(site.ID)

	start := time.Now()
	stats := &domain.CrawlStats{SiteID: site.ID}

	candidates := s.collectCandidates(ctx, site)
	stats.Extracted = len(candidates)

	if s.cfg.ProbeImages {
		kept := s.probeImages(ctx, candidates)
		stats.Dropped = len(candidates) - len(kept)
		candidates = kept
	}

	if len(candidates) == 0 {
		stats.Duration = time.Since(start)
		s.logger.Info("crawl yielded no candidates", "site_id", site.ID, "site", site.Name)
		return stats, nil
	}

	if err := s.posts.InsertBatch(ctx, candidates); err != nil {
		return nil, err
	}
	stats.Persisted = len(candidates)

	if err := s.sites.StampLastCrawled(ctx, site.ID, time.Now()); err != nil {
		s.logger.Warn("failed to stamp last_crawled", "site_id", site.ID, "error", err)
	}

	if s.publisher != nil {
		for i := range candidates {
			if err := s.publisher.Publish(ctx, &candidates[i]); err != nil {
				s.logger.Warn("failed to publish suggestion",
					"site_id", site.ID,
					"title", candidates[i].Title,
					"error", err,
				)
				continue
			}
			stats.Published++
		}
	}

	stats.Duration = time.Since(start)

	s.logger.Info("crawl cycle finished",
		"site_id", site.ID,
		"site", site.Name,
		"extracted", stats.Extracted,
		"persisted", stats.Persisted,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats, nil
}

// RunManualCrawl runs a persisting cycle on demand, independent of whether
// the site currently has a live trigger.
func (s *CrawlService) RunManualCrawl(ctx context.Context, siteID int64) (*domain.CrawlStats, error) {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return s.CrawlSite(ctx, site)
}

// TestSite runs fetch + extract for the site and returns the candidates
// without persisting anything.
func (s *CrawlService) TestSite(ctx context.Context, siteID int64) ([]domain.SuggestedPost, error) {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return s.collectCandidates(ctx, site), nil
}

func (s *CrawlService) collectCandidates(ctx context.Context, site *domain.Site) []domain.SuggestedPost {
	html, err := s.fetcher.Fetch(ctx, site.URL)
	if err != nil {
		s.logger.Warn("page fetch failed",
			"site_id", site.ID,
			"site", site.Name,
			"error", err,
		)
		return nil
	}
	return s.extractor.Extract(html, site)
}

// probeImages drops candidates whose image does not answer a HEAD request.
func (s *CrawlService) probeImages(ctx context.Context, candidates []domain.SuggestedPost) []domain.SuggestedPost {
	kept := candidates[:0]
	for _, c := range candidates {
		if s.imageReachable(ctx, c.ImageURL) {
			kept = append(kept, c)
		} else {
			s.logger.Debug("dropping candidate, image unreachable", "image_url", c.ImageURL)
		}
	}
	return kept
}

func (s *CrawlService) imageReachable(ctx context.Context, imageURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return false
	}
	resp, err := s.probe.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (s *CrawlService) acquire(siteID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[siteID] {
		return false
	}
	s.inFlight[siteID] = true
	return true
}

func (s *CrawlService) release(siteID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, siteID)
}
