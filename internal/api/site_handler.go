package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"promo_watch/internal/domain"
	"promo_watch/internal/extractor"
)

// SiteAdmin is the slice of site administration the handler needs.
type SiteAdmin interface {
	List(ctx context.Context) ([]domain.Site, error)
	Get(ctx context.Context, id int64) (*domain.Site, error)
	Create(ctx context.Context, site *domain.Site) error
	Update(ctx context.Context, site *domain.Site) error
	Delete(ctx context.Context, id int64) error
}

// Crawler runs on-demand crawl cycles for the test and manual-crawl endpoints.
type Crawler interface {
	TestSite(ctx context.Context, siteID int64) ([]domain.SuggestedPost, error)
	RunManualCrawl(ctx context.Context, siteID int64) (*domain.CrawlStats, error)
}

type SiteHandler struct {
	sites   SiteAdmin
	crawler Crawler
}

func NewSiteHandler(sites SiteAdmin, crawler Crawler) *SiteHandler {
	return &SiteHandler{sites: sites, crawler: crawler}
}

type siteRequest struct {
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	IntervalHours float64 `json:"interval_hours"`
	SelectorTitle string  `json:"selector_title"`
	SelectorImage string  `json:"selector_image"`
	SelectorLink  *string `json:"selector_link"`
	IsActive      *bool   `json:"is_active"`
}

func (r *siteRequest) toDomain() *domain.Site {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &domain.Site{
		Name:          r.Name,
		URL:           r.URL,
		IntervalHours: r.IntervalHours,
		SelectorTitle: r.SelectorTitle,
		SelectorImage: r.SelectorImage,
		SelectorLink:  r.SelectorLink,
		IsActive:      active,
	}
}

func (h *SiteHandler) List(c *gin.Context) {
	sites, err := h.sites.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sites)
}

func (h *SiteHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	site, err := h.sites.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

func (h *SiteHandler) Create(c *gin.Context) {
	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	site := req.toDomain()
	if err := h.sites.Create(c.Request.Context(), site); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, site)
}

func (h *SiteHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	site := req.toDomain()
	site.ID = id
	if err := h.sites.Update(c.Request.Context(), site); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, site)
}

func (h *SiteHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.sites.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Test runs fetch + extract for the site and returns the candidates without
// persisting anything.
func (h *SiteHandler) Test(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	posts, err := h.crawler.TestSite(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if posts == nil {
		posts = []domain.SuggestedPost{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(posts),
		"posts": posts,
	})
}

// Crawl triggers a persisting cycle on demand.
func (h *SiteHandler) Crawl(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	stats, err := h.crawler.RunManualCrawl(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SuggestSelectors prefills the admin form with selectors known to work for
// the given URL's domain.
func (h *SiteHandler) SuggestSelectors(c *gin.Context) {
	siteURL := c.Query("url")
	if siteURL == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "url query parameter is required"})
		return
	}
	c.JSON(http.StatusOK, extractor.CommonSelectors(siteURL))
}
