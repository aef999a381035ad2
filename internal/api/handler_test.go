package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promo_watch/internal/domain"
	"promo_watch/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSiteAdmin struct {
	sites []domain.Site
	err   error
}

func (s *stubSiteAdmin) List(context.Context) ([]domain.Site, error) { return s.sites, s.err }
func (s *stubSiteAdmin) Get(_ context.Context, id int64) (*domain.Site, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Site{ID: id, Name: "Promo News"}, nil
}
func (s *stubSiteAdmin) Create(_ context.Context, site *domain.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}
	site.ID = 1
	return s.err
}
func (s *stubSiteAdmin) Update(_ context.Context, site *domain.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}
	return s.err
}
func (s *stubSiteAdmin) Delete(context.Context, int64) error { return s.err }

type stubCrawler struct {
	posts []domain.SuggestedPost
	stats *domain.CrawlStats
	err   error
}

func (c *stubCrawler) TestSite(context.Context, int64) ([]domain.SuggestedPost, error) {
	return c.posts, c.err
}
func (c *stubCrawler) RunManualCrawl(context.Context, int64) (*domain.CrawlStats, error) {
	return c.stats, c.err
}

type stubModerator struct {
	page *domain.SuggestionPage
	err  error
}

func (m *stubModerator) List(context.Context, domain.SuggestionFilter) (*domain.SuggestionPage, error) {
	return m.page, m.err
}
func (m *stubModerator) Approve(context.Context, int64) error { return m.err }
func (m *stubModerator) Reject(context.Context, int64) error  { return m.err }
func (m *stubModerator) Delete(context.Context, int64) error  { return m.err }
func (m *stubModerator) Convert(context.Context, int64, service.ConvertOptions) (*domain.Banner, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Banner{ID: 100, FromSuggestedPost: true}, nil
}

type stubBannerAdmin struct {
	banners []domain.Banner
	err     error
}

func (b *stubBannerAdmin) List(context.Context, bool) ([]domain.Banner, error) {
	return b.banners, b.err
}
func (b *stubBannerAdmin) ListDisplayable(context.Context) ([]domain.Banner, error) {
	return b.banners, b.err
}
func (b *stubBannerAdmin) Get(_ context.Context, id int64) (*domain.Banner, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &domain.Banner{ID: id}, nil
}
func (b *stubBannerAdmin) Create(_ context.Context, banner *domain.Banner) error {
	if banner.Status == "" {
		banner.Status = domain.BannerActive
	}
	if err := banner.Validate(); err != nil {
		return err
	}
	banner.ID = 1
	return b.err
}
func (b *stubBannerAdmin) CreateFromUpload(context.Context, []byte, string, string, int) (*domain.Banner, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &domain.Banner{ID: 2}, nil
}
func (b *stubBannerAdmin) Update(context.Context, *domain.Banner) error { return b.err }
func (b *stubBannerAdmin) Delete(context.Context, int64) error          { return b.err }
func (b *stubBannerAdmin) Reactivate(_ context.Context, id int64, _ time.Duration) (*domain.Banner, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &domain.Banner{ID: id, Status: domain.BannerActive}, nil
}

func newTestRouter(sites *stubSiteAdmin, crawler *stubCrawler, moderator *stubModerator, banners *stubBannerAdmin) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRouter(
		NewSiteHandler(sites, crawler),
		NewSuggestionHandler(moderator),
		NewBannerHandler(banners),
		logger,
	)
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListSites(t *testing.T) {
	sites := &stubSiteAdmin{sites: []domain.Site{{ID: 1, Name: "Promo News"}}}
	router := newTestRouter(sites, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodGet, "/api/sites", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []domain.Site
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Promo News", got[0].Name)
}

func TestGetSite_InvalidID(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodGet, "/api/sites/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSite_NotFound(t *testing.T) {
	sites := &stubSiteAdmin{err: &domain.NotFoundError{Entity: "site", ID: 99}}
	router := newTestRouter(sites, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodGet, "/api/sites/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSite(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	body := `{"name":"Promo News","url":"https://example.com","interval_hours":6,"selector_title":".t","selector_image":".t img"}`
	w := doRequest(router, http.MethodPost, "/api/sites", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var got domain.Site
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.True(t, got.IsActive)
}

func TestCreateSite_ValidationError(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	body := `{"name":"Promo News","url":"https://example.com","interval_hours":500,"selector_title":".t","selector_image":".t img"}`
	w := doRequest(router, http.MethodPost, "/api/sites", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSite_MalformedBody(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodPost, "/api/sites", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestManualCrawl_InFlight(t *testing.T) {
	crawler := &stubCrawler{err: domain.ErrCrawlInFlight}
	router := newTestRouter(&stubSiteAdmin{}, crawler, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodPost, "/api/sites/1/crawl", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTestSite_EmptyResult(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodPost, "/api/sites/1/test", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Count int                    `json:"count"`
		Posts []domain.SuggestedPost `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Zero(t, got.Count)
	assert.NotNil(t, got.Posts)
}

func TestSuggestSelectors(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodGet, "/api/sites/selectors?url=https://g1.globo.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ".feed-post-link")

	w = doRequest(router, http.MethodGet, "/api/sites/selectors", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSuggestions_BadApprovedParam(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodGet, "/api/suggested-posts?approved=banana", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSuggestions(t *testing.T) {
	moderator := &stubModerator{page: &domain.SuggestionPage{
		Posts: []domain.SuggestedPost{{ID: 1, Title: "A deal"}},
		Total: 1, Page: 1, TotalPages: 1,
	}}
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, moderator, &stubBannerAdmin{})

	w := doRequest(router, http.MethodGet, "/api/suggested-posts?approved=false&page=1&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.SuggestionPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Total)
}

func TestConvertSuggestion(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodPost, "/api/suggested-posts/1/convert", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var got domain.Banner
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(100), got.ID)
	assert.True(t, got.FromSuggestedPost)
}

func TestCreateBanner_MissingTitle(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodPost, "/api/banners", `{"url_image":"https://cdn.example.com/x.jpg"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisplayableBanners(t *testing.T) {
	banners := &stubBannerAdmin{banners: []domain.Banner{{ID: 1, Status: domain.BannerActive}}}
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, banners)

	w := doRequest(router, http.MethodGet, "/api/banners/display", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []domain.Banner
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
}

func TestUploadBanner_StorageDisabled(t *testing.T) {
	banners := &stubBannerAdmin{err: domain.ErrStorageDisabled}
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, banners)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "banner.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("title", "Upload banner"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/banners/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUploadBanner_MissingFile(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	req := httptest.NewRequest(http.MethodPost, "/api/banners/upload", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteBanner(t *testing.T) {
	router := newTestRouter(&stubSiteAdmin{}, &stubCrawler{}, &stubModerator{}, &stubBannerAdmin{})

	w := doRequest(router, http.MethodDelete, "/api/banners/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
