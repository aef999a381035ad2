package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"promo_watch/internal/domain"
)

// Banner uploads are capped well above typical hero-image sizes.
const maxUploadBytes = 10 << 20

// BannerAdmin is the banner lifecycle surface the handler needs.
type BannerAdmin interface {
	List(ctx context.Context, includeExpired bool) ([]domain.Banner, error)
	ListDisplayable(ctx context.Context) ([]domain.Banner, error)
	Get(ctx context.Context, id int64) (*domain.Banner, error)
	Create(ctx context.Context, banner *domain.Banner) error
	CreateFromUpload(ctx context.Context, data []byte, contentType, title string, exhibitionOrder int) (*domain.Banner, error)
	Update(ctx context.Context, banner *domain.Banner) error
	Delete(ctx context.Context, id int64) error
	Reactivate(ctx context.Context, id int64, duration time.Duration) (*domain.Banner, error)
}

type BannerHandler struct {
	banners BannerAdmin
}

func NewBannerHandler(banners BannerAdmin) *BannerHandler {
	return &BannerHandler{banners: banners}
}

type bannerRequest struct {
	Title           string     `json:"title"`
	URLImage        string     `json:"url_image"`
	ExhibitionOrder int        `json:"exhibition_order"`
	Description     *string    `json:"description"`
	Status          string     `json:"status"`
	ScheduledStart  *time.Time `json:"scheduled_start"`
	ScheduledEnd    *time.Time `json:"scheduled_end"`
}

func (r *bannerRequest) toDomain() *domain.Banner {
	return &domain.Banner{
		Title:           r.Title,
		URLImage:        r.URLImage,
		ExhibitionOrder: r.ExhibitionOrder,
		Description:     r.Description,
		Status:          domain.BannerStatus(r.Status),
		ScheduledStart:  r.ScheduledStart,
		ScheduledEnd:    r.ScheduledEnd,
	}
}

func (h *BannerHandler) List(c *gin.Context) {
	includeExpired, _ := strconv.ParseBool(c.DefaultQuery("include_expired", "false"))

	banners, err := h.banners.List(c.Request.Context(), includeExpired)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, banners)
}

// ListDisplayable is the public endpoint: active banners inside their window.
func (h *BannerHandler) ListDisplayable(c *gin.Context) {
	banners, err := h.banners.ListDisplayable(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, banners)
}

func (h *BannerHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	banner, err := h.banners.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, banner)
}

func (h *BannerHandler) Create(c *gin.Context) {
	var req bannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	banner := req.toDomain()
	if err := h.banners.Create(c.Request.Context(), banner); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, banner)
}

// Upload creates a banner from a multipart image upload. The image is stored
// in object storage and the banner points at its public URL.
func (h *BannerHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondError(c, err)
		return
	}

	title := c.PostForm("title")
	exhibitionOrder, _ := strconv.Atoi(c.DefaultPostForm("exhibition_order", "1"))
	contentType := fileHeader.Header.Get("Content-Type")

	banner, err := h.banners.CreateFromUpload(c.Request.Context(), data, contentType, title, exhibitionOrder)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, banner)
}

func (h *BannerHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req bannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	banner := req.toDomain()
	banner.ID = id
	if err := h.banners.Update(c.Request.Context(), banner); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, banner)
}

type reactivateRequest struct {
	DurationHours float64 `json:"duration_hours"`
}

// Reactivate resets the banner to active with a fresh display window.
func (h *BannerHandler) Reactivate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req reactivateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	duration := time.Duration(req.DurationHours * float64(time.Hour))
	banner, err := h.banners.Reactivate(c.Request.Context(), id, duration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, banner)
}

func (h *BannerHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.banners.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
