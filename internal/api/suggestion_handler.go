package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"promo_watch/internal/domain"
	"promo_watch/internal/service"
)

// SuggestionModerator is the moderation surface for crawled suggestions.
type SuggestionModerator interface {
	List(ctx context.Context, filter domain.SuggestionFilter) (*domain.SuggestionPage, error)
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	Convert(ctx context.Context, id int64, opts service.ConvertOptions) (*domain.Banner, error)
}

type SuggestionHandler struct {
	suggestions SuggestionModerator
}

func NewSuggestionHandler(suggestions SuggestionModerator) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions}
}

func (h *SuggestionHandler) List(c *gin.Context) {
	var filter domain.SuggestionFilter

	if raw, ok := c.GetQuery("approved"); ok {
		approved, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "approved must be true or false"})
			return
		}
		filter.Approved = &approved
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	page, err := h.suggestions.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *SuggestionHandler) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.suggestions.Approve(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": true})
}

func (h *SuggestionHandler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.suggestions.Reject(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SuggestionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.suggestions.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type convertRequest struct {
	ExhibitionOrder int    `json:"exhibition_order"`
	Status          string `json:"status"`
}

// Convert turns an approved suggestion into a banner with a default display
// window starting now.
func (h *SuggestionHandler) Convert(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req convertRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	banner, err := h.suggestions.Convert(c.Request.Context(), id, service.ConvertOptions{
		ExhibitionOrder: req.ExhibitionOrder,
		Status:          domain.BannerStatus(req.Status),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, banner)
}
