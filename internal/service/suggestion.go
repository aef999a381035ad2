package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"promo_watch/internal/domain"
)

const defaultPageLimit = 20

// SuggestionService handles moderation of crawled suggestions: listing with
// read-time dedup, approval, rejection, and conversion into a banner.
type SuggestionService struct {
	posts         SuggestedPostStore
	banners       BannerStore
	txManager     TransactionManager
	defaultWindow time.Duration
	logger        *slog.Logger
}

func NewSuggestionService(
	posts SuggestedPostStore,
	banners BannerStore,
	txManager TransactionManager,
	defaultWindow time.Duration,
	logger *slog.Logger,
) *SuggestionService {
	if defaultWindow == 0 {
		defaultWindow = 24 * time.Hour
	}
	return &SuggestionService{
		posts:         posts,
		banners:       banners,
		txManager:     txManager,
		defaultWindow: defaultWindow,
		logger:        logger,
	}
}

// List returns one page of suggestions. Posts sharing an identical title are
// collapsed to the most recently created one before pagination.
func (s *SuggestionService) List(ctx context.Context, filter domain.SuggestionFilter) (*domain.SuggestionPage, error) {
	convertedOnly := filter.Approved != nil && *filter.Approved

	all, err := s.posts.List(ctx, filter.Approved, convertedOnly)
	if err != nil {
		return nil, err
	}

	unique := dedupByTitle(all)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}

	total := len(unique)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &domain.SuggestionPage{
		Posts:      unique[start:end],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// dedupByTitle collapses duplicate titles keeping the newest post. Input is
// ordered by created_at descending, so the first occurrence wins and the
// result preserves that ordering.
func dedupByTitle(posts []domain.SuggestedPost) []domain.SuggestedPost {
	seen := make(map[string]struct{}, len(posts))
	unique := make([]domain.SuggestedPost, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.Title]; ok {
			continue
		}
		seen[p.Title] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}

// Approve marks the post approved without deleting it.
func (s *SuggestionService) Approve(ctx context.Context, id int64) error {
	if _, err := s.posts.GetByID(ctx, id); err != nil {
		return err
	}
	return s.posts.Approve(ctx, id)
}

// Reject permanently removes the post.
func (s *SuggestionService) Reject(ctx context.Context, id int64) error {
	if _, err := s.posts.GetByID(ctx, id); err != nil {
		return err
	}
	return s.posts.Delete(ctx, id)
}

// Delete permanently removes the post. Same effect as Reject.
func (s *SuggestionService) Delete(ctx context.Context, id int64) error {
	return s.posts.Delete(ctx, id)
}

// ConvertOptions tune the banner built from a suggestion. Zero values take
// defaults: exhibition_order 1, status active.
type ConvertOptions struct {
	ExhibitionOrder int
	Status          domain.BannerStatus
}

// Convert builds a banner from the suggestion with a default display window
// starting now, and marks the source post approved and converted. Banner
// insert and post marking happen in one transaction.
func (s *SuggestionService) Convert(ctx context.Context, id int64, opts ConvertOptions) (*domain.Banner, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if opts.ExhibitionOrder == 0 {
		opts.ExhibitionOrder = 1
	}
	if opts.Status == "" {
		opts.Status = domain.BannerActive
	}
	if !opts.Status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: "status must be one of active, inactive, archived, expired"}
	}

	now := time.Now()
	end := now.Add(s.defaultWindow)
	description := fmt.Sprintf("Fonte: %s", post.SourceSite)

	banner := &domain.Banner{
		Title:             post.Title,
		URLImage:          post.ImageURL,
		ExhibitionOrder:   opts.ExhibitionOrder,
		Description:       &description,
		Status:            opts.Status,
		ScheduledStart:    &now,
		ScheduledEnd:      &end,
		FromSuggestedPost: true,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		bannerID, err := s.banners.Insert(txCtx, banner)
		if err != nil {
			return fmt.Errorf("insert banner: %w", err)
		}
		banner.ID = bannerID

		if err := s.posts.MarkConverted(txCtx, post.ID, now); err != nil {
			return fmt.Errorf("mark post converted: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("suggestion converted to banner",
		"post_id", post.ID,
		"banner_id", banner.ID,
		"title", post.Title,
	)

	return banner, nil
}
