package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"promo_watch/internal/domain"
)

type BannerStore struct {
	db *sqlx.DB
}

func NewBannerStore(db *sqlx.DB) *BannerStore {
	return &BannerStore{db: db}
}

const bannerColumns = `id, title, url_image, exhibition_order, description, status, created_at, scheduled_start, scheduled_end, from_suggested_post`

// List returns banners ordered by exhibition_order with id as the stable
// tie-break. Expired banners are excluded unless requested.
func (s *BannerStore) List(ctx context.Context, includeExpired bool) ([]domain.Banner, error) {
	query := `SELECT ` + bannerColumns + ` FROM banners`
	if !includeExpired {
		query += ` WHERE status <> 'expired'`
	}
	query += ` ORDER BY exhibition_order ASC, id ASC`

	var banners []domain.Banner
	if err := s.db.SelectContext(ctx, &banners, query); err != nil {
		return nil, err
	}
	return banners, nil
}

// ListDisplayable returns active banners whose optional window contains now.
func (s *BannerStore) ListDisplayable(ctx context.Context, now time.Time) ([]domain.Banner, error) {
	query := `
		SELECT ` + bannerColumns + `
		FROM banners
		WHERE status = 'active'
		  AND (scheduled_start IS NULL OR scheduled_start <= $1)
		  AND (scheduled_end IS NULL OR scheduled_end > $1)
		ORDER BY exhibition_order ASC, id ASC`

	var banners []domain.Banner
	if err := s.db.SelectContext(ctx, &banners, query, now); err != nil {
		return nil, err
	}
	return banners, nil
}

func (s *BannerStore) GetByID(ctx context.Context, id int64) (*domain.Banner, error) {
	var banner domain.Banner
	query := `SELECT ` + bannerColumns + ` FROM banners WHERE id = $1`
	err := s.db.GetContext(ctx, &banner, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "banner", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &banner, nil
}

// Insert is transaction-aware: conversion inserts the banner inside the same
// transaction that marks the source post.
func (s *BannerStore) Insert(ctx context.Context, banner *domain.Banner) (int64, error) {
	query := `
		INSERT INTO banners (title, url_image, exhibition_order, description, status, scheduled_start, scheduled_end, from_suggested_post)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	exec := GetExecutor(ctx, s.db)

	var id int64
	var createdAt time.Time
	err := exec.QueryRowxContext(ctx, query,
		banner.Title,
		banner.URLImage,
		banner.ExhibitionOrder,
		banner.Description,
		banner.Status,
		banner.ScheduledStart,
		banner.ScheduledEnd,
		banner.FromSuggestedPost,
	).Scan(&id, &createdAt)
	if err != nil {
		return 0, err
	}

	banner.CreatedAt = createdAt
	return id, nil
}

func (s *BannerStore) Update(ctx context.Context, banner *domain.Banner) error {
	query := `
		UPDATE banners
		SET title = $1, url_image = $2, exhibition_order = $3, description = $4,
		    status = $5, scheduled_start = $6, scheduled_end = $7
		WHERE id = $8`

	res, err := s.db.ExecContext(ctx, query,
		banner.Title,
		banner.URLImage,
		banner.ExhibitionOrder,
		banner.Description,
		banner.Status,
		banner.ScheduledStart,
		banner.ScheduledEnd,
		banner.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, "banner", banner.ID)
}

func (s *BannerStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM banners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res, "banner", id)
}

// ExpireOverdue transitions every active banner whose window has closed to
// expired. A single UPDATE keeps the sweep idempotent.
func (s *BannerStore) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE banners SET status = 'expired' WHERE status = 'active' AND scheduled_end IS NOT NULL AND scheduled_end < $1`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
