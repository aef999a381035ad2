package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"promo_watch/internal/domain"
)

type SiteStore struct {
	db *sqlx.DB
}

func NewSiteStore(db *sqlx.DB) *SiteStore {
	return &SiteStore{db: db}
}

const siteColumns = `id, name, url, interval_hours, selector_title, selector_image, selector_link, is_active, created_at, last_crawled`

func (s *SiteStore) List(ctx context.Context) ([]domain.Site, error) {
	var sites []domain.Site
	query := `SELECT ` + siteColumns + ` FROM sites ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &sites, query); err != nil {
		return nil, err
	}
	return sites, nil
}

func (s *SiteStore) ListActive(ctx context.Context) ([]domain.Site, error) {
	var sites []domain.Site
	query := `SELECT ` + siteColumns + ` FROM sites WHERE is_active = true ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &sites, query); err != nil {
		return nil, err
	}
	return sites, nil
}

func (s *SiteStore) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	var site domain.Site
	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`
	err := s.db.GetContext(ctx, &site, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "site", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *SiteStore) Create(ctx context.Context, site *domain.Site) (int64, error) {
	query := `
		INSERT INTO sites (name, url, interval_hours, selector_title, selector_image, selector_link, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	var id int64
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, query,
		site.Name,
		site.URL,
		site.IntervalHours,
		site.SelectorTitle,
		site.SelectorImage,
		site.SelectorLink,
		site.IsActive,
	).Scan(&id, &createdAt)
	if err != nil {
		return 0, err
	}

	site.CreatedAt = createdAt
	return id, nil
}

func (s *SiteStore) Update(ctx context.Context, site *domain.Site) error {
	query := `
		UPDATE sites
		SET name = $1, url = $2, interval_hours = $3,
		    selector_title = $4, selector_image = $5, selector_link = $6,
		    is_active = $7
		WHERE id = $8`

	res, err := s.db.ExecContext(ctx, query,
		site.Name,
		site.URL,
		site.IntervalHours,
		site.SelectorTitle,
		site.SelectorImage,
		site.SelectorLink,
		site.IsActive,
		site.ID,
	)
	if err != nil {
		return err
	}

	return checkAffected(res, "site", site.ID)
}

func (s *SiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res, "site", id)
}

func (s *SiteStore) StampLastCrawled(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sites SET last_crawled = $1 WHERE id = $2`, at, id)
	return err
}

func checkAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}
