package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"promo_watch/internal/domain"
)

type SuggestedPostStore struct {
	db *sqlx.DB
}

func NewSuggestedPostStore(db *sqlx.DB) *SuggestedPostStore {
	return &SuggestedPostStore{db: db}
}

const postColumns = `id, site_id, title, image_url, article_url, source_site, is_approved, created_at, converted_to_banner_at`

// InsertBatch persists one crawl cycle's candidates in a single statement.
func (s *SuggestedPostStore) InsertBatch(ctx context.Context, posts []domain.SuggestedPost) error {
	if len(posts) == 0 {
		return nil
	}

	query := `
		INSERT INTO suggested_posts (site_id, title, image_url, article_url, source_site, is_approved)
		VALUES (:site_id, :title, :image_url, :article_url, :source_site, :is_approved)`

	_, err := s.db.NamedExecContext(ctx, query, posts)
	return err
}

// List returns posts ordered by created_at descending. With approved = true
// and convertedOnly, the result is restricted to posts already turned into a
// banner, matching the moderation UI's approved view.
func (s *SuggestedPostStore) List(ctx context.Context, approved *bool, convertedOnly bool) ([]domain.SuggestedPost, error) {
	query := `SELECT ` + postColumns + ` FROM suggested_posts`
	var args []any

	switch {
	case approved == nil:
	case *approved && convertedOnly:
		query += ` WHERE is_approved = true AND converted_to_banner_at IS NOT NULL`
	default:
		query += ` WHERE is_approved = $1`
		args = append(args, *approved)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	var posts []domain.SuggestedPost
	if err := s.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *SuggestedPostStore) GetByID(ctx context.Context, id int64) (*domain.SuggestedPost, error) {
	var post domain.SuggestedPost
	query := `SELECT ` + postColumns + ` FROM suggested_posts WHERE id = $1`
	err := s.db.GetContext(ctx, &post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "suggested post", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *SuggestedPostStore) Approve(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE suggested_posts SET is_approved = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res, "suggested post", id)
}

// MarkConverted is transaction-aware: during conversion it runs inside the
// same transaction as the banner insert.
func (s *SuggestedPostStore) MarkConverted(ctx context.Context, id int64, at time.Time) error {
	exec := GetExecutor(ctx, s.db)
	res, err := exec.ExecContext(ctx,
		`UPDATE suggested_posts SET is_approved = true, converted_to_banner_at = $1 WHERE id = $2`,
		at, id,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, "suggested post", id)
}

func (s *SuggestedPostStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM suggested_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res, "suggested post", id)
}
