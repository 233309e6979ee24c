package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ecommerce-platform/backend/internal/db"
	"ecommerce-platform/backend/internal/review/domain"
)

// PostgresRepository implements Repository against Postgres.
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a review repository backed by dbtx.
func NewPostgresRepository(dbtx db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: dbtx}
}

const reviewColumns = `
	id, product_id, user_id, rating, title, comment, approved, verified,
	helpful_count, unhelpful_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var (
		r       domain.Review
		title   sql.NullString
		comment sql.NullString
	)
	err := row.Scan(
		&r.ID, &r.ProductID, &r.UserID, &r.Rating, &title, &comment,
		&r.Approved, &r.Verified, &r.HelpfulCount, &r.UnhelpfulCount,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Title = title.String
	r.Comment = comment.String
	return &r, nil
}

// GetByID returns the review for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	rev, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rev, err
}

// ExistsByProductAndUser reports whether the user already reviewed the product.
func (r *PostgresRepository) ExistsByProductAndUser(ctx context.Context, productID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE product_id = $1 AND user_id = $2)`,
		productID, userID).Scan(&exists)
	return exists, err
}

// Create persists the review.
func (r *PostgresRepository) Create(ctx context.Context, rev *domain.Review) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (
			id, product_id, user_id, rating, title, comment, approved, verified,
			helpful_count, unhelpful_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		rev.ID, rev.ProductID, rev.UserID, rev.Rating, nullString(rev.Title),
		nullString(rev.Comment), rev.Approved, rev.Verified, rev.HelpfulCount,
		rev.UnhelpfulCount, rev.CreatedAt, rev.UpdatedAt,
	)
	return err
}

// Update rewrites the review's mutable columns.
func (r *PostgresRepository) Update(ctx context.Context, rev *domain.Review) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reviews SET rating = $2, title = $3, comment = $4, approved = $5,
			verified = $6, updated_at = $7
		WHERE id = $1`,
		rev.ID, rev.Rating, nullString(rev.Title), nullString(rev.Comment),
		rev.Approved, rev.Verified, rev.UpdatedAt,
	)
	return err
}

// Delete removes the review.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	return err
}

func filterClauses(f ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		where = append(where, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.ApprovedOnly {
		where = append(where, "approved")
	}
	if f.PendingOnly {
		where = append(where, "NOT approved")
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// List returns reviews matching the filter, newest first.
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*domain.Review, error) {
	clause, args := filterClauses(f)
	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM reviews%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		reviewColumns, clause, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

// Count returns the number of reviews matching the filter.
func (r *PostgresRepository) Count(ctx context.Context, f ListFilter) (int, error) {
	clause, args := filterClauses(f)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`+clause, args...).Scan(&n)
	return n, err
}

// ApprovedStats returns the rating rollup over approved reviews.
func (r *PostgresRepository) ApprovedStats(ctx context.Context, productID string) (Stats, error) {
	var s Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(CAST(ROUND(AVG(rating) * 100) AS INT), 0), COUNT(*)
		FROM reviews WHERE product_id = $1 AND approved`, productID).Scan(&s.AverageHundredths, &s.Count)
	return s, err
}

// IncrementHelpful bumps the helpful vote counter.
func (r *PostgresRepository) IncrementHelpful(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET helpful_count = helpful_count + 1 WHERE id = $1`, id)
	return err
}

// IncrementUnhelpful bumps the unhelpful vote counter.
func (r *PostgresRepository) IncrementUnhelpful(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET unhelpful_count = unhelpful_count + 1 WHERE id = $1`, id)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
