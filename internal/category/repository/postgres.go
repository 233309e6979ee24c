package repository

import (
	"context"
	"database/sql"
	"errors"

	"ecommerce-platform/backend/internal/category/domain"
	"ecommerce-platform/backend/internal/db"
)

// PostgresRepository implements Repository against Postgres.
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a category repository backed by dbtx.
func NewPostgresRepository(dbtx db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: dbtx}
}

const categoryColumns = `
	id, name, description, slug, image_url, active, sort_order, parent_category_id,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		c        domain.Category
		desc     sql.NullString
		imageURL sql.NullString
		parentID sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.Name, &desc, &c.Slug, &imageURL, &c.Active, &c.SortOrder, &parentID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Description = desc.String
	c.ImageURL = imageURL.String
	if parentID.Valid {
		p := parentID.String
		c.ParentID = &p
	}
	return &c, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE `+where, arg)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// GetByID returns the category for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetBySlug returns the category for slug, or nil if not found.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.getOne(ctx, `slug = $1`, slug)
}

// ExistsBySlug reports whether a category with the given slug exists.
func (r *PostgresRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&found)
	return found, err
}

// Create persists the category.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (
			id, name, description, slug, image_url, active, sort_order,
			parent_category_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.Name, nullString(c.Description), c.Slug, nullString(c.ImageURL),
		c.Active, c.SortOrder, c.ParentID, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// Update rewrites the category.
func (r *PostgresRepository) Update(ctx context.Context, c *domain.Category) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE categories SET
			name = $2, description = $3, slug = $4, image_url = $5, active = $6,
			sort_order = $7, parent_category_id = $8, updated_at = $9
		WHERE id = $1`,
		c.ID, c.Name, nullString(c.Description), c.Slug, nullString(c.ImageURL),
		c.Active, c.SortOrder, c.ParentID, c.UpdatedAt,
	)
	return err
}

// Delete removes the category.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListRoot returns active root categories ordered by sort order, then name.
func (r *PostgresRepository) ListRoot(ctx context.Context) ([]*domain.Category, error) {
	return r.queryMany(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE parent_category_id IS NULL AND active
		 ORDER BY sort_order, name`)
}

// ListChildren returns active children of parentID ordered by sort order, then name.
func (r *PostgresRepository) ListChildren(ctx context.Context, parentID string) ([]*domain.Category, error) {
	return r.queryMany(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE parent_category_id = $1 AND active
		 ORDER BY sort_order, name`, parentID)
}

// ListAll returns every category.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*domain.Category, error) {
	return r.queryMany(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, name`)
}

// HasChildren reports whether any category references id as parent.
func (r *PostgresRepository) HasChildren(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE parent_category_id = $1)`, id).Scan(&found)
	return found, err
}

// HasProducts reports whether any product belongs to the category.
func (r *PostgresRepository) HasProducts(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE category_id = $1)`, id).Scan(&found)
	return found, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
