package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ecommerce-platform/backend/internal/db"
	"ecommerce-platform/backend/internal/product/domain"
)

// PostgresRepository implements Repository against Postgres.
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a product repository backed by dbtx.
func NewPostgresRepository(dbtx db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: dbtx}
}

// WithTx returns a repository running all statements on tx.
func (r *PostgresRepository) WithTx(tx *sql.Tx) Repository {
	return &PostgresRepository{db: tx}
}

const productColumns = `
	id, name, description, sku, price_cents, cost_cents, stock_quantity,
	minimum_stock_level, active, featured, brand, model, color, size,
	weight_grams, dimensions, status, category_id, rating_average_hundredths,
	rating_count, view_count, sales_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p           domain.Product
		desc        sql.NullString
		brand       sql.NullString
		model       sql.NullString
		color       sql.NullString
		size        sql.NullString
		weightGrams sql.NullInt64
		dimensions  sql.NullString
		rating      sql.NullInt64
	)
	err := row.Scan(
		&p.ID, &p.Name, &desc, &p.SKU, &p.PriceCents, &p.CostCents, &p.StockQuantity,
		&p.MinimumStockLevel, &p.Active, &p.Featured, &brand, &model, &color, &size,
		&weightGrams, &dimensions, &p.Status, &p.CategoryID, &rating,
		&p.RatingCount, &p.ViewCount, &p.SalesCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Description = desc.String
	p.Brand = brand.String
	p.Model = model.String
	p.Color = color.String
	p.Size = size.String
	p.Dimensions = dimensions.String
	if weightGrams.Valid {
		w := weightGrams.Int64
		p.WeightGrams = &w
	}
	if rating.Valid {
		p.RatingAverageHundredths = int(rating.Int64)
	}
	return &p, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE `+where, arg)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadImages(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID returns the product for id with its images, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetBySKU returns the product for sku with its images, or nil if not found.
func (r *PostgresRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.getOne(ctx, `sku = $1`, sku)
}

// ExistsBySKU reports whether a product with the given SKU exists.
func (r *PostgresRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`, sku).Scan(&found)
	return found, err
}

// Create persists the product.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, name, description, sku, price_cents, cost_cents, stock_quantity,
			minimum_stock_level, active, featured, brand, model, color, size,
			weight_grams, dimensions, status, category_id, rating_average_hundredths,
			rating_count, view_count, sales_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)`,
		p.ID, p.Name, nullString(p.Description), p.SKU, p.PriceCents, p.CostCents, p.StockQuantity,
		p.MinimumStockLevel, p.Active, p.Featured, nullString(p.Brand), nullString(p.Model),
		nullString(p.Color), nullString(p.Size), p.WeightGrams, nullString(p.Dimensions),
		string(p.Status), p.CategoryID, nullRating(p.RatingAverageHundredths),
		p.RatingCount, p.ViewCount, p.SalesCount, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// Update rewrites the product's descriptive and pricing columns. Stock and
// counters are managed by their dedicated methods.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products SET
			name = $2, description = $3, price_cents = $4, cost_cents = $5,
			minimum_stock_level = $6, active = $7, featured = $8, brand = $9,
			model = $10, color = $11, size = $12, weight_grams = $13,
			dimensions = $14, status = $15, category_id = $16, updated_at = $17
		WHERE id = $1`,
		p.ID, p.Name, nullString(p.Description), p.PriceCents, p.CostCents,
		p.MinimumStockLevel, p.Active, p.Featured, nullString(p.Brand),
		nullString(p.Model), nullString(p.Color), nullString(p.Size), p.WeightGrams,
		nullString(p.Dimensions), string(p.Status), p.CategoryID, p.UpdatedAt,
	)
	return err
}

// Delete removes the product; images and reviews cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

func filterClauses(f ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.CategoryID != "" {
		where = append(where, `category_id = `+arg(f.CategoryID))
	}
	if f.Search != "" {
		ph := arg("%" + strings.ToLower(f.Search) + "%")
		where = append(where, `(LOWER(name) LIKE `+ph+` OR LOWER(description) LIKE `+ph+` OR LOWER(brand) LIKE `+ph+`)`)
	}
	if f.Brand != "" {
		where = append(where, `LOWER(brand) = `+arg(strings.ToLower(f.Brand)))
	}
	if f.MinPriceCents > 0 {
		where = append(where, `price_cents >= `+arg(f.MinPriceCents))
	}
	if f.MaxPriceCents > 0 {
		where = append(where, `price_cents <= `+arg(f.MaxPriceCents))
	}
	if f.FeaturedOnly {
		where = append(where, `featured`)
	}
	if f.ActiveOnly {
		where = append(where, `active AND status = 'ACTIVE'`)
	}
	if len(where) == 0 {
		return ``, args
	}
	return ` WHERE ` + strings.Join(where, " AND "), args
}

func orderClause(sort string) string {
	switch sort {
	case SortBestSelling:
		return `sales_count DESC, created_at DESC`
	case SortPriceAsc:
		return `price_cents ASC`
	case SortPriceDesc:
		return `price_cents DESC`
	case SortRating:
		return `rating_average_hundredths DESC, rating_count DESC`
	default:
		return `created_at DESC`
	}
}

// List returns products matching the filter, ordered per f.Sort (newest first
// by default).
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*domain.Product, error) {
	clause, args := filterClauses(f)
	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, clause, orderClause(f.Sort), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of products matching the filter.
func (r *PostgresRepository) Count(ctx context.Context, f ListFilter) (int, error) {
	clause, args := filterClauses(f)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+clause, args...).Scan(&n)
	return n, err
}

// ListLowStock returns active products at or below their minimum stock level,
// lowest stock first.
func (r *PostgresRepository) ListLowStock(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE active AND stock_quantity <= minimum_stock_level
		 ORDER BY stock_quantity ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DecrementStock subtracts qty only when enough stock remains; the guard in the
// WHERE clause makes concurrent decrements safe without row locks.
func (r *PostgresRepository) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		 WHERE id = $1 AND stock_quantity >= $2`,
		id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// IncrementStock adds qty back to stock.
func (r *PostgresRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = NOW() WHERE id = $1`,
		id, qty)
	return err
}

// SetStock sets the absolute stock quantity.
func (r *PostgresRepository) SetStock(ctx context.Context, id string, qty int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock_quantity = $2, updated_at = NOW() WHERE id = $1`,
		id, qty)
	return err
}

// IncrementViewCount bumps the view counter.
func (r *PostgresRepository) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

// IncrementSalesCount adds qty to the sales counter.
func (r *PostgresRepository) IncrementSalesCount(ctx context.Context, id string, qty int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET sales_count = sales_count + $2 WHERE id = $1`, id, qty)
	return err
}

// SetRating stores the review rollup.
func (r *PostgresRepository) SetRating(ctx context.Context, id string, averageHundredths, count int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET rating_average_hundredths = $2, rating_count = $3, updated_at = NOW() WHERE id = $1`,
		id, averageHundredths, count)
	return err
}

func (r *PostgresRepository) loadImages(ctx context.Context, p *domain.Product) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, image_url, alt_text, is_primary, sort_order, active, created_at
		 FROM product_images WHERE product_id = $1 AND active ORDER BY sort_order, created_at`,
		p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			img domain.Image
			alt sql.NullString
		)
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &alt, &img.Primary,
			&img.SortOrder, &img.Active, &img.CreatedAt); err != nil {
			return err
		}
		img.AltText = alt.String
		p.Images = append(p.Images, img)
	}
	return rows.Err()
}

// AddImage attaches an image to a product. A new primary image demotes any
// existing primary.
func (r *PostgresRepository) AddImage(ctx context.Context, img *domain.Image) error {
	if img.Primary {
		if _, err := r.db.ExecContext(ctx,
			`UPDATE product_images SET is_primary = FALSE WHERE product_id = $1`, img.ProductID); err != nil {
			return err
		}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO product_images (id, product_id, image_url, alt_text, is_primary, sort_order, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		img.ID, img.ProductID, img.URL, nullString(img.AltText), img.Primary,
		img.SortOrder, img.Active, img.CreatedAt,
	)
	return err
}

// DeleteImage removes an image from a product.
func (r *PostgresRepository) DeleteImage(ctx context.Context, productID, imageID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM product_images WHERE id = $1 AND product_id = $2`, imageID, productID)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullRating(hundredths int) sql.NullInt64 {
	if hundredths == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(hundredths), Valid: true}
}
