package repository

import (
	"context"
	"database/sql"
	"errors"

	"ecommerce-platform/backend/internal/cart/domain"
	"ecommerce-platform/backend/internal/db"
	productdomain "ecommerce-platform/backend/internal/product/domain"
)

// PostgresRepository implements Repository against Postgres.
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a cart repository backed by dbtx.
func NewPostgresRepository(dbtx db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: dbtx}
}

// WithTx returns a repository running all statements on tx.
func (r *PostgresRepository) WithTx(tx *sql.Tx) Repository {
	return &PostgresRepository{db: tx}
}

// GetByUserID loads the cart with its items joined to the current products, or
// nil when the user has no cart.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*domain.Cart, error) {
	var c domain.Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at FROM shopping_carts WHERE user_id = $1`,
		userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, c *domain.Cart) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
			p.id, p.name, p.description, p.sku, p.price_cents, p.stock_quantity,
			p.minimum_stock_level, p.active, p.status, p.category_id
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at`,
		c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item domain.Item
			p    productdomain.Product
			desc sql.NullString
		)
		err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
			&p.ID, &p.Name, &desc, &p.SKU, &p.PriceCents, &p.StockQuantity,
			&p.MinimumStockLevel, &p.Active, &p.Status, &p.CategoryID,
		)
		if err != nil {
			return err
		}
		p.Description = desc.String
		item.Product = &p
		c.Items = append(c.Items, item)
	}
	return rows.Err()
}

// Create persists an empty cart.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Cart) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_carts (id, user_id, created_at, updated_at) VALUES ($1,$2,$3,$4)`,
		c.ID, c.UserID, c.CreatedAt, c.UpdatedAt)
	return err
}

// AddItem inserts a cart line.
func (r *PostgresRepository) AddItem(ctx context.Context, item *domain.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		item.ID, item.CartID, item.ProductID, item.Quantity, item.CreatedAt, item.UpdatedAt)
	return err
}

// UpdateItemQuantity sets the quantity of a line.
func (r *PostgresRepository) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $2, updated_at = NOW() WHERE id = $1`,
		itemID, quantity)
	return err
}

// DeleteItem removes a line.
func (r *PostgresRepository) DeleteItem(ctx context.Context, itemID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	return err
}

// Clear removes every line from the cart.
func (r *PostgresRepository) Clear(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

// Touch bumps the cart's updated_at.
func (r *PostgresRepository) Touch(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE shopping_carts SET updated_at = NOW() WHERE id = $1`, cartID)
	return err
}
