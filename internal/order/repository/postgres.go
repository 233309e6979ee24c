package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce-platform/backend/internal/db"
	"ecommerce-platform/backend/internal/order/domain"
)

// PostgresRepository implements Repository against Postgres.
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an order repository backed by dbtx.
func NewPostgresRepository(dbtx db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: dbtx}
}

// WithTx returns a repository running all statements on tx.
func (r *PostgresRepository) WithTx(tx *sql.Tx) Repository {
	return &PostgresRepository{db: tx}
}

const orderColumns = `
	id, order_number, user_id, status, subtotal_cents, tax_cents, shipping_cents,
	discount_cents, total_cents, shipping_address_id, billing_address_id,
	payment_method, payment_status, payment_transaction_id, order_date,
	shipped_date, delivered_date, tracking_number, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o             domain.Order
		paymentMethod sql.NullString
		paymentTxID   sql.NullString
		shippedDate   sql.NullTime
		deliveredDate sql.NullTime
		tracking      sql.NullString
		notes         sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.SubtotalCents, &o.TaxCents,
		&o.ShippingCents, &o.DiscountCents, &o.TotalCents, &o.ShippingAddressID,
		&o.BillingAddressID, &paymentMethod, &o.PaymentStatus, &paymentTxID,
		&o.OrderDate, &shippedDate, &deliveredDate, &tracking, &notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.PaymentMethod = paymentMethod.String
	o.PaymentTransactionID = paymentTxID.String
	o.TrackingNumber = tracking.String
	o.Notes = notes.String
	if shippedDate.Valid {
		t := shippedDate.Time
		o.ShippedDate = &t
	}
	if deliveredDate.Valid {
		t := deliveredDate.Time
		o.DeliveredDate = &t
	}
	return &o, nil
}

// Create persists the order, its items, and its initial history entries.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, status, subtotal_cents, tax_cents,
			shipping_cents, discount_cents, total_cents, shipping_address_id,
			billing_address_id, payment_method, payment_status,
			payment_transaction_id, order_date, shipped_date, delivered_date,
			tracking_number, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		o.ID, o.OrderNumber, o.UserID, string(o.Status), o.SubtotalCents, o.TaxCents,
		o.ShippingCents, o.DiscountCents, o.TotalCents, o.ShippingAddressID,
		o.BillingAddressID, nullString(o.PaymentMethod), string(o.PaymentStatus),
		nullString(o.PaymentTransactionID), o.OrderDate, nullTime(o.ShippedDate),
		nullTime(o.DeliveredDate), nullString(o.TrackingNumber), nullString(o.Notes),
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	for i := range o.Items {
		item := &o.Items[i]
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, quantity, unit_price_cents,
				total_price_cents, product_name, product_sku,
				product_description, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPriceCents,
			item.TotalPriceCents, item.ProductName, item.ProductSKU,
			nullString(item.ProductDescription), item.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	for i := range o.History {
		if err := r.AddHistory(ctx, &o.History[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID loads the order with items and history, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetByOrderNumber loads the order by its public number, or nil if not found.
func (r *PostgresRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return r.getOne(ctx, `order_number = $1`, orderNumber)
}

func (r *PostgresRepository) loadItems(ctx context.Context, o *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price_cents, total_price_cents,
		       product_name, product_sku, product_description, created_at
		FROM order_items WHERE order_id = $1 ORDER BY created_at, id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item domain.Item
			desc sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.UnitPriceCents, &item.TotalPriceCents, &item.ProductName,
			&item.ProductSKU, &desc, &item.CreatedAt); err != nil {
			return err
		}
		item.ProductDescription = desc.String
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func (r *PostgresRepository) loadHistory(ctx context.Context, o *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, status, notes, changed_by, created_at
		FROM order_status_history WHERE order_id = $1 ORDER BY created_at, id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			h     domain.StatusChange
			notes sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &notes, &h.ChangedBy, &h.CreatedAt); err != nil {
			return err
		}
		h.Notes = notes.String
		o.History = append(o.History, h)
	}
	return rows.Err()
}

// Update rewrites the order's mutable columns.
func (r *PostgresRepository) Update(ctx context.Context, o *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders SET
			status = $2, payment_method = $3, payment_status = $4,
			payment_transaction_id = $5, shipped_date = $6, delivered_date = $7,
			tracking_number = $8, notes = $9, updated_at = $10
		WHERE id = $1`,
		o.ID, string(o.Status), nullString(o.PaymentMethod), string(o.PaymentStatus),
		nullString(o.PaymentTransactionID), nullTime(o.ShippedDate),
		nullTime(o.DeliveredDate), nullString(o.TrackingNumber), nullString(o.Notes),
		o.UpdatedAt,
	)
	return err
}

// AddHistory appends a status history entry.
func (r *PostgresRepository) AddHistory(ctx context.Context, h *domain.StatusChange) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_status_history (id, order_id, status, notes, changed_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		h.ID, h.OrderID, string(h.Status), nullString(h.Notes), h.ChangedBy, h.CreatedAt)
	return err
}

func filterClauses(f ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// List returns order headers matching the filter, newest first. Items and
// history are not loaded for listings.
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*domain.Order, error) {
	clause, args := filterClauses(f)
	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY order_date DESC LIMIT $%d OFFSET $%d`,
		orderColumns, clause, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// HasDeliveredProduct reports whether the user has a delivered order containing
// the product.
func (r *PostgresRepository) HasDeliveredProduct(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1 AND o.status = 'DELIVERED' AND oi.product_id = $2
		)`, userID, productID).Scan(&exists)
	return exists, err
}

// Count returns the number of orders matching the filter.
func (r *PostgresRepository) Count(ctx context.Context, f ListFilter) (int, error) {
	clause, args := filterClauses(f)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+clause, args...).Scan(&n)
	return n, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
