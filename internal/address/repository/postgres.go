package repository

import (
	"context"
	"database/sql"
	"errors"

	"ecommerce-platform/backend/internal/address/domain"
	"ecommerce-platform/backend/internal/db"
)

// PostgresRepository implements Repository against Postgres.
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an address repository backed by dbtx.
func NewPostgresRepository(dbtx db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: dbtx}
}

const addressColumns = `
	id, user_id, type, street_address, address_line2, city, state, postal_code,
	country, is_default, active, first_name, last_name, phone_number, company,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (*domain.Address, error) {
	var (
		a         domain.Address
		line2     sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
		phone     sql.NullString
		company   sql.NullString
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.Type, &a.StreetAddress, &line2, &a.City, &a.State,
		&a.PostalCode, &a.Country, &a.Default, &a.Active, &firstName, &lastName,
		&phone, &company, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.AddressLine2 = line2.String
	a.FirstName = firstName.String
	a.LastName = lastName.String
	a.PhoneNumber = phone.String
	a.Company = company.String
	return &a, nil
}

// GetByID returns the address for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1`, id)
	a, err := scanAddress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Create persists the address.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Address) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO addresses (
			id, user_id, type, street_address, address_line2, city, state,
			postal_code, country, is_default, active, first_name, last_name,
			phone_number, company, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		a.ID, a.UserID, string(a.Type), a.StreetAddress, nullString(a.AddressLine2),
		a.City, a.State, a.PostalCode, a.Country, a.Default, a.Active,
		nullString(a.FirstName), nullString(a.LastName), nullString(a.PhoneNumber),
		nullString(a.Company), a.CreatedAt, a.UpdatedAt,
	)
	return err
}

// Update rewrites the address.
func (r *PostgresRepository) Update(ctx context.Context, a *domain.Address) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE addresses SET
			type = $2, street_address = $3, address_line2 = $4, city = $5,
			state = $6, postal_code = $7, country = $8, is_default = $9,
			active = $10, first_name = $11, last_name = $12, phone_number = $13,
			company = $14, updated_at = $15
		WHERE id = $1`,
		a.ID, string(a.Type), a.StreetAddress, nullString(a.AddressLine2), a.City,
		a.State, a.PostalCode, a.Country, a.Default, a.Active,
		nullString(a.FirstName), nullString(a.LastName), nullString(a.PhoneNumber),
		nullString(a.Company), a.UpdatedAt,
	)
	return err
}

// Delete deactivates the address. Orders keep their address references, so
// rows are never physically removed.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE addresses SET active = FALSE, is_default = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// ListByUser returns the user's active addresses, default first, newest next.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+addressColumns+` FROM addresses
		 WHERE user_id = $1 AND active
		 ORDER BY is_default DESC, created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ClearDefault unsets the default flag on the user's addresses whose type
// overlaps t.
func (r *PostgresRepository) ClearDefault(ctx context.Context, userID string, t domain.AddressType) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE addresses SET is_default = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_default
		  AND (type = $2 OR type = 'BOTH' OR $2 = 'BOTH')`,
		userID, string(t))
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
