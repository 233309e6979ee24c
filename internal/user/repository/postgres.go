package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"ecommerce-platform/backend/internal/db"
	"ecommerce-platform/backend/internal/platform/rbac"
	"ecommerce-platform/backend/internal/user/domain"
)

// PostgresRepository implements Repository against Postgres with hand-written SQL.
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(dbtx db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: dbtx}
}

// userColumns selects every user column plus the aggregated role set.
const userColumns = `
	u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.phone_number,
	u.enabled, u.account_non_expired, u.account_non_locked, u.credentials_non_expired,
	u.email_verified, u.last_login_at, u.failed_login_attempts, u.lockout_time, u.status,
	u.created_at, u.updated_at,
	COALESCE((SELECT string_agg(ur.role, ',' ORDER BY ur.role) FROM user_roles ur WHERE ur.user_id = u.id), '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		phone     sql.NullString
		lastLogin sql.NullTime
		lockout   sql.NullTime
		roles     string
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &phone,
		&u.Enabled, &u.AccountNonExpired, &u.AccountNonLocked, &u.CredentialsNonExpired,
		&u.EmailVerified, &lastLogin, &u.FailedLoginAttempts, &lockout, &u.Status,
		&u.CreatedAt, &u.UpdatedAt,
		&roles,
	)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		u.PhoneNumber = phone.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	if lockout.Valid {
		t := lockout.Time
		u.LockoutTime = &t
	}
	if roles != "" {
		u.Roles = rbac.FromStrings(strings.Split(roles, ","))
	}
	return &u, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE `+where, arg)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// GetByID returns the user for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `u.id = $1`, id)
}

// GetByUsername returns the user with the given username, or nil if not found.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `u.username = $1`, username)
}

// GetByEmail returns the user with the given email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `u.email = $1`, email)
}

// GetByUsernameOrEmail resolves a login identifier against either unique key.
func (r *PostgresRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*domain.User, error) {
	return r.getOne(ctx, `u.username = $1 OR u.email = $1`, identifier)
}

func (r *PostgresRepository) exists(ctx context.Context, where string, arg any) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users u WHERE `+where+`)`, arg).Scan(&found)
	return found, err
}

// ExistsByUsername reports whether a user with the given username exists.
func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `u.username = $1`, username)
}

// ExistsByEmail reports whether a user with the given email exists.
func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `u.email = $1`, email)
}

// Create persists the user and its role set. The user must have ID set; it is
// not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, email, password_hash, first_name, last_name, phone_number,
			enabled, account_non_expired, account_non_locked, credentials_non_expired,
			email_verified, last_login_at, failed_login_attempts, lockout_time, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, nullString(u.PhoneNumber),
		u.Enabled, u.AccountNonExpired, u.AccountNonLocked, u.CredentialsNonExpired,
		u.EmailVerified, nullTime(u.LastLoginAt), u.FailedLoginAttempts, nullTime(u.LockoutTime), string(u.Status),
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return r.replaceRoles(ctx, u.ID, u.Roles)
}

// Update rewrites the user's profile and security columns. Roles are managed by
// UpdateRoles and not touched here.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			email = $2, first_name = $3, last_name = $4, phone_number = $5,
			enabled = $6, account_non_expired = $7, account_non_locked = $8,
			credentials_non_expired = $9, email_verified = $10, status = $11,
			updated_at = $12
		WHERE id = $1`,
		u.ID, u.Email, u.FirstName, u.LastName, nullString(u.PhoneNumber),
		u.Enabled, u.AccountNonExpired, u.AccountNonLocked,
		u.CredentialsNonExpired, u.EmailVerified, string(u.Status),
		u.UpdatedAt,
	)
	return err
}

// Delete removes the user; dependent rows cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// List returns users ordered by creation time, paginated by limit and offset.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	return r.queryMany(ctx,
		`SELECT `+userColumns+` FROM users u ORDER BY u.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
}

// Search matches query case-insensitively against username, email, first name,
// and last name.
func (r *PostgresRepository) Search(ctx context.Context, query string, limit, offset int) ([]*domain.User, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return r.queryMany(ctx,
		`SELECT `+userColumns+` FROM users u
		 WHERE LOWER(u.username) LIKE $1 OR LOWER(u.email) LIKE $1
		    OR LOWER(u.first_name) LIKE $1 OR LOWER(u.last_name) LIKE $1
		 ORDER BY u.created_at DESC LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
}

// UpdateFailedLoginAttempts sets the failed-attempt counter.
func (r *PostgresRepository) UpdateFailedLoginAttempts(ctx context.Context, id string, attempts int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET failed_login_attempts = $2, updated_at = NOW() WHERE id = $1`,
		id, attempts)
	return err
}

// UpdateLastLogin stamps the last successful login time.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $2, updated_at = NOW() WHERE id = $1`,
		id, at)
	return err
}

// Lock clears the non-locked flag and records the lockout timestamp.
func (r *PostgresRepository) Lock(ctx context.Context, id string, lockoutTime time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET account_non_locked = FALSE, lockout_time = $2, updated_at = NOW() WHERE id = $1`,
		id, lockoutTime)
	return err
}

// Unlock sets the non-locked flag, clears the lockout timestamp, and resets the
// failed-attempt counter.
func (r *PostgresRepository) Unlock(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET account_non_locked = TRUE, lockout_time = NULL,
		 failed_login_attempts = 0, updated_at = NOW() WHERE id = $1`,
		id)
	return err
}

// UpdatePassword replaces the stored credential hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash)
	return err
}

// UpdateRoles replaces the role set wholesale in a single statement.
func (r *PostgresRepository) UpdateRoles(ctx context.Context, id string, roles []rbac.Role) error {
	return r.replaceRoles(ctx, id, roles)
}

func (r *PostgresRepository) replaceRoles(ctx context.Context, id string, roles []rbac.Role) error {
	_, err := r.db.ExecContext(ctx, `
		WITH cleared AS (DELETE FROM user_roles WHERE user_id = $1)
		INSERT INTO user_roles (user_id, role)
		SELECT $1, unnest($2::text[])`,
		id, rbac.Strings(roles))
	return err
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
