package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// UpdateDetails carries a sparse user update. Only non-nil fields are
// written; the password, when present, is already hashed by the service.
type UpdateDetails struct {
	Name         *string
	Email        *string
	Mobile       *string
	PasswordHash *string
}

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, user *User) error
	SetEmailVerified(ctx context.Context, id uuid.UUID) error
	SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetOTP(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error
	ClearOTP(ctx context.Context, id uuid.UUID, resetAuthorizedUntil *time.Time) error
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateDetails(ctx context.Context, id uuid.UUID, details UpdateDetails) error
}

const uniqueViolation = "23505"

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, name, email, mobile, password_hash, role, status, email_verified,
	refresh_token, forgot_password_otp, forgot_password_expiry, reset_authorized_until,
	last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Mobile, &u.PasswordHash, &u.Role, &u.Status,
		&u.EmailVerified, &u.RefreshToken, &u.ForgotPasswordOTP, &u.ForgotPasswordExpiry,
		&u.ResetAuthorizedUntil, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByEmail fetches a user by case-normalised email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create persists a new user. A unique violation on email maps to
// a Conflict error.
func (r *PGRepository) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, mobile, password_hash, role, status, email_verified, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, user.Name, user.Email, user.Mobile, user.PasswordHash,
		user.Role, user.Status, user.EmailVerified, now, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: email already registered", shared.ErrConflict)
		}
		return err
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// SetEmailVerified flips the verified flag. Idempotent by construction.
func (r *PGRepository) SetEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `UPDATE users SET email_verified = true, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
}

// SetRefreshToken overwrites the persisted refresh token; nil clears it.
func (r *PGRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.exec(ctx, `UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1`, id, token, time.Now().UTC())
}

// SetLastLogin records the login timestamp.
func (r *PGRepository) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login = $2, updated_at = $3 WHERE id = $1`, id, at.UTC(), time.Now().UTC())
}

// SetOTP stores an OTP and its expiry, overwriting any prior value.
func (r *PGRepository) SetOTP(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error {
	return r.exec(ctx, `
		UPDATE users SET forgot_password_otp = $2, forgot_password_expiry = $3, updated_at = $4
		WHERE id = $1`, id, otp, expiry.UTC(), time.Now().UTC())
}

// ClearOTP removes OTP state, optionally opening the reset window.
func (r *PGRepository) ClearOTP(ctx context.Context, id uuid.UUID, resetAuthorizedUntil *time.Time) error {
	return r.exec(ctx, `
		UPDATE users SET forgot_password_otp = NULL, forgot_password_expiry = NULL,
			reset_authorized_until = $2, updated_at = $3
		WHERE id = $1`, id, resetAuthorizedUntil, time.Now().UTC())
}

// SetPassword replaces the password hash and consumes the reset window.
func (r *PGRepository) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.exec(ctx, `
		UPDATE users SET password_hash = $2, reset_authorized_until = NULL, updated_at = $3
		WHERE id = $1`, id, hash, time.Now().UTC())
}

// UpdateDetails applies a sparse update; only non-nil fields are written.
func (r *PGRepository) UpdateDetails(ctx context.Context, id uuid.UUID, details UpdateDetails) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET
			name = COALESCE($2, name),
			email = COALESCE(lower($3), email),
			mobile = COALESCE($4, mobile),
			password_hash = COALESCE($5, password_hash),
			updated_at = $6
		WHERE id = $1`,
		id, details.Name, details.Email, details.Mobile, details.PasswordHash, time.Now().UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: email already registered", shared.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
