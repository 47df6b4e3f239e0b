package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BorisDmv/techscribe-api/internal/models"
	"github.com/BorisDmv/techscribe-api/internal/store"
)

const userColumns = `
	id::text,
	fullname,
	username,
	email,
	password_hash,
	profile_picture_url,
	color,
	roles,
	is_active,
	reset_password_otp,
	reset_password_expires,
	created_at,
	updated_at
`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var roles []string
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ProfilePictureURL,
		&user.Color,
		&roles,
		&user.IsActive,
		&user.ResetPasswordOTP,
		&user.ResetPasswordExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	user.Roles = models.RolesFromStrings(roles)
	return user, err
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if len(user.Roles) == 0 {
		user.Roles = models.Roles{models.RoleReader}
	}
	if user.Color == "" {
		user.Color = models.DefaultColor
	}

	const query = `
		INSERT INTO users (fullname, username, email, password_hash, profile_picture_url, color, roles, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING ` + userColumns

	created, err := scanUser(s.pool.QueryRow(
		ctx,
		query,
		user.FullName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.ProfilePictureURL,
		user.Color,
		user.Roles.Strings(),
	))
	if err != nil {
		return translate(err, "create user")
	}
	*user = created
	return nil
}

func (s *Store) getUserWhere(ctx context.Context, where string, arg any) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	user, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return models.User{}, translate(err, "get user")
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.getUserWhere(ctx, "id = $1", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.getUserWhere(ctx, "email = $1", email)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getUserWhere(ctx, "username = $1", username)
}

func (s *Store) ListUsers(ctx context.Context, excludeID string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id::text <> $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, excludeID)
	if err != nil {
		return nil, translate(err, "list users")
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, translate(err, "scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "rows error")
	}
	return users, nil
}

func (s *Store) ToggleUserActive(ctx context.Context, id string) (bool, error) {
	const query = `
		UPDATE users SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1
		RETURNING is_active
	`
	var active bool
	if err := s.pool.QueryRow(ctx, query, id).Scan(&active); err != nil {
		return false, translate(err, "toggle user")
	}
	return active, nil
}

func (s *Store) AddUserRole(ctx context.Context, id string, role models.Role) error {
	return addUserRole(ctx, s.pool, id, role)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func addUserRole(ctx context.Context, conn execer, id string, role models.Role) error {
	const query = `
		UPDATE users
		SET roles = CASE WHEN $2::text = ANY(roles) THEN roles ELSE array_append(roles, $2::text) END,
		    updated_at = now()
		WHERE id = $1
	`
	tag, err := conn.Exec(ctx, query, id, string(role))
	if err != nil {
		return translate(err, "add role")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetPasswordReset(ctx context.Context, id string, otp *string, expires *time.Time) error {
	const query = `
		UPDATE users SET reset_password_otp = $2, reset_password_expires = $3, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, id, otp, expires)
	if err != nil {
		return translate(err, "set password reset")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindUserByResetCode(ctx context.Context, email, code string, now time.Time) (models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND reset_password_otp = $2 AND reset_password_expires > $3`
	user, err := scanUser(s.pool.QueryRow(ctx, query, email, code, now))
	if err != nil {
		return models.User{}, translate(err, "find reset code")
	}
	return user, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2, reset_password_otp = NULL, reset_password_expires = NULL, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return translate(err, "update password")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
