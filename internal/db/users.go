package db

import (
	"context"

	"github.com/xddprog/auth-backend/internal/model"
)

const userColumns = `id, username, email, password_hash, created_at, updated_at`

func (db *Postgres) CreateUser(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + userColumns
	var user model.User
	err := db.Pool.QueryRow(ctx, query, username, email, passwordHash).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateExternalUser inserts a user row and its auth_methods row in one
// transaction: both land or neither does.
func (db *Postgres) CreateExternalUser(ctx context.Context, username string, email *string, provider, externalID string) (*model.User, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var user model.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, email, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING `+userColumns, username, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO auth_methods (user_id, provider, external_id, created_at)
		VALUES ($1, $2, $3, NOW())
	`, user.ID, provider, externalID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUserWhere(ctx, `email = $1`, email)
}

func (db *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUserWhere(ctx, `username = $1`, username)
}

func (db *Postgres) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return db.getUserWhere(ctx, `id = $1`, id)
}

// GetUserByExternalIdentity resolves the account linked to a provider
// identity. (provider, external_id) is the reconciliation key for social
// logins, not the username.
func (db *Postgres) GetUserByExternalIdentity(ctx context.Context, provider, externalID string) (*model.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.created_at, u.updated_at
		FROM users u
		JOIN auth_methods am ON am.user_id = u.id
		WHERE am.provider = $1 AND am.external_id = $2
	`
	var user model.User
	err := db.Pool.QueryRow(ctx, query, provider, externalID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) GetUsersByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	return db.getUsersWhere(ctx, `id = ANY($1)`, ids)
}

func (db *Postgres) GetUsersByEmails(ctx context.Context, emails []string) ([]model.User, error) {
	return db.getUsersWhere(ctx, `email = ANY($1)`, emails)
}

func (db *Postgres) UpdateUser(ctx context.Context, id int64, username string, email *string) (*model.User, error) {
	query := `
		UPDATE users
		SET username = $1, email = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + userColumns
	var user model.User
	err := db.Pool.QueryRow(ctx, query, username, email, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) getUserWhere(ctx context.Context, where string, arg any) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	var user model.User
	err := db.Pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) getUsersWhere(ctx context.Context, where string, arg any) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` ORDER BY id`
	rows, err := db.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if users == nil {
		users = []model.User{}
	}
	return users, nil
}
