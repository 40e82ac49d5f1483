// Package store holds the repositories backing the auth and memo services.
// Each store is bound to a dbx.DBTX so the same code runs against the bare
// connection or inside a per-request transaction.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"

	"github.com/ahsanfayaz52/memoservice/internal/apperrors"
	"github.com/ahsanfayaz52/memoservice/internal/dbx"
	"github.com/ahsanfayaz52/memoservice/internal/models"
)

// MySQL error number for a duplicate entry on a unique key.
const mysqlDuplicateEntry = 1062

type UserStore struct {
	db dbx.DBTX
}

func NewUserStore(db dbx.DBTX) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user and fills in the assigned id. The unique index
// on username is the uniqueness authority: a duplicate surfaces as
// apperrors.ErrConflict, so concurrent signups for the same name cannot
// both succeed.
func (s *UserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil, apperrors.ErrConflict
		}
		return nil, pkgerrors.Wrapf(apperrors.ErrPersistence, "insert user: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, pkgerrors.Wrapf(apperrors.ErrPersistence, "insert user id: %v", err)
	}
	user.ID = int(id)
	return user, nil
}

// GetByUsername looks a user up by their unique username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash FROM users WHERE username = ?`,
		username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, pkgerrors.Wrapf(apperrors.ErrPersistence, "select user: %v", err)
	}
	return user, nil
}
