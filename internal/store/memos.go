package store

import (
	"context"
	"database/sql"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/ahsanfayaz52/memoservice/internal/apperrors"
	"github.com/ahsanfayaz52/memoservice/internal/dbx"
	"github.com/ahsanfayaz52/memoservice/internal/models"
)

// MemoStore persists memos. Every read and mutation is filtered by the
// owning user's id as well as the memo id, so one user's memos are
// invisible and unmodifiable through another user's requests.
type MemoStore struct {
	db dbx.DBTX
}

func NewMemoStore(db dbx.DBTX) *MemoStore {
	return &MemoStore{db: db}
}

// Create inserts a new memo and fills in the assigned id.
func (s *MemoStore) Create(ctx context.Context, memo *models.Memo) (*models.Memo, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO memos (user_id, title, content) VALUES (?, ?, ?)`,
		memo.UserID, memo.Title, memo.Content)
	if err != nil {
		return nil, pkgerrors.Wrapf(apperrors.ErrPersistence, "insert memo: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, pkgerrors.Wrapf(apperrors.ErrPersistence, "insert memo id: %v", err)
	}
	memo.ID = int(id)
	return memo, nil
}

// ListByUser returns all memos owned by the user, in store order.
func (s *MemoStore) ListByUser(ctx context.Context, userID int) ([]models.Memo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, content FROM memos WHERE user_id = ?`,
		userID)
	if err != nil {
		return nil, pkgerrors.Wrapf(apperrors.ErrPersistence, "select memos: %v", err)
	}
	defer rows.Close()

	var memos []models.Memo
	for rows.Next() {
		var m models.Memo
		if err := rows.Scan(&m.ID, &m.UserID, &m.Title, &m.Content); err != nil {
			return nil, pkgerrors.Wrapf(apperrors.ErrPersistence, "scan memo: %v", err)
		}
		memos = append(memos, m)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrapf(apperrors.ErrPersistence, "iterate memos: %v", err)
	}
	return memos, nil
}

// Get fetches one memo owned by the user.
func (s *MemoStore) Get(ctx context.Context, userID, memoID int) (*models.Memo, error) {
	memo := &models.Memo{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, content FROM memos WHERE user_id = ? AND id = ?`,
		userID, memoID).Scan(&memo.ID, &memo.UserID, &memo.Title, &memo.Content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, pkgerrors.Wrapf(apperrors.ErrPersistence, "select memo: %v", err)
	}
	return memo, nil
}

// Update persists the memo's title and content, scoped by owner and id.
func (s *MemoStore) Update(ctx context.Context, memo *models.Memo) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE memos SET title = ?, content = ? WHERE id = ? AND user_id = ?`,
		memo.Title, memo.Content, memo.ID, memo.UserID)
	if err != nil {
		return pkgerrors.Wrapf(apperrors.ErrPersistence, "update memo: %v", err)
	}
	return nil
}

// Delete removes one memo owned by the user. Deleting a memo that does not
// exist (or belongs to someone else) yields apperrors.ErrNotFound.
func (s *MemoStore) Delete(ctx context.Context, userID, memoID int) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM memos WHERE id = ? AND user_id = ?`,
		memoID, userID)
	if err != nil {
		return pkgerrors.Wrapf(apperrors.ErrPersistence, "delete memo: %v", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return pkgerrors.Wrapf(apperrors.ErrPersistence, "delete memo result: %v", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
