package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ahsanfayaz52/memoservice/internal/apperrors"
	"github.com/ahsanfayaz52/memoservice/internal/dbx"
	"github.com/ahsanfayaz52/memoservice/internal/models"
	"github.com/ahsanfayaz52/memoservice/internal/session"
	"github.com/ahsanfayaz52/memoservice/internal/store"
)

type ctxKey int

const userKey ctxKey = 0

type createMemoRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// updateMemoRequest uses pointers so that omitted fields are
// distinguishable from empty ones; only supplied fields change.
type updateMemoRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// RequireUser guards the memo routes: it reads the username from the
// session (401 if absent or invalid), resolves the user (404 if the
// session names a user no longer in the store), and stashes the user in
// the request context.
func RequireUser(conn *sql.DB, sessions *session.Manager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := sessions.Username(r)
			if err != nil {
				writeError(w, apperrors.Status(apperrors.ErrNotAuthorized), "not authorized")
				return
			}

			user, err := store.NewUserStore(conn).GetByUsername(r.Context(), username)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					writeError(w, http.StatusNotFound, "user not found")
					return
				}
				logrus.WithError(err).Error("resolve session user")
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// CreateMemoHandler persists a new memo owned by the authenticated user
// and returns the created record including its assigned id.
func CreateMemoHandler(conn *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())

		var req createMemoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		memo := &models.Memo{
			UserID:  user.ID,
			Title:   req.Title,
			Content: req.Content,
		}
		err := dbx.WithTx(r.Context(), conn, func(ctx context.Context, tx dbx.DBTX) error {
			_, err := store.NewMemoStore(tx).Create(ctx, memo)
			return err
		})
		if err != nil {
			logrus.WithError(err).Error("create memo")
			writeError(w, apperrors.Status(err), "failed to create memo")
			return
		}

		writeJSON(w, http.StatusOK, memo)
	}
}

// ListMemosHandler renders the memo list view with all memos owned by the
// authenticated user, in store order.
func ListMemosHandler(conn *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())

		memos, err := store.NewMemoStore(conn).ListByUser(r.Context(), user.ID)
		if err != nil {
			logrus.WithError(err).Error("list memos")
			writeError(w, apperrors.Status(err), "failed to fetch memos")
			return
		}

		tmpl := template.Must(template.ParseFiles("templates/memos.html", "templates/base.html"))
		err = tmpl.ExecuteTemplate(w, "base.html", map[string]interface{}{
			"Memos":    memos,
			"Username": user.Username,
		})
		if err != nil {
			logrus.WithError(err).Error("render memo list")
		}
	}
}

// UpdateMemoHandler applies a partial update to one of the authenticated
// user's memos: only fields present in the request change.
func UpdateMemoHandler(conn *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())

		memoID, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Memo not found"})
			return
		}

		var req updateMemoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var updated *models.Memo
		err = dbx.WithTx(r.Context(), conn, func(ctx context.Context, tx dbx.DBTX) error {
			memos := store.NewMemoStore(tx)

			memo, err := memos.Get(ctx, user.ID, memoID)
			if err != nil {
				return err
			}
			if req.Title != nil {
				memo.Title = *req.Title
			}
			if req.Content != nil {
				memo.Content = *req.Content
			}
			if err := memos.Update(ctx, memo); err != nil {
				return err
			}
			updated = memo
			return nil
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "Memo not found"})
				return
			}
			logrus.WithError(err).Error("update memo")
			writeError(w, apperrors.Status(err), "failed to update memo")
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteMemoHandler removes one of the authenticated user's memos.
func DeleteMemoHandler(conn *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromContext(r.Context())

		memoID, err := strconv.Atoi(mux.Vars(r)["id"])
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Memo not found"})
			return
		}

		err = dbx.WithTx(r.Context(), conn, func(ctx context.Context, tx dbx.DBTX) error {
			return store.NewMemoStore(tx).Delete(ctx, user.ID, memoID)
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "Memo not found"})
				return
			}
			logrus.WithError(err).Error("delete memo")
			writeError(w, apperrors.Status(err), "failed to delete memo")
			return
		}

		writeMessage(w, "Memo deleted")
	}
}
