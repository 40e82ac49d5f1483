package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ahsanfayaz52/memoservice/internal/apperrors"
	"github.com/ahsanfayaz52/memoservice/internal/models"
	"github.com/ahsanfayaz52/memoservice/internal/session"
	"github.com/ahsanfayaz52/memoservice/internal/store"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupHandler registers a new user. The password is stored as a bcrypt
// hash with the configured cost; a duplicate username answers 400 and any
// other store failure answers 500 with a fixed message.
func SignupHandler(conn *sql.DB, bcryptCost int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Username == "" || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "username, email and password are required")
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			logrus.WithError(err).Error("hash password")
			writeError(w, http.StatusInternalServerError, "signup failed")
			return
		}

		user := &models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(hashed),
		}
		if _, err := store.NewUserStore(conn).Create(r.Context(), user); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				writeError(w, http.StatusBadRequest, "username already registered")
				return
			}
			logrus.WithError(err).Error("create user")
			writeError(w, http.StatusInternalServerError, "signup failed")
			return
		}

		writeMessage(w, "signup successful")
	}
}

// LoginHandler verifies credentials and, on success, writes the username
// into the session cookie. Unknown users and bad passwords both answer 401.
func LoginHandler(conn *sql.DB, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := store.NewUserStore(conn).GetByUsername(r.Context(), req.Username)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid username or password")
				return
			}
			logrus.WithError(err).Error("look up user")
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}

		if err := sessions.Issue(w, user.Username); err != nil {
			logrus.WithError(err).Error("issue session")
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}

		writeMessage(w, "login successful")
	}
}

// LogoutHandler clears the session cookie. It succeeds even when no
// session existed.
func LogoutHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.Clear(w)
		writeMessage(w, "logout successful")
	}
}
