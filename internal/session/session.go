// Package session implements the signed session cookie. The cookie value
// is an HS256-signed token holding a single claim, the authenticated
// username, so the session survives across requests without any server-side
// state and cannot be tampered with by the client.
package session

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

const cookieName = "session"

// ErrNoSession is returned when the request carries no valid session cookie.
var ErrNoSession = errors.New("no valid session")

type Manager struct {
	secretKey string
}

func NewManager(secret string) *Manager {
	return &Manager{secretKey: secret}
}

// Issue signs a session token for username and sets it as a browser-session
// cookie. No expiry is set; the session lives as long as the cookie does.
func (m *Manager) Issue(w http.ResponseWriter, username string) error {
	claims := jwt.MapClaims{
		"username": username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    signed,
		HttpOnly: true,
		Path:     "/",
	})
	return nil
}

// Username returns the username carried by the request's session cookie.
// A missing, malformed, or tampered cookie yields ErrNoSession.
func (m *Manager) Username(r *http.Request) (string, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return "", ErrNoSession
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		return []byte(m.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrNoSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNoSession
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", ErrNoSession
	}
	return username, nil
}

// Clear removes the session cookie. It succeeds even if no session existed.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		MaxAge:   -1,
	})
}
