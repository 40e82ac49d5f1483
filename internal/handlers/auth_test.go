package handlers

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ahsanfayaz52/memoservice/internal/session"
)

// bcryptHashOf matches any argument that is a valid bcrypt hash of the
// given plaintext, so tests can assert the stored value is hashed without
// knowing the salt.
type bcryptHashOf string

func (b bcryptHashOf) Match(v driver.Value) bool {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case []byte:
		s = string(val)
	default:
		return false
	}
	if s == string(b) {
		// Plaintext must never be stored.
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s), []byte(string(b))) == nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestSignup_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "a@x.com", bcryptHashOf("pw1")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup",
		strings.NewReader(`{"username":"alice","email":"a@x.com","password":"pw1"}`))
	SignupHandler(db, bcrypt.MinCost)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_DuplicateUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "b@y.com", bcryptHashOf("pw2")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice'"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup",
		strings.NewReader(`{"username":"alice","email":"b@y.com","password":"pw2"}`))
	SignupHandler(db, bcrypt.MinCost)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "username already registered", decodeBody(t, rec)["error"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignup_MissingFields(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup",
		strings.NewReader(`{"username":"alice"}`))
	SignupHandler(db, bcrypt.MinCost)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_StoreFailureDoesNotLeakDetail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "a@x.com", bcryptHashOf("pw1")).
		WillReturnError(errors.New("disk full on shard 3"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup",
		strings.NewReader(`{"username":"alice","email":"a@x.com","password":"pw1"}`))
	SignupHandler(db, bcrypt.MinCost)(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "signup failed", decodeBody(t, rec)["error"])
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func expectUserRow(mock sqlmock.Sqlmock, id int, username, hash string) {
	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}).
		AddRow(id, username, username+"@example.com", hash)
	mock.ExpectQuery("SELECT id, username, email, password_hash FROM users").
		WithArgs(username).
		WillReturnRows(rows)
}

func TestLogin_SuccessSetsSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	require.NoError(t, err)
	expectUserRow(mock, 1, "alice", string(hash))

	sessions := session.NewManager("test-secret")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"username":"alice","password":"pw1"}`))
	LoginHandler(db, sessions)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	authed := httptest.NewRequest(http.MethodGet, "/memos/", nil)
	authed.AddCookie(cookies[0])
	username, err := sessions.Username(authed)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestLogin_WrongPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	require.NoError(t, err)
	expectUserRow(mock, 1, "alice", string(hash))

	sessions := session.NewManager("test-secret")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"username":"alice","password":"wrong"}`))
	LoginHandler(db, sessions)(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "no session on failed login")
}

func TestLogin_UnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, username, email, password_hash FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"username":"ghost","password":"pw"}`))
	LoginHandler(db, session.NewManager("test-secret"))(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogout_ClearsSessionUnconditionally(t *testing.T) {
	sessions := session.NewManager("test-secret")

	// No session cookie on the request at all.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	LogoutHandler(sessions)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}
