package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certhub/examdesk/internal/services"
)

func TestDescribe(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("x: %w", services.ErrInvalidScore), http.StatusBadRequest},
		{services.ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("room 3: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrCapacityExceeded, http.StatusConflict},
		{services.ErrRoomNotEmpty, http.StatusConflict},
		{services.ErrExtensionLimitExceeded, http.StatusConflict},
		{services.ErrRegistrationNotApproved, http.StatusConflict},
		{services.ErrDuplicateResult, http.StatusConflict},
		{services.ErrNoCandidates, http.StatusUnprocessableEntity},
		{services.ErrMissingData, http.StatusUnprocessableEntity},
		{&services.StoreError{Op: "load", Err: fmt.Errorf("disk I/O")}, http.StatusInternalServerError},
	}
	for _, c := range cases {
		status, text := describe(c.err)
		assert.Equal(t, c.status, status, "%v", c.err)
		assert.NotEmpty(t, text)
	}

	_, scoreText := describe(services.ErrInvalidScore)
	_, validText := describe(services.ErrValidation)
	assert.NotEqual(t, scoreText, validText, "score errors get their own message")
}

func TestRawString(t *testing.T) {
	assert.Equal(t, "", rawString(nil))
	assert.Equal(t, "abc", rawString("abc"))
	assert.Equal(t, "50.5", rawString(json.Number("50.5")))
	assert.Equal(t, "2.5", rawString(2.5))
	assert.Equal(t, "true", rawString(true))
}

func TestDecode(t *testing.T) {
	var dst struct {
		Capacity any `json:"capacity"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"capacity": 30}`))
	require.NoError(t, decode(r, &dst))
	assert.Equal(t, json.Number("30"), dst.Capacity)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, decode(r, &dst), services.ErrValidation)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope"))
	assert.ErrorIs(t, decode(r, &dst), services.ErrValidation)
}

func TestAuth_IssueVerify(t *testing.T) {
	a := NewAuth("pw", "secret")
	tok, exp, err := a.Issue()
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))
	assert.NoError(t, a.Verify(tok))

	assert.Error(t, NewAuth("pw", "other").Verify(tok), "wrong key")
	assert.Error(t, a.Verify(tok+"x"))

	old := NewAuth("pw", "secret")
	old.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, _, err := old.Issue()
	require.NoError(t, err)
	assert.Error(t, a.Verify(expired))
}

func TestAuth_EmptySecretIsRandom(t *testing.T) {
	a, b := NewAuth("pw", ""), NewAuth("pw", "")
	tok, _, err := a.Issue()
	require.NoError(t, err)
	assert.NoError(t, a.Verify(tok))
	assert.Error(t, b.Verify(tok))
	assert.Error(t, NewAuth("pw", "").Verify(forge(t, "")))
}

// forge signs an admin token with key, as an attacker who guessed it would.
func forge(t *testing.T, key string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func TestRequireAdmin(t *testing.T) {
	a := NewAuth("pw", "secret")
	h := a.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/rooms", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "error", env.Status)

	tok, _, err := a.Issue()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/rooms", nil)
	req.AddCookie(&http.Cookie{Name: adminCookieName, Value: tok})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/rooms", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestParseLocalTime(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	got, good := parseLocalTime("2026-11-07T08:00", loc)
	require.True(t, good)
	assert.Equal(t, time.Date(2026, 11, 7, 1, 0, 0, 0, time.UTC), got.UTC())

	got, good = parseLocalTime("2026-11-07T08:00:00Z", loc)
	require.True(t, good)
	assert.Equal(t, 8, got.UTC().Hour())

	_, good = parseLocalTime("07/11/2026", loc)
	assert.False(t, good)
}
