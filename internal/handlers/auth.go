package handlers

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/certhub/examdesk/internal/config"
	"github.com/certhub/examdesk/internal/services"
)

const adminCookieName = "admin_session"

// Auth issues and checks the admin session token (HS256 JWT).
type Auth struct {
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewAuth signs with secret, or with a random per-process key when it is empty.
func NewAuth(password, secret string) *Auth {
	if secret == "" {
		secret = config.RandomSecret()
	}
	return &Auth{password: password, secret: []byte(secret), ttl: 24 * time.Hour, now: time.Now}
}

func (a *Auth) checkPassword(pw string) bool {
	return subtle.ConstantTimeCompare([]byte(pw), []byte(a.password)) == 1
}

func (a *Auth) Issue() (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	return tok, exp, err
}

func (a *Auth) Verify(tok string) error {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}
	if claims.Subject != "admin" {
		return errors.New("unexpected subject")
	}
	return nil
}

func bearer(r *http.Request) string {
	if c, err := r.Cookie(adminCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAdmin blocks access unless a valid session token is present.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearer(r)
		if tok == "" || a.Verify(tok) != nil {
			writeJSON(w, http.StatusUnauthorized, envelope{
				Code:    http.StatusUnauthorized,
				Status:  "error",
				Message: "Chưa đăng nhập hoặc phiên đã hết hạn.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Password string `json:"password"`
}

// POST /admin/login (JSON or form)
func (e *Env) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decode(r, &req); err != nil {
			e.fail(w, r, "login", err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			e.fail(w, r, "login", fmt.Errorf("%w: %v", services.ErrValidation, err))
			return
		}
		req.Password = r.FormValue("password")
	}
	if !e.Auth.checkPassword(req.Password) {
		e.Log.WarnContext(r.Context(), "admin login refused", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, envelope{
			Code:    http.StatusUnauthorized,
			Status:  "error",
			Message: "Mật khẩu không đúng.",
		})
		return
	}
	tok, exp, err := e.Auth.Issue()
	if err != nil {
		e.fail(w, r, "login", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
	ok(w, "Đăng nhập thành công.", map[string]any{"token": tok, "expires_at": exp})
}

// POST /admin/logout
func (e *Env) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	ok(w, "Đã đăng xuất.", nil)
}
