package chattest

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The session credential is a signed JWT carried in a cookie. The client
// under test treats it as opaque; only this fake mints and validates it.

const sessionCookie = "session"

type sessionClaims struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type contextKey string

const userKey contextKey = "user_id"

func (s *Server) issueSession(w http.ResponseWriter, userID int, username string, remember bool) {
	ttl := 24 * time.Hour
	if remember {
		ttl = 30 * 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		ID:       userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "chattest",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
	})
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// sessionUser resolves the cookie to a user id, 0 when unauthenticated.
func (s *Server) sessionUser(r *http.Request) int {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return 0
	}
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0
	}
	return claims.ID
}

// requireSession rejects unauthenticated requests with the same envelope
// the real backend uses.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := s.sessionUser(r)
		if userID == 0 {
			writeEnvelope(w, http.StatusUnauthorized, map[string]any{
				"status": "error", "message": "not logged in",
			})
			return
		}
		ctx := context.WithValue(r.Context(), userKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestUser(r *http.Request) int {
	id, _ := r.Context().Value(userKey).(int)
	return id
}
