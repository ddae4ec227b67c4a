package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	playerCookieName  = "wordmaster_player"
	playerTokenHeader = "X-Player-Token"
	tokenIssuer       = "wordmaster"
)

// ctxPlayerKey is the context key for the caller's player id.
type ctxPlayerKey struct{}

// playerID returns the id stored by withPlayer.
func playerID(r *http.Request) string {
	id, _ := r.Context().Value(ctxPlayerKey{}).(string)
	return id
}

// withPlayer resolves the caller's player id from a bearer token or cookie.
// Clients without a valid token get a fresh id, a cookie and an
// X-Player-Token header they can replay as a bearer token.
func (s *Server) withPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.parsePlayerToken(bearerOrCookie(r))
		if id == "" {
			id = uuid.NewString()
			tok, exp, err := s.signPlayerToken(id)
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("sign player token")
				writeError(w, http.StatusInternalServerError, "sign_failed")
				return
			}
			s.setPlayerCookie(w, tok, exp)
			w.Header().Set(playerTokenHeader, tok)
		}
		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("player", id)
		})
		ctx := context.WithValue(r.Context(), ctxPlayerKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// signPlayerToken creates an HS256 JWT whose subject is the player id.
func (s *Server) signPlayerToken(id string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(time.Duration(s.cfg.PlayerTokenDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(s.secret)
	return ss, exp, err
}

// parsePlayerToken returns the player id of a valid token, or "".
func (s *Server) parsePlayerToken(tok string) string {
	if tok == "" {
		return ""
	}
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil || !t.Valid {
		return ""
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return ""
	}
	return claims.Subject
}

// setPlayerCookie writes the player token cookie.
func (s *Server) setPlayerCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := s.cfg.ProductionCookie
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third‑party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or player cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(playerCookieName); err == nil {
		return c.Value
	}
	return ""
}
