package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionCookieName carries the signed user identity.
const sessionCookieName = "bookshelf_session"

// sessionTTL bounds how long a login stays valid.
const sessionTTL = 7 * 24 * time.Hour

// sessionCodec signs and verifies stateless session cookies. The cookie
// value is an HS256 JWT whose subject is the user id; tampering with any
// part breaks the signature.
type sessionCodec struct {
	secret []byte
	secure bool
}

func newSessionCodec(secret string, secure bool) *sessionCodec {
	return &sessionCodec{secret: []byte(secret), secure: secure}
}

// generateToken signs a session token for userID expiring at expiry.
func (c *sessionCodec) generateToken(userID int64, expiry time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(expiry),
	})
	return token.SignedString(c.secret)
}

// SetUserCookie issues a session cookie for userID.
func (c *sessionCodec) SetUserCookie(w http.ResponseWriter, userID int64) error {
	expiry := time.Now().Add(sessionTTL)
	value, err := c.generateToken(userID, expiry)
	if err != nil {
		return fmt.Errorf("signing session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearUserCookie removes the session cookie.
func (c *sessionCodec) ClearUserCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID extracts and verifies the user id from the session cookie.
// Tokens must be HS256-signed and carry an expiry claim.
func (c *sessionCodec) UserID(r *http.Request) (int64, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return 0, false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, false
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}
