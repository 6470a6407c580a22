package sessiontoken

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"rsvp.link/models"
)

// TTL is the fixed session lifetime. Both the token expiry and the
// cookie max-age derive from it.
const TTL = 7 * 24 * time.Hour

var (
	ErrTokenInvalid = errors.New("session token invalid")
)

// SessionUser is the authenticated identity carried by the cookie.
type SessionUser struct {
	ID       uint            `json:"id"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
	Name     string          `json:"name"`
}

type claims struct {
	User SessionUser `json:"user"`
	jwtv5.RegisteredClaims
}

// Codec signs and verifies session tokens. Stateless; safe for
// concurrent use.
type Codec struct {
	secret []byte
}

// NewCodec builds a codec around the shared HS256 secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encrypt signs the user into an opaque token expiring after TTL.
func (c *Codec) Encrypt(user SessionUser) (string, error) {
	now := time.Now()
	cl := claims{
		User: user,
		RegisteredClaims: jwtv5.RegisteredClaims{
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(TTL)),
			Issuer:    "rsvp.link",
		},
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, cl)
	return token.SignedString(c.secret)
}

// Decrypt verifies signature and expiry. Any failure comes back as
// ErrTokenInvalid; callers treat it as "no session" and never surface it.
func (c *Codec) Decrypt(tokenString string) (*SessionUser, error) {
	var cl claims
	token, err := jwtv5.ParseWithClaims(tokenString, &cl, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if cl.User.ID == 0 {
		return nil, ErrTokenInvalid
	}
	return &cl.User, nil
}
