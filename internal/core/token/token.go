// Package token signs and verifies the session tokens issued at login.
//
// A token is a compact HS256 JWT carrying the account's username and role
// plus issue/expiry timestamps. Nothing is persisted server-side; possession
// of the signing secret is the only way to reconstruct or forge one.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/archery/auth-system/internal/core/domain"
)

// ErrInvalidToken is returned for every verification failure: bad signature,
// wrong algorithm, malformed payload, or expiry. Collapsing them is
// deliberate; callers must not learn why a token was rejected.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded content of a verified session token.
type Claims struct {
	Subject   string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec mints and verifies session tokens with a shared secret. It holds no
// mutable state and is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured session lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Mint issues a signed token for subject with the given role, expiring
// ttl after now.
func (c *Codec) Mint(subject string, role domain.Role, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(c.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify checks the token's signature and expiry against the current time.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	return c.VerifyAt(tokenString, time.Now())
}

// VerifyAt is Verify with an explicit clock.
func (c *Codec) VerifyAt(tokenString string, now time.Time) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)

	mc := jwt.MapClaims{}
	tkn, err := parser.ParseWithClaims(tokenString, mc, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return Claims{}, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	roleStr, _ := mc["role"].(string)
	role := domain.Role(roleStr)
	if sub == "" || !role.IsValid() {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{Subject: sub, Role: role}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
