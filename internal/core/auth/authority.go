// Package auth implements the stateless token authority. Tokens are HS256
// JWTs signed with a process-wide secret injected at construction time; there
// is no revocation list; a token stays valid until natural expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/buy01/marketplace-system/internal/core/domain"
)

// ErrTokenExpired marks a well-signed token past its expiry. Callers should
// prompt re-login rather than treat the bearer as malicious.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid marks a forged, tampered, or malformed token.
var ErrTokenInvalid = errors.New("token invalid")

// ErrSubjectMismatch marks a valid token presented for the wrong user.
var ErrSubjectMismatch = errors.New("token subject mismatch")

const defaultTTL = 24 * time.Hour

// Authority issues and verifies bearer tokens. It is stateless and safe for
// concurrent use; construct one per process with the shared secret.
type Authority struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthority(secret string, ttl time.Duration) *Authority {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Authority{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the user with subject, role, issued-at and expiry
// claims plus any caller-supplied extra claims. Extra claims cannot override
// the registered ones.
func (a *Authority) Issue(user *domain.User, extra map[string]any) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	claims["sub"] = user.ID
	claims["role"] = string(user.Role)
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(a.ttl).Unix()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry, returning the decoded claims. Expiry and
// forgery are distinct failures so callers can branch (expired → re-login,
// invalid → reject). When expected is non-nil the subject claim must match the
// expected user's id.
func (a *Authority) Verify(token string, expected *domain.User) (jwt.MapClaims, error) {
	claims, err := a.decode(token)
	if err != nil {
		return nil, err
	}
	if expected != nil {
		sub, _ := claims["sub"].(string)
		if sub != expected.ID {
			return nil, ErrSubjectMismatch
		}
	}
	return claims, nil
}

// ExtractClaim decodes the token and applies a typed projector over the claims
// map. The identity check is skipped; signature and expiry are still enforced.
func ExtractClaim[T any](a *Authority, token string, projector func(jwt.MapClaims) T) (T, error) {
	var zero T
	claims, err := a.decode(token)
	if err != nil {
		return zero, err
	}
	return projector(claims), nil
}

func (a *Authority) decode(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
