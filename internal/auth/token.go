package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec signs and verifies session tokens with a symmetric secret
// (HS256). All operations are pure functions of (secret, claims, clock); the
// codec holds no mutable state and is safe for concurrent use.
//
// Decode and Verify never return an error: any malformed, tampered or
// expired token collapses to nil so that callers can treat bad tokens as
// ordinary negative results. Stateless verification must not reveal whether
// a token was expired, forged or garbage.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec builds a codec from the signing secret and the configured
// lifetimes: access tokens in minutes, refresh tokens in days.
func NewTokenCodec(secret string, accessTTLMin, refreshTTLDays int) *TokenCodec {
	return &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMin) * time.Minute,
		refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// AccessTTL returns the configured access-token lifetime. Handlers use it
// to report expires_in seconds to clients.
func (c *TokenCodec) AccessTTL() time.Duration { return c.accessTTL }

// IssueAccess signs an access token for a user. role is the resolved
// primary role, roles the full set of active role codes. The expiry is
// now + the configured access lifetime.
func (c *TokenCodec) IssueAccess(userID, username, email string, isSuperuser bool, role string, roles []string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(c.accessTTL)
	claims := Claims{
		Username:    username,
		Email:       email,
		IsSuperuser: isSuperuser,
		Role:        role,
		Roles:       roles,
		TokenType:   TokenKindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefresh signs a minimal refresh token carrying only the subject. The
// expiry is now + the configured refresh lifetime.
func (c *TokenCodec) IssueRefresh(userID string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(c.refreshTTL)
	claims := Claims{
		TokenType: TokenKindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Decode verifies the signature and expiry of a token and returns its
// claims, or nil if the token is invalid for any reason.
func (c *TokenCodec) Decode(token string) *Claims {
	var claims Claims
	tok, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC signatures are acceptable; reject any other method.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil
	}
	return &claims
}

// Verify decodes the token and additionally requires the "type" claim to
// match kind. This is what keeps a refresh token from being accepted where
// an access token is required, and vice versa.
func (c *TokenCodec) Verify(token, kind string) *Claims {
	claims := c.Decode(token)
	if claims == nil || claims.TokenType != kind {
		return nil
	}
	return claims
}

// ExpiryOf returns the expiry of a decodable token. The second return is
// false when the token cannot be decoded or carries no expiry.
func (c *TokenCodec) ExpiryOf(token string) (time.Time, bool) {
	claims := c.Decode(token)
	if claims == nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// IsExpired reports whether a token is past its expiry. Tokens that cannot
// be decoded count as expired.
func (c *TokenCodec) IsExpired(token string) bool {
	exp, ok := c.ExpiryOf(token)
	if !ok {
		return true
	}
	return time.Now().UTC().After(exp)
}
