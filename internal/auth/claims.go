package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token kinds embedded in the "type" claim. Access tokens authorize
// requests; refresh tokens may only be exchanged for a new pair.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Claims is the decoded payload of a session token. Access tokens carry the
// full set of fields; refresh tokens carry only the subject, the kind and
// the registered timestamps. Claims are immutable once issued.
type Claims struct {
	Username    string   `json:"username,omitempty"`
	Email       string   `json:"email,omitempty"`
	IsSuperuser bool     `json:"is_superuser,omitempty"`
	Role        string   `json:"role,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	TokenType   string   `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token, which is the user's ID.
func (c *Claims) UserID() string {
	return c.Subject
}
