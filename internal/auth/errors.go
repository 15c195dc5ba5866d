// Package auth implements the session core of the identity service: token
// issuance and verification, the revocation deny-list, role resolution and
// the login/refresh/logout/validate flows. Handlers and middleware translate
// the sentinel errors defined here into HTTP responses.
package auth

import "errors"

// ErrInvalidCredentials is returned when the identifier does not match any
// user or the password does not match the stored hash. Both cases collapse
// to the same error so responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAccountInactive is returned when the credentials match a user whose
// account has been deactivated.
var ErrAccountInactive = errors.New("account is inactive")

// ErrTokenInvalidOrExpired covers every token decode failure: bad signature,
// malformed payload, wrong kind or past expiry. Handlers map it to 401.
var ErrTokenInvalidOrExpired = errors.New("invalid or expired token")

// ErrTokenRevoked is returned when a presented token is on the deny-list,
// regardless of its cryptographic validity. Handlers map it to 401.
var ErrTokenRevoked = errors.New("token has been revoked")

// ErrForbidden is returned when an authenticated caller lacks the role or
// superuser flag a route requires. Handlers map it to 403.
var ErrForbidden = errors.New("forbidden")
