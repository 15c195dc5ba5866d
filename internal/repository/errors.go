// Package repository is the persistence collaborator of the auth core: it
// owns the users, roles and user_roles tables. Lookups return
// sql.ErrNoRows when nothing matches; the sentinel values below cover the
// failure scenarios handlers need to distinguish from generic database
// errors.
package repository

import "errors"

// ErrUserExists is returned when an insert collides with an existing email,
// username or national id. Handlers translate it into HTTP 409.
var ErrUserExists = errors.New("user already exists")
