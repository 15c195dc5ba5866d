// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// Auth event names published to the auth.events queue.
const (
	EventLoggedIn  = "user.logged_in"
	EventRefreshed = "session.refreshed"
	EventLoggedOut = "user.logged_out"
)

// AuthEvent is published whenever a session is opened, refreshed or closed.
// It carries enough information for downstream consumers to audit or alert
// without querying the identity database.
type AuthEvent struct {
	Event      string `json:"event"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	OccurredAt string `json:"occurred_at"`
}
