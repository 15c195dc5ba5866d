package auth

import (
	"sync"
	"time"
)

// Blacklist is the revocation deny-list consulted before any cryptographic
// check: a token present here is rejected even if its signature and expiry
// are valid. Implementations must be safe for concurrent use. The in-memory
// store below covers a single process; RedisBlacklist implements the same
// operations over a shared set for horizontally scaled deployments.
type Blacklist interface {
	Add(token string)
	Contains(token string) bool
	Remove(token string) bool
	Clear()
	Size() int
}

// MemoryBlacklist is a mutex-guarded set of revoked token strings. Entries
// never expire on their own: the store grows for the lifetime of the process
// until Remove or Clear is called. The periodic cleanup hook runs on Add but
// performs no eviction yet; evicting entries whose embedded expiry has
// passed would need the codec, which this store deliberately knows nothing
// about.
type MemoryBlacklist struct {
	mu          sync.Mutex
	tokens      map[string]struct{}
	interval    time.Duration
	lastCleanup time.Time
}

// NewMemoryBlacklist returns an empty deny-list with the default one-hour
// cleanup interval.
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		tokens:      make(map[string]struct{}),
		interval:    time.Hour,
		lastCleanup: time.Now().UTC(),
	}
}

// Add inserts a token into the deny-list.
func (b *MemoryBlacklist) Add(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = struct{}{}
	b.maybeCleanup()
}

// Contains reports whether a token has been revoked.
func (b *MemoryBlacklist) Contains(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.tokens[token]
	return ok
}

// Remove deletes a token from the deny-list. It returns false if the token
// was not present.
func (b *MemoryBlacklist) Remove(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tokens[token]; !ok {
		return false
	}
	delete(b.tokens, token)
	return true
}

// Clear empties the deny-list.
func (b *MemoryBlacklist) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]struct{})
}

// Size returns the number of revoked tokens currently held.
func (b *MemoryBlacklist) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tokens)
}

// maybeCleanup notes that a cleanup window has passed. Callers must hold
// b.mu. No entries are evicted; see the type comment.
func (b *MemoryBlacklist) maybeCleanup() {
	now := time.Now().UTC()
	if now.Sub(b.lastCleanup) > b.interval {
		b.lastCleanup = now
	}
}
