package auth

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKey = "auth:blacklist"

// RedisBlacklist keeps the deny-list in a Redis set so that every instance
// of the service rejects the same tokens. It satisfies the same Blacklist
// contract as MemoryBlacklist, including the absence of automatic eviction.
//
// Redis failures degrade open: a token cannot be confirmed as revoked while
// the store is unreachable, mirroring how the rest of the stack treats a
// lost Redis connection. Errors are logged so operators can tell.
type RedisBlacklist struct {
	rdb     *redis.Client
	timeout time.Duration
}

// NewRedisBlacklist wraps an existing client. The client is assumed to have
// been pinged at startup.
func NewRedisBlacklist(rdb *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{rdb: rdb, timeout: 2 * time.Second}
}

func (b *RedisBlacklist) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

// Add inserts a token into the shared deny-list.
func (b *RedisBlacklist) Add(token string) {
	ctx, cancel := b.ctx()
	defer cancel()
	if err := b.rdb.SAdd(ctx, blacklistKey, token).Err(); err != nil {
		log.Printf("blacklist: redis SADD failed: %v", err)
	}
}

// Contains reports whether a token has been revoked.
func (b *RedisBlacklist) Contains(token string) bool {
	ctx, cancel := b.ctx()
	defer cancel()
	ok, err := b.rdb.SIsMember(ctx, blacklistKey, token).Result()
	if err != nil {
		log.Printf("blacklist: redis SISMEMBER failed: %v", err)
		return false
	}
	return ok
}

// Remove deletes a token from the shared deny-list, returning false when it
// was not present.
func (b *RedisBlacklist) Remove(token string) bool {
	ctx, cancel := b.ctx()
	defer cancel()
	n, err := b.rdb.SRem(ctx, blacklistKey, token).Result()
	if err != nil {
		log.Printf("blacklist: redis SREM failed: %v", err)
		return false
	}
	return n > 0
}

// Clear empties the shared deny-list.
func (b *RedisBlacklist) Clear() {
	ctx, cancel := b.ctx()
	defer cancel()
	if err := b.rdb.Del(ctx, blacklistKey).Err(); err != nil {
		log.Printf("blacklist: redis DEL failed: %v", err)
	}
}

// Size returns the number of revoked tokens in the shared deny-list.
func (b *RedisBlacklist) Size() int {
	ctx, cancel := b.ctx()
	defer cancel()
	n, err := b.rdb.SCard(ctx, blacklistKey).Result()
	if err != nil {
		log.Printf("blacklist: redis SCARD failed: %v", err)
		return 0
	}
	return int(n)
}
