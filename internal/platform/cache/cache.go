// Package cache provides a small TTL response cache for read-heavy search
// endpoints. Entries expire after a fixed short interval, approximating
// session-scoped invalidation, which the server cannot observe directly.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TTL is a bounded LRU cache whose entries expire after a fixed duration.
type TTL struct {
	lru *expirable.LRU[string, []byte]
}

func New(size int, ttl time.Duration) *TTL {
	return &TTL{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns the cached payload for key, if present and unexpired.
func (c *TTL) Get(key string) ([]byte, bool) {
	return c.lru.Get(key)
}

// Set stores a payload under key.
func (c *TTL) Set(key string, payload []byte) {
	c.lru.Add(key, payload)
}

// Purge drops all entries. Called after writes when staleness matters more
// than hit rate.
func (c *TTL) Purge() {
	c.lru.Purge()
}
