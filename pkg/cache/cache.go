package cache

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrMissingSalt is returned when a cache is constructed without a salt.
	ErrMissingSalt = errors.New("cache: secret salt is required")

	// ErrMissingSessionToken is returned when key material omits the
	// session-scoped isolation token.
	ErrMissingSessionToken = errors.New("cache: session token is required")
)

// Payload is the cached response to a previously generated interaction.
type Payload struct {
	// Response is the generated text.
	Response string

	// AgentUsed tags the strategy that produced the response.
	AgentUsed string

	// AIInvolvement is the involvement estimate stored with the response,
	// used to recompute the estimate on a cache hit.
	AIInvolvement float64

	// GeneratedAt is when the backend produced the response.
	GeneratedAt time.Time
}

// entry is a single cache slot.
type entry struct {
	payload      *Payload
	insertedAt   time.Time
	lastAccessed time.Time
	expiresAt    time.Time // zero = no expiry
}

// Config configures the response cache.
type Config struct {
	// Salt is the secret hash salt. Required.
	Salt string

	// MaxEntries bounds the cache size; 0 means unlimited.
	// Default: 1024
	MaxEntries int

	// DefaultTTL applies when Put is called with ttl 0.
	// Default: 15 minutes
	DefaultTTL time.Duration

	// SweepInterval is how often the background sweep reclaims expired
	// entries. 0 disables the sweep; lazy expiry on read still applies.
	SweepInterval time.Duration
}

// Cache is a TTL- and capacity-bounded store for generated responses, keyed by
// a salted hash over prompt, context, session token, and mode.
//
// Get and Put are safe under concurrent callers. The cache does NOT guarantee
// at-most-one upstream generation per key: two simultaneous misses for the
// same key may both invoke the backend. That relaxation is deliberate;
// strengthening it to single-flight is a behavior change, not a fix.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	salt       string
	maxEntries int
	defaultTTL time.Duration

	stopCh    chan struct{}
	closeOnce sync.Once
}

// New creates a response cache. It refuses an empty salt.
func New(cfg Config) (*Cache, error) {
	if cfg.Salt == "" {
		return nil, ErrMissingSalt
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = 1024
	}
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = 15 * time.Minute
	}

	c := &Cache{
		entries:    make(map[string]*entry),
		salt:       cfg.Salt,
		maxEntries: cfg.MaxEntries,
		defaultTTL: cfg.DefaultTTL,
		stopCh:     make(chan struct{}),
	}

	if cfg.SweepInterval > 0 {
		go c.sweep(cfg.SweepInterval)
	}

	return c, nil
}

// Key derives the cache key for the given material. It fails if the session
// token is missing.
func (c *Cache) Key(m KeyMaterial) (string, error) {
	return deriveKey(c.salt, m)
}

// Get returns the payload for key if present and unexpired. Expired entries
// are treated as absent and removed lazily.
func (c *Cache) Get(key string) (*Payload, bool) {
	now := time.Now()

	c.mu.RLock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.RUnlock()
		return nil, false
	}
	expired := !e.expiresAt.IsZero() && now.After(e.expiresAt)
	payload := e.payload
	c.mu.RUnlock()

	if expired {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// replaced the entry since the read.
		if cur, ok := c.entries[key]; ok && !cur.expiresAt.IsZero() && now.After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	if cur, ok := c.entries[key]; ok {
		cur.lastAccessed = now
	}
	c.mu.Unlock()

	return payload, true
}

// Put stores a payload under key. A ttl of 0 applies the configured default;
// a negative ttl stores an already-expired entry (useful in tests). When the
// cache is at capacity and the key is new, the least recently accessed entry
// is evicted first.
func (c *Cache) Put(key string, payload *Payload, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictLRU()
		}
	}

	now := time.Now()
	c.entries[key] = &entry{
		payload:      payload,
		insertedAt:   now,
		lastAccessed: now,
		expiresAt:    now.Add(ttl),
	}
}

// Size returns the current number of entries, expired ones included.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the background sweep goroutine, if any.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.stopCh) })
}

// evictLRU removes the least recently accessed entry. Caller holds the write
// lock.
func (c *Cache) evictLRU() {
	var oldestKey string
	var oldestTime time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.lastAccessed.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.lastAccessed
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// sweep periodically removes expired entries to reclaim memory. Correctness
// does not depend on it; Get already treats expired entries as absent.
func (c *Cache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.entries {
				if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}
