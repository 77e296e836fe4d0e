package session

import (
	"sync"
	"time"

	"github.com/muurk/camlight/internal/rpc"
)

// DefaultTTL is how long a session is reused before a fresh login
const DefaultTTL = 25 * time.Minute

// Session is an authenticated device session
type Session struct {
	ID        rpc.SessionID
	Cookie    string
	ExpiresAt time.Time
}

// Expired reports whether the session may no longer be used at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.ID = append(rpc.SessionID(nil), s.ID...)
	return &c
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// WithTTL overrides DefaultTTL
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// Cache holds at most one session. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	current *Session
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates an empty cache
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the lifetime given to stored sessions
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns a copy of the held session while it has not expired
func (c *Cache) Get() (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.Expired(c.now()) {
		return nil, false
	}
	return c.current.clone(), true
}

// Set stores a new session expiring TTL from now, replacing any held one.
// The stored session is returned.
func (c *Cache) Set(id rpc.SessionID, cookie string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = &Session{
		ID:        append(rpc.SessionID(nil), id...),
		Cookie:    cookie,
		ExpiresAt: c.now().Add(c.ttl),
	}
	return c.current.clone()
}

// Invalidate drops the held session unconditionally
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// Take removes and returns the held session, expired or not. It returns nil
// when the cache is empty.
func (c *Cache) Take() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.current
	c.current = nil
	return s
}
