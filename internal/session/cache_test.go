package session

import (
	"testing"
	"time"

	"github.com/muurk/camlight/internal/rpc"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewCache(WithClock(clock.Now)), clock
}

func TestCache_EmptyGet(t *testing.T) {
	cache, _ := newTestCache()
	if s, ok := cache.Get(); ok || s != nil {
		t.Errorf("Get() on empty cache = %v, %v", s, ok)
	}
}

func TestCache_TTLBoundary(t *testing.T) {
	cache, clock := newTestCache()
	stored := cache.Set(rpc.NewSessionID("S2"), "WebClientSessionID=S2")

	if !stored.ExpiresAt.Equal(clock.now.Add(25 * time.Minute)) {
		t.Errorf("ExpiresAt = %v, want T+25m", stored.ExpiresAt)
	}

	clock.Advance(24*time.Minute + 59*time.Second)
	s, ok := cache.Get()
	if !ok {
		t.Fatal("Get() at T+24:59 should return the session")
	}
	if s.ID.String() != "S2" || s.Cookie != "WebClientSessionID=S2" || !s.ExpiresAt.Equal(stored.ExpiresAt) {
		t.Errorf("Get() at T+24:59 = %+v, want unchanged", s)
	}

	clock.Advance(2 * time.Second)
	if _, ok := cache.Get(); ok {
		t.Error("Get() at T+25:01 should return nothing")
	}
}

func TestCache_ExpiresExactlyAtTTL(t *testing.T) {
	cache, clock := newTestCache()
	cache.Set(rpc.NewSessionID("S1"), "")

	clock.Advance(DefaultTTL)
	if _, ok := cache.Get(); ok {
		t.Error("session should not be returned at now == expiresAt")
	}
}

func TestCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache()
	cache.Set(rpc.NewSessionID("S1"), "c")
	cache.Invalidate()

	if _, ok := cache.Get(); ok {
		t.Error("Get() after Invalidate() should return nothing")
	}
	if cache.Take() != nil {
		t.Error("Take() after Invalidate() should return nil")
	}
}

func TestCache_Take(t *testing.T) {
	cache, clock := newTestCache()
	cache.Set(rpc.NewSessionID("S1"), "c")
	clock.Advance(time.Hour)

	s := cache.Take()
	if s == nil || s.ID.String() != "S1" {
		t.Fatalf("Take() = %v, want expired S1", s)
	}
	if cache.Take() != nil {
		t.Error("second Take() should return nil")
	}
}

func TestCache_SetReplaces(t *testing.T) {
	cache, _ := newTestCache()
	cache.Set(rpc.NewSessionID("S1"), "one")
	cache.Set(rpc.NewSessionID("S2"), "two")

	s, ok := cache.Get()
	if !ok || s.ID.String() != "S2" || s.Cookie != "two" {
		t.Errorf("Get() = %+v, want S2", s)
	}
}

func TestCache_GetReturnsCopy(t *testing.T) {
	cache, _ := newTestCache()
	cache.Set(rpc.NewSessionID("S1"), "c")

	s, _ := cache.Get()
	s.Cookie = "changed"
	s.ID[1] = 'X'

	again, _ := cache.Get()
	if again.Cookie != "c" || again.ID.String() != "S1" {
		t.Errorf("cached session was modified through a copy: %+v", again)
	}
}

func TestCache_WithTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cache := NewCache(WithClock(clock.Now), WithTTL(time.Minute))
	if cache.TTL() != time.Minute {
		t.Errorf("TTL() = %v", cache.TTL())
	}

	cache.Set(rpc.NewSessionID("S1"), "")
	clock.Advance(61 * time.Second)
	if _, ok := cache.Get(); ok {
		t.Error("session should expire after the custom TTL")
	}
}

func TestCache_NumericSessionID(t *testing.T) {
	cache, _ := newTestCache()
	cache.Set(rpc.SessionID("1234567"), "")

	s, ok := cache.Get()
	if !ok || string(s.ID) != "1234567" {
		t.Errorf("numeric id should be kept verbatim, got %s", s.ID)
	}
}
