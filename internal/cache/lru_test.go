package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected 1, got %v (ok=%v)", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss")
	}
	c.Delete("a")
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewLRUCache[int](2, time.Minute, WithEvictCallback(func(k string, _ int) { evicted = append(evicted, k) }))
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should still be cached")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("unexpected evictions %v", evicted)
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute, WithClock[string](clock.now))
	c.Set("k", "v")

	clock.advance(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("entry should be alive before ttl")
	}
	clock.advance(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestLRUCache_SlidingExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute, WithClock[string](clock.now), WithSlidingExpiry[string]())
	c.Set("session", "u1")

	for i := 0; i < 5; i++ {
		clock.advance(50 * time.Second)
		if _, ok := c.Get("session"); !ok {
			t.Fatalf("sliding entry expired on iteration %d", i)
		}
	}
	clock.advance(61 * time.Second)
	if _, ok := c.Get("session"); ok {
		t.Fatalf("idle entry should expire")
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Minute, WithClock[int](clock.now))
	c.Set("a", 1)
	c.Set("b", 2)
	clock.advance(30 * time.Second)
	c.Set("c", 3)
	clock.advance(45 * time.Second)

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("expected 1 remaining, got %d", c.Size())
	}
}

func TestManager_CleanNow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Second, WithClock[int](clock.now))
	c.Set("a", 1)
	clock.advance(2 * time.Second)

	m := NewManager()
	m.Register("sessions", c)
	got := m.CleanNow()
	if got["sessions"] != 1 {
		t.Fatalf("expected 1 removed from sessions, got %v", got)
	}
	m.Stop()
}

func TestManager_StartStop(t *testing.T) {
	m := NewManager()
	m.Register("x", NewLRUCache[int](1, time.Minute))
	m.StartCleanup(10 * time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	m.Stop()
	m.Stop()
}
