package cache

import (
	"testing"
	"time"

	"tracker/internal/log"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok { // a is now the most recent
		t.Fatal("expected a")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "x")
	c.Set("b", "y")

	now = now.Add(30 * time.Second)
	c.Get("a") // refreshes a

	now = now.Add(45 * time.Second)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have expired")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a was touched and should still be live")
	}

	now = now.Add(2 * time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
}

func TestLRUCache_GetOrCreate(t *testing.T) {
	c := NewLRUCache[*int](4, time.Minute)
	calls := 0
	create := func() *int { calls++; v := calls; return &v }

	first := c.GetOrCreate("k", create)
	second := c.GetOrCreate("k", create)
	if first != second || calls != 1 {
		t.Fatalf("expected one creation, got %d (same=%v)", calls, first == second)
	}

	c.Delete("k")
	if third := c.GetOrCreate("k", create); third == first || calls != 2 {
		t.Fatal("expected a fresh entry after Delete")
	}
}

func TestManager_Sweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewLRUCache[int](10, time.Second)
	a.now = func() time.Time { return now }
	a.Set("x", 1)
	a.Set("y", 2)

	m := NewManager(log.Discard())
	m.Register(a)
	now = now.Add(time.Minute)

	if n := m.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
