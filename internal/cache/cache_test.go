package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opensource-finance/defaultdesk/internal/domain"
)

// fakeClock is a settable time source for expiry tests.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) now() time.Time         { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func withClock(c *LRUCache, f *fakeClock) *LRUCache {
	c.now = f.now
	return c
}

func mustGet(t *testing.T, c domain.Store, key string) []byte {
	t.Helper()
	val, err := c.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return val
}

func TestLRUCache(t *testing.T) {
	ctx := context.Background()

	t.Run("SetGetDelete", func(t *testing.T) {
		c := NewLRUCache("local", 10)

		if err := c.Set(ctx, domain.RiskCategoriesKey, []byte(`[{"id":"financial"}]`), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if got := mustGet(t, c, domain.RiskCategoriesKey); string(got) != `[{"id":"financial"}]` {
			t.Errorf("unexpected value %q", got)
		}

		if err := c.Delete(ctx, domain.RiskCategoriesKey); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if got := mustGet(t, c, domain.RiskCategoriesKey); got != nil {
			t.Errorf("expected nil after delete, got %q", got)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		c := NewLRUCache("local", 10)
		_ = c.Set(ctx, "k", []byte("v1"), 0)
		_ = c.Set(ctx, "k", []byte("v2"), 0)

		if got := mustGet(t, c, "k"); string(got) != "v2" {
			t.Errorf("expected v2, got %q", got)
		}
		if s := c.Stats(); s.Size != 1 {
			t.Errorf("expected one entry, got %d", s.Size)
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		clock := newFakeClock()
		c := withClock(NewLRUCache("local", 10), clock)

		_ = c.Set(ctx, "session", []byte("temp"), time.Minute)
		_ = c.Set(ctx, "pinned", []byte("keep"), 0)

		clock.advance(59 * time.Second)
		if mustGet(t, c, "session") == nil {
			t.Error("expected value before expiry")
		}

		clock.advance(2 * time.Second)
		if got := mustGet(t, c, "session"); got != nil {
			t.Errorf("expected nil after expiry, got %q", got)
		}

		clock.advance(24 * time.Hour)
		if got := mustGet(t, c, "pinned"); string(got) != "keep" {
			t.Errorf("zero ttl entry expired: %q", got)
		}
	})

	t.Run("EvictsLeastRecentlyUsed", func(t *testing.T) {
		c := NewLRUCache("local", 3)
		for _, k := range []string{"financial", "identity", "property"} {
			_ = c.Set(ctx, k, []byte(k), 0)
		}

		mustGet(t, c, "financial")
		_ = c.Set(ctx, "contactability", []byte("contactability"), 0)

		if mustGet(t, c, "identity") != nil {
			t.Error("expected identity to be evicted")
		}
		if mustGet(t, c, "financial") == nil {
			t.Error("expected financial to survive")
		}
		if s := c.Stats(); s.Evictions != 1 || s.Size != 3 {
			t.Errorf("unexpected stats %+v", s)
		}
	})

	t.Run("NamespaceIsolation", func(t *testing.T) {
		a := NewLRUCache("desk-a", 10)
		_ = a.Set(ctx, "k", []byte("a"), 0)

		if got := mustGet(t, a, "k"); string(got) != "a" {
			t.Errorf("unexpected value %q", got)
		}
		if key := a.scoped("k"); key != "desk-a:k" {
			t.Errorf("unexpected scoped key %q", key)
		}
	})

	t.Run("RequiresKey", func(t *testing.T) {
		c := NewLRUCache("local", 10)
		if err := c.Set(ctx, "", []byte("v"), 0); !errors.Is(err, errKeyRequired) {
			t.Errorf("Set: expected errKeyRequired, got %v", err)
		}
		if _, err := c.Get(ctx, ""); !errors.Is(err, errKeyRequired) {
			t.Errorf("Get: expected errKeyRequired, got %v", err)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		c := NewLRUCache("local", 50)
		_ = c.Set(ctx, "k1", []byte("v1"), 0)
		_ = c.Set(ctx, "k2", []byte("v2"), 0)
		mustGet(t, c, "k1")
		mustGet(t, c, "missing")

		want := Stats{Size: 2, Capacity: 50, Hits: 1, Misses: 1}
		if got := c.Stats(); got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("CloseClears", func(t *testing.T) {
		c := NewLRUCache("local", 10)
		_ = c.Set(ctx, "k", []byte("v"), 0)

		if err := c.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if mustGet(t, c, "k") != nil {
			t.Error("expected cache to be empty after close")
		}
		if err := c.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}

func TestTwoPhaseCache(t *testing.T) {
	ctx := context.Background()

	t.Run("WritesBothLayers", func(t *testing.T) {
		local, remote := NewLRUCache("local", 10), NewLRUCache("remote", 10)
		c := newTwoPhase(local, remote, time.Minute)

		if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if got := mustGet(t, local, "k"); string(got) != "v" {
			t.Errorf("L1 holds %q", got)
		}
		if got := mustGet(t, remote, "k"); string(got) != "v" {
			t.Errorf("L2 holds %q", got)
		}
	})

	t.Run("FillsL1FromL2", func(t *testing.T) {
		local, remote := NewLRUCache("local", 10), NewLRUCache("remote", 10)
		c := newTwoPhase(local, remote, time.Minute)

		_ = remote.Set(ctx, "k", []byte("from-l2"), 0)

		if got := mustGet(t, c, "k"); string(got) != "from-l2" {
			t.Errorf("expected from-l2, got %q", got)
		}
		if got := mustGet(t, local, "k"); string(got) != "from-l2" {
			t.Error("expected L1 to be filled after an L2 hit")
		}
		if s := c.Stats(); s.Size != 1 {
			t.Errorf("expected one L1 entry, got %d", s.Size)
		}
	})

	t.Run("L1ExpiresBeforeL2", func(t *testing.T) {
		clock := newFakeClock()
		local, remote := withClock(NewLRUCache("local", 10), clock), NewLRUCache("remote", 10)
		c := newTwoPhase(local, remote, 30*time.Second)

		_ = c.Set(ctx, "k", []byte("v1"), 0)
		_ = remote.Set(ctx, "k", []byte("v2"), 0) // another replica's write

		if got := mustGet(t, c, "k"); string(got) != "v1" {
			t.Errorf("expected stale L1 value v1, got %q", got)
		}

		clock.advance(31 * time.Second)
		if got := mustGet(t, c, "k"); string(got) != "v2" {
			t.Errorf("expected v2 after L1 expiry, got %q", got)
		}
	})

	t.Run("DeleteAndPing", func(t *testing.T) {
		c := newTwoPhase(NewLRUCache("local", 10), NewLRUCache("remote", 10), 0)
		if c.l1TTL != 5*time.Minute {
			t.Errorf("expected default L1 ttl, got %s", c.l1TTL)
		}
		_ = c.Set(ctx, "k", []byte("v"), 0)

		if err := c.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if mustGet(t, c, "k") != nil {
			t.Error("expected nil after delete")
		}
		if err := c.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
		if err := c.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.CacheConfig
		wantNil bool
		wantErr bool
	}{
		{name: "memory", cfg: domain.CacheConfig{Type: "memory", LocalMaxSize: 100}},
		{name: "none", cfg: domain.CacheConfig{Type: "none"}, wantNil: true},
		{name: "empty", cfg: domain.CacheConfig{}, wantNil: true},
		{name: "unsupported", cfg: domain.CacheConfig{Type: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg, "local")
			switch {
			case tt.wantErr:
				if err == nil {
					t.Fatal("expected error")
				}
			case err != nil:
				t.Fatalf("New failed: %v", err)
			case tt.wantNil:
				if c != nil {
					t.Errorf("expected nil cache, got %T", c)
				}
			default:
				defer c.Close()
				if _, ok := c.(*LRUCache); !ok {
					t.Errorf("expected *LRUCache, got %T", c)
				}
			}
		})
	}
}
