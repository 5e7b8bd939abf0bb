package thumbcache

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// value64 is a payload whose estimated size is a round number:
// 48 raw bytes estimate to exactly 64.
func value64() string {
	return strings.Repeat("x", 48)
}

func TestEstimateSize(t *testing.T) {
	tests := []struct {
		rawLen int
		want   int64
	}{
		{0, 0},
		{1, 2},
		{3, 4},
		{48, 64},
		{100, 134},
	}
	for _, tt := range tests {
		if got := estimateSize(tt.rawLen); got != tt.want {
			t.Errorf("estimateSize(%d) = %d, want %d", tt.rawLen, got, tt.want)
		}
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	c := New(1024, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache reported a hit")
	}

	c.Set("a", "payload")
	got, ok := c.Get("a")
	if !ok {
		t.Fatal("Get after Set reported a miss")
	}
	if got != "payload" {
		t.Errorf("Get returned %q, want %q", got, "payload")
	}
}

func TestExpiredEntryIsEvictedOnGet(t *testing.T) {
	c := New(1024, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("a", "payload")

	// Advance past the TTL; the entry is physically present but must be
	// treated as absent and swept.
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry returned as a hit")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not swept, Len() = %d", c.Len())
	}
	if c.Size() != 0 {
		t.Errorf("size not released on expiry, Size() = %d", c.Size())
	}
}

func TestReadRefreshesRecency(t *testing.T) {
	c := New(1024, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("a", "payload")

	// Touch just inside the TTL, then advance again: the refreshed
	// timestamp keeps the entry alive.
	now = now.Add(50 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry expired before TTL")
	}
	now = now.Add(50 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Error("read did not refresh recency")
	}
}

func TestCapacityEvictionOldestFirst(t *testing.T) {
	// Capacity for exactly three 64-byte entries.
	c := New(192, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), value64())
		now = now.Add(time.Second)
	}

	// Touch k0 so k1 becomes the least recently used.
	if _, ok := c.Get("k0"); !ok {
		t.Fatal("k0 missing before eviction")
	}
	now = now.Add(time.Second)

	c.Set("k3", value64())

	if c.Has("k1") {
		t.Error("least recently used entry k1 survived eviction")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if !c.Has(key) {
			t.Errorf("expected %s to survive eviction", key)
		}
	}
	if c.Size() > 192 {
		t.Errorf("Size() = %d exceeds capacity 192", c.Size())
	}
}

func TestEvictionSequenceKeepsMostRecent(t *testing.T) {
	// Insert well past capacity; survivors must be exactly the most
	// recently used suffix and the size bound must hold.
	c := New(256, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("k%d", i), value64())
		now = now.Add(time.Second)
	}

	if c.Size() > 256 {
		t.Errorf("Size() = %d exceeds capacity 256", c.Size())
	}
	for i := 0; i < 6; i++ {
		if c.Has(fmt.Sprintf("k%d", i)) {
			t.Errorf("stale entry k%d retained", i)
		}
	}
	for i := 6; i < 10; i++ {
		if !c.Has(fmt.Sprintf("k%d", i)) {
			t.Errorf("recent entry k%d evicted", i)
		}
	}
}

func TestOversizedEntryStillStored(t *testing.T) {
	c := New(64, time.Minute)

	big := strings.Repeat("x", 1024)
	c.Set("big", big)

	got, ok := c.Get("big")
	if !ok {
		t.Fatal("oversized entry was not stored")
	}
	if got != big {
		t.Error("oversized entry corrupted")
	}
	if c.Size() != estimateSize(len(big)) {
		t.Errorf("Size() = %d, want %d", c.Size(), estimateSize(len(big)))
	}
}

func TestSetReplacesExistingKey(t *testing.T) {
	c := New(1024, time.Minute)

	c.Set("a", value64())
	c.Set("a", "short")

	if c.Len() != 1 {
		t.Errorf("Len() = %d after replacing a key, want 1", c.Len())
	}
	if c.Size() != estimateSize(5) {
		t.Errorf("Size() = %d, want %d", c.Size(), estimateSize(5))
	}
	got, _ := c.Get("a")
	if got != "short" {
		t.Errorf("Get returned %q after replacement", got)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := New(1024, time.Minute)

	c.Set("a", "one")
	c.Set("b", "two")

	c.Remove("a")
	if c.Has("a") {
		t.Error("removed entry still present")
	}
	if c.Size() != estimateSize(3) {
		t.Errorf("Size() = %d after Remove, want %d", c.Size(), estimateSize(3))
	}

	// Removing an absent key is a no-op.
	c.Remove("nope")

	c.Clear()
	if c.Len() != 0 || c.Size() != 0 {
		t.Errorf("Clear left Len=%d Size=%d", c.Len(), c.Size())
	}
}

// TestSizeInvariant drives a pseudo-random mutation sequence and verifies
// after every step that the running size total equals the sum of the live
// entries' estimates.
func TestSizeInvariant(t *testing.T) {
	c := New(512, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	checkInvariant := func(step int) {
		t.Helper()
		c.mu.Lock()
		var sum int64
		for _, elem := range c.entries {
			sum += elem.Value.(*entry).size
		}
		size := c.size
		c.mu.Unlock()
		if size != sum {
			t.Fatalf("step %d: size total %d != sum of entries %d", step, size, sum)
		}
	}

	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("k%d", i%13)
		switch i % 5 {
		case 0, 1, 2:
			c.Set(key, strings.Repeat("v", (i*37)%200))
		case 3:
			c.Get(key)
		case 4:
			c.Remove(key)
		}
		now = now.Add(time.Second)
		checkInvariant(i)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(4096, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (n+j)%17)
				c.Set(key, value64())
				c.Get(key)
				if j%10 == 0 {
					c.Remove(key)
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Size() < 0 {
		t.Errorf("negative size after concurrent use: %d", c.Size())
	}
}

func TestDefaults(t *testing.T) {
	c := New(0, 0)
	if c.maxBytes != DefaultMaxBytes {
		t.Errorf("default capacity = %d, want %d", c.maxBytes, DefaultMaxBytes)
	}
	if c.ttl != DefaultTTL {
		t.Errorf("default TTL = %v, want %v", c.ttl, DefaultTTL)
	}
}
