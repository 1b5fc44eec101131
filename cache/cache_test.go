package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/use-agent/spamsum/spamsum"
)

var testSig = spamsum.Signature{Blocksize: 3, Left: "Y0ujLEEz6KxMENJv", Right: "Y0u3tz68/v"}

// newTestCache returns a cache whose clock is controlled by the test.
func newTestCache(t *testing.T, maxEntries int, ttl time.Duration) (*Cache, *time.Time) {
	t.Helper()
	c := New(maxEntries, ttl)
	t.Cleanup(c.Close)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestKey(t *testing.T) {
	base := Key([]byte("doc"), "raw", "", 0)

	if Key([]byte("doc"), "raw", "", 0) != base {
		t.Error("Key is not deterministic")
	}
	for name, other := range map[string]string{
		"content":   Key([]byte("doc2"), "raw", "", 0),
		"format":    Key([]byte("doc"), "text", "", 0),
		"selector":  Key([]byte("doc"), "raw", "p", 0),
		"blocksize": Key([]byte("doc"), "raw", "", 6),
	} {
		if other == base {
			t.Errorf("changing %s did not change the key", name)
		}
	}
}

func TestCache_GetSet(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Hour)

	if _, ok := c.Get("k"); ok {
		t.Fatal("empty cache reported a hit")
	}

	c.Set("k", testSig)
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if got != testSig {
		t.Errorf("Get = %v, want %v", got, testSig)
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Entries != 1 || st.MaxEntries != 10 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestCache_Expiry(t *testing.T) {
	c, now := newTestCache(t, 10, time.Minute)

	c.Set("k", testSig)
	*now = now.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired early")
	}

	*now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry was returned")
	}

	c.evictExpired()
	if c.Len() != 0 {
		t.Errorf("Len after eviction = %d, want 0", c.Len())
	}
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c, _ := newTestCache(t, 2, time.Hour)

	c.Set("a", testSig)
	c.Set("b", testSig)
	c.Set("b", testSig) // overwrite does not evict
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}

	c.Set("c", testSig)
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest entry was evicted")
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := New(50, time.Hour)
	defer c.Close()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 200 {
				key := Key([]byte{byte(i), byte(j)}, "raw", "", 0)
				c.Set(key, testSig)
				c.Get(key)
			}
		}()
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}

func TestCache_CloseTwice(t *testing.T) {
	c := New(1, time.Hour)
	c.Close()
	c.Close()
}
