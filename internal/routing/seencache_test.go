package routing

import (
	"context"
	"testing"
	"time"
)

func TestSeenCacheDedupsSecondSighting(t *testing.T) {
	c := NewSeenCache(time.Minute)

	if c.SeenOrRecord("a") {
		t.Fatal("first sighting should not be reported seen")
	}
	if !c.SeenOrRecord("a") {
		t.Fatal("second sighting should be reported seen")
	}
}

func TestSeenCacheExpiresAfterTTL(t *testing.T) {
	c := NewSeenCache(time.Millisecond)
	c.SeenOrRecord("a")
	time.Sleep(5 * time.Millisecond)

	if c.SeenOrRecord("a") {
		t.Fatal("expected entry to have expired and be treated as unseen")
	}
}

func TestSeenCacheSweepRemovesExpired(t *testing.T) {
	c := NewSeenCache(time.Millisecond)
	c.SeenOrRecord("a")
	time.Sleep(5 * time.Millisecond)

	if removed := c.Sweep(); removed != 1 {
		t.Fatalf("swept %d entries, want 1", removed)
	}
	if c.Count() != 0 {
		t.Fatalf("count = %d, want 0 after sweep", c.Count())
	}
}

func TestSeenCacheStartSweeperRemovesExpiredEntries(t *testing.T) {
	c := NewSeenCache(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	c.StartSweeper(ctx, time.Millisecond)
	c.SeenOrRecord("a")

	time.Sleep(10 * time.Millisecond)
	cancel()

	c.mu.Lock()
	remaining := len(c.entries)
	c.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected sweeper to have cleared expired entry, entries = %d", remaining)
	}
}
