package service

import (
	"testing"
	"time"
)

type countingRecorder struct{ hits, misses int }

func (r *countingRecorder) RecordCacheHit()          { r.hits++ }
func (r *countingRecorder) RecordCacheMiss()         { r.misses++ }
func (r *countingRecorder) RecordCacheInvalidation() {}

func TestPageCacheGet_KeepsEntryReplacedAfterExpiryCheck(t *testing.T) {
	rec := &countingRecorder{}
	c := NewPageCache(time.Minute, rec)
	c.Stop()

	t0 := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	now := t0
	c.now = func() time.Time { return now }
	key := PageKey{Path: "/dashboard/invoices", Query: "page=2"}
	c.Set(key, c.Generation(key.Path), []byte("old"))

	// The first clock read inside Get sees the old entry expired; a writer
	// stores a fresh rendering before Get takes the write lock.
	now = t0.Add(2 * time.Minute)
	replaced := false
	c.now = func() time.Time {
		if !replaced {
			replaced = true
			c.Set(key, c.Generation(key.Path), []byte("fresh"))
		}
		return now
	}

	body, ok := c.Get(key)
	if !ok || string(body) != "fresh" {
		t.Fatalf("expected the fresh rendering, got %q %v", body, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("fresh entry must not be deleted, got %d entries", c.Len())
	}
	if rec.hits != 1 || rec.misses != 0 {
		t.Fatalf("expected 1 hit and 0 misses, got %d and %d", rec.hits, rec.misses)
	}
}
