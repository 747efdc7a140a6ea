package service_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/msomdec/acme-invoices/internal/service"
)

func TestPageCache_HitAndMiss(t *testing.T) {
	rec := newFakeRecorder()
	c := service.NewPageCache(time.Minute, rec)
	t.Cleanup(c.Stop)
	key := service.PageKey{Path: "/dashboard/invoices", Query: "page=2"}

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set(key, c.Generation(key.Path), []byte("page two"))

	body, ok := c.Get(key)
	if !ok || string(body) != "page two" {
		t.Fatalf("expected hit with stored body, got %q %v", body, ok)
	}
	if rec.hits != 1 || rec.misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d and %d", rec.hits, rec.misses)
	}
}

func TestPageCache_InvalidatePathDropsAllQueries(t *testing.T) {
	rec := newFakeRecorder()
	c := service.NewPageCache(time.Minute, rec)
	t.Cleanup(c.Stop)
	gen := c.Generation("/dashboard/invoices")
	c.Set(service.PageKey{Path: "/dashboard/invoices", Query: ""}, gen, []byte("a"))
	c.Set(service.PageKey{Path: "/dashboard/invoices", Query: "query=lee"}, gen, []byte("b"))
	c.Set(service.PageKey{Path: "/dashboard/customers", Query: ""}, c.Generation("/dashboard/customers"), []byte("c"))

	c.InvalidatePath("/dashboard/invoices")

	if c.Len() != 1 {
		t.Fatalf("expected 1 entry left, got %d", c.Len())
	}
	if _, ok := c.Get(service.PageKey{Path: "/dashboard/customers"}); !ok {
		t.Fatal("other paths must survive invalidation")
	}
	if rec.invalids != 1 {
		t.Fatalf("expected 1 invalidation recorded, got %d", rec.invalids)
	}
}

func TestPageCache_StaleRenderIsDiscarded(t *testing.T) {
	c := service.NewPageCache(time.Minute, newFakeRecorder())
	t.Cleanup(c.Stop)
	key := service.PageKey{Path: "/dashboard/invoices"}

	gen := c.Generation(key.Path)
	c.InvalidatePath(key.Path)
	c.Set(key, gen, []byte("rendered before invalidation"))

	if _, ok := c.Get(key); ok {
		t.Fatal("render from an older generation must not be stored")
	}
}

func TestPageCache_Expiry(t *testing.T) {
	c := service.NewPageCache(time.Millisecond, newFakeRecorder())
	t.Cleanup(c.Stop)
	key := service.PageKey{Path: "/dashboard/invoices"}
	c.Set(key, c.Generation(key.Path), []byte("x"))

	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Fatal("expected entry to expire")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry removed, got %d", c.Len())
	}
}

func TestPageCache_SweepRemovesExpiredEntries(t *testing.T) {
	c := service.NewPageCache(time.Millisecond, newFakeRecorder())
	t.Cleanup(c.Stop)
	for i := range 1000 {
		path := "/dashboard/invoices"
		if i%2 == 0 {
			path = "/dashboard/customers"
		}
		c.Set(service.PageKey{Path: path, Query: "query=" + strconv.Itoa(i)}, c.Generation(path), []byte("x"))
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected expired entries to be swept without reads, %d left", c.Len())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPageCache_CapsEntriesPerPath(t *testing.T) {
	c := service.NewPageCache(time.Minute, newFakeRecorder())
	t.Cleanup(c.Stop)
	path := "/dashboard/invoices"
	for i := range 600 {
		c.Set(service.PageKey{Path: path, Query: "page=" + strconv.Itoa(i)}, c.Generation(path), []byte("x"))
	}
	if c.Len() != 512 {
		t.Fatalf("expected 512 entries for one path, got %d", c.Len())
	}

	// Existing keys can still be refreshed when the path is full.
	key := service.PageKey{Path: path, Query: "page=0"}
	c.Set(key, c.Generation(path), []byte("refreshed"))
	if body, ok := c.Get(key); !ok || string(body) != "refreshed" {
		t.Fatalf("expected refreshed body, got %q %v", body, ok)
	}

	// Other paths have their own allowance.
	other := service.PageKey{Path: "/dashboard/customers"}
	c.Set(other, c.Generation(other.Path), []byte("y"))
	if _, ok := c.Get(other); !ok {
		t.Fatal("a full path must not block other paths")
	}
}

func TestPageCache_StopTwice(t *testing.T) {
	c := service.NewPageCache(time.Millisecond, newFakeRecorder())
	c.Stop()
	c.Stop()

	zero := service.NewPageCache(0, newFakeRecorder())
	zero.Stop()
}
