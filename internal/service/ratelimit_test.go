package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/acme-invoices/internal/service"
	"golang.org/x/time/rate"
)

func newTestLimiter(t *testing.T, limit rate.Limit, burst int) *service.LoginLimiter {
	t.Helper()
	l := service.NewLoginLimiter(limit, burst, time.Hour)
	t.Cleanup(l.Stop)
	return l
}

func TestLoginLimiter_AllowsUpToBurst(t *testing.T) {
	l := newTestLimiter(t, 1, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("test-key") {
			t.Fatalf("attempt %d should be allowed (burst not yet spent)", i+1)
		}
	}

	if l.Allow("test-key") {
		t.Fatal("4th attempt should be denied")
	}
}

func TestLoginLimiter_DifferentKeysAreIndependent(t *testing.T) {
	l := newTestLimiter(t, 1, 1)

	if !l.Allow("ip-a") {
		t.Fatal("ip-a first attempt should be allowed")
	}
	if l.Allow("ip-a") {
		t.Fatal("ip-a second attempt should be denied")
	}
	if !l.Allow("ip-b") {
		t.Fatal("ip-b first attempt should be allowed (independent limiter)")
	}
}

func TestLoginLimiter_ZeroRateNeverRefills(t *testing.T) {
	l := newTestLimiter(t, 0, 2)

	if !l.Allow("k") {
		t.Fatal("first attempt should be allowed")
	}
	if !l.Allow("k") {
		t.Fatal("second attempt should be allowed")
	}
	if l.Allow("k") {
		t.Fatal("third attempt should be denied (no refill)")
	}
}

func TestLoginLimiter_SweepsIdleKeys(t *testing.T) {
	l := service.NewLoginLimiter(1, 1, 10*time.Millisecond)
	defer l.Stop()

	l.Allow("idle")
	deadline := time.Now().Add(2 * time.Second)
	for l.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("idle key was not swept")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoginLimiter_StopTwice(t *testing.T) {
	l := service.NewLoginLimiter(1, 1, time.Minute)
	l.Stop()
	l.Stop()
}

func TestPerMinute(t *testing.T) {
	if got := service.PerMinute(60); got != rate.Limit(1) {
		t.Fatalf("PerMinute(60) = %v, want 1", got)
	}
}
