package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"pgregory.net/rapid"
)

// =============================================================================
// Generators for property-based testing
// =============================================================================

func clientGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`10\.0\.[0-9]{1,3}\.[0-9]{1,3}`)
}

// =============================================================================
// Property: Requests within burst succeed
// =============================================================================

func testRateLimiter_RequestsWithinBurst(t *rapid.T) {
	config := Config{RPS: 1, Burst: rapid.IntRange(1, 100).Draw(t, "burst"), CleanupInterval: time.Hour}
	rl := NewRateLimiter(config)
	defer rl.Stop()

	client := clientGenerator().Draw(t, "client")
	n := rapid.IntRange(1, config.Burst).Draw(t, "requests")
	for i := range n {
		if !rl.Allow(client) {
			t.Fatalf("request %d of %d should be allowed within burst %d", i+1, n, config.Burst)
		}
	}
}

func TestRateLimiter_RequestsWithinBurst(t *testing.T) {
	rapid.Check(t, testRateLimiter_RequestsWithinBurst)
}

// =============================================================================
// Property: Requests over burst are rejected
// =============================================================================

func testRateLimiter_OverBurstRejected(t *rapid.T) {
	burst := rapid.IntRange(1, 50).Draw(t, "burst")
	// A near-zero rate so no token refills during the test.
	rl := NewRateLimiter(Config{RPS: 0.001, Burst: burst, CleanupInterval: time.Hour})
	defer rl.Stop()

	client := clientGenerator().Draw(t, "client")
	for range burst {
		rl.Allow(client)
	}
	if rl.Allow(client) {
		t.Fatalf("request past burst %d should be rejected", burst)
	}
}

func TestRateLimiter_OverBurstRejected(t *testing.T) {
	rapid.Check(t, testRateLimiter_OverBurstRejected)
}

// =============================================================================
// Property: Clients are isolated
// =============================================================================

func testRateLimiter_ClientsIsolated(t *rapid.T) {
	rl := NewRateLimiter(Config{RPS: 0.001, Burst: 1, CleanupInterval: time.Hour})
	defer rl.Stop()

	a := clientGenerator().Draw(t, "a")
	b := clientGenerator().Filter(func(s string) bool { return s != a }).Draw(t, "b")

	if !rl.Allow(a) {
		t.Fatal("first request from a should be allowed")
	}
	if rl.Allow(a) {
		t.Fatal("second request from a should be rejected")
	}
	if !rl.Allow(b) {
		t.Fatal("b must not be limited by a's usage")
	}
}

func TestRateLimiter_ClientsIsolated(t *testing.T) {
	rapid.Check(t, testRateLimiter_ClientsIsolated)
}

// =============================================================================
// Unit tests
// =============================================================================

func TestRateLimiter_SameLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(DefaultConfig)
	defer rl.Stop()

	if rl.GetLimiter("10.0.0.1") != rl.GetLimiter("10.0.0.1") {
		t.Fatal("expected the same limiter for repeat lookups")
	}
	if rl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rl.Len())
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(Config{RPS: 1, Burst: 1, CleanupInterval: 50 * time.Millisecond})
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.2")
	time.Sleep(80 * time.Millisecond)
	rl.Cleanup()

	if rl.Len() != 0 {
		t.Fatalf("Len() after cleanup = %d, want 0", rl.Len())
	}
}

func TestRateLimiter_ClampsConfig(t *testing.T) {
	rl := NewRateLimiter(Config{RPS: 1})
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") {
		t.Fatal("a zero burst should still admit one request")
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(Config{RPS: 0.001, Burst: 25, CleanupInterval: time.Hour})
	defer rl.Stop()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("10.0.0.1") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 25 {
		t.Fatalf("allowed = %d, want 25", got)
	}
}

func TestRateLimiter_StopEndsCleanupLoop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	rl := NewRateLimiter(Config{RPS: 1, Burst: 1, CleanupInterval: time.Millisecond})
	rl.Allow("10.0.0.1")
	rl.Stop()
}

// =============================================================================
// Middleware
// =============================================================================

func TestMiddleware(t *testing.T) {
	rl := NewRateLimiter(Config{RPS: 0.001, Burst: 2, CleanupInterval: time.Hour})
	defer rl.Stop()

	h := Middleware(rl, ClientIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("10.0.0.1:5000"); rec.Code != http.StatusOK || rec.Header().Get("X-RateLimit-Remaining") != "1" {
		t.Fatalf("first: code=%d remaining=%q", rec.Code, rec.Header().Get("X-RateLimit-Remaining"))
	}
	// Different port, same client.
	if rec := do("10.0.0.1:5001"); rec.Code != http.StatusOK {
		t.Fatalf("second: code=%d", rec.Code)
	}
	rec := do("10.0.0.1:5002")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third: code=%d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" || rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("429 headers: %v", rec.Header())
	}
	if rec := do("10.0.0.2:5000"); rec.Code != http.StatusOK {
		t.Fatalf("other client: code=%d", rec.Code)
	}
}

func TestMiddleware_EmptyKeyNotLimited(t *testing.T) {
	rl := NewRateLimiter(Config{RPS: 0.001, Burst: 1, CleanupInterval: time.Hour})
	defer rl.Stop()

	h := Middleware(rl, func(*http.Request) string { return "" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code=%d, want 204", rec.Code)
		}
	}
	if rl.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", rl.Len())
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:8080"
	if got := ClientIP(req); got != "::1" {
		t.Fatalf("ClientIP = %q, want ::1", got)
	}
	req.RemoteAddr = "pipe"
	if got := ClientIP(req); got != "pipe" {
		t.Fatalf("ClientIP = %q, want pipe", got)
	}
}
