package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := New(3, time.Minute)
	base := time.Now()

	for i := 0; i < 3; i++ {
		ok, remaining := l.Allow("c1", base.Add(time.Duration(i)*time.Second))
		if !ok {
			t.Fatalf("request %d should be admitted", i)
		}
		if remaining != 3-(i+1) {
			t.Fatalf("request %d: remaining = %d, want %d", i, remaining, 3-(i+1))
		}
	}

	ok, remaining := l.Allow("c1", base.Add(3*time.Second))
	if ok {
		t.Fatal("4th request within the window should be rejected")
	}
	if remaining != 0 {
		t.Fatalf("rejected request remaining = %d, want 0", remaining)
	}
}

func TestWindowRolls(t *testing.T) {
	l := New(3, time.Minute)
	base := time.Now()
	for i := 0; i < 3; i++ {
		l.Allow("c1", base.Add(time.Duration(i)*time.Second))
	}
	if ok, _ := l.Allow("c1", base.Add(61*time.Second)); !ok {
		t.Fatal("request after the window rolled should be admitted")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)
	now := time.Now()
	if ok, _ := l.Allow("a", now); !ok {
		t.Fatal("first request for key a should pass")
	}
	if ok, _ := l.Allow("b", now); !ok {
		t.Fatal("key b must not be throttled by key a")
	}
	if ok, _ := l.Allow("a", now); ok {
		t.Fatal("key a should now be throttled")
	}
}

func TestEvictIdle(t *testing.T) {
	l := New(10, time.Minute)
	base := time.Now()
	l.Allow("old", base)
	l.Allow("fresh", base.Add(59*time.Second))

	evicted := l.EvictIdle(base.Add(70 * time.Second))
	if evicted != 1 {
		t.Fatalf("evicted = %d, want 1", evicted)
	}
	if l.Keys() != 1 {
		t.Fatalf("keys = %d, want 1", l.Keys())
	}

	// The evicted key starts fresh.
	if ok, remaining := l.Allow("old", base.Add(71*time.Second)); !ok || remaining != 9 {
		t.Fatalf("re-admitted key: ok=%v remaining=%d", ok, remaining)
	}
}
