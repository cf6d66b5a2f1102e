package utils

import (
	"testing"
	"time"
)

func TestMessageWindowEviction(t *testing.T) {
	window := NewMessageWindow(30 * time.Second)
	now := time.Now()
	window.Observe("a", now, 3)
	window.Observe("b", now.Add(10*time.Second), 3)
	window.Observe("c", now.Add(45*time.Second), 3)
	if got := window.Len(); got != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", got)
	}
	if age := window.OldestAge(now.Add(45 * time.Second)); age > 30*time.Second {
		t.Fatalf("oldest entry exceeds window: %s", age)
	}
}

func TestMessageWindowRepeatDetection(t *testing.T) {
	window := NewMessageWindow(30 * time.Second)
	now := time.Now()
	if window.Observe("hi", now, 3) {
		t.Fatalf("unexpected violation on first message")
	}
	if window.Observe("hi", now.Add(time.Second), 3) {
		t.Fatalf("unexpected violation on second message")
	}
	if !window.Observe("hi", now.Add(2*time.Second), 3) {
		t.Fatalf("expected violation on third identical message")
	}
}

func TestMessageWindowInterruptedStreak(t *testing.T) {
	window := NewMessageWindow(30 * time.Second)
	now := time.Now()
	window.Observe("hi", now, 3)
	window.Observe("hi", now.Add(time.Second), 3)
	window.Observe("other", now.Add(2*time.Second), 3)
	if window.Observe("hi", now.Add(3*time.Second), 3) {
		t.Fatalf("interrupted streak must not trigger")
	}
}

func TestMessageWindowWhitespaceOnly(t *testing.T) {
	window := NewMessageWindow(30 * time.Second)
	now := time.Now()
	window.Observe("   ", now, 3)
	window.Observe("   ", now.Add(time.Second), 3)
	if window.Observe("   ", now.Add(2*time.Second), 3) {
		t.Fatalf("whitespace-only repeats must not trigger")
	}
}

func TestMessageWindowClearResetsStreak(t *testing.T) {
	window := NewMessageWindow(30 * time.Second)
	now := time.Now()
	window.Observe("hi", now, 3)
	window.Observe("hi", now.Add(time.Second), 3)
	window.Observe("hi", now.Add(2*time.Second), 3)
	window.Clear()
	if window.Observe("hi", now.Add(3*time.Second), 3) {
		t.Fatalf("4th message after clear must not re-trigger")
	}
	if got := window.Len(); got != 1 {
		t.Fatalf("expected 1 entry after clear+observe, got %d", got)
	}
}

func TestMessageWindowStaleStreakOutsideWindow(t *testing.T) {
	window := NewMessageWindow(30 * time.Second)
	now := time.Now()
	window.Observe("hi", now, 3)
	window.Observe("hi", now.Add(time.Second), 3)
	if window.Observe("hi", now.Add(40*time.Second), 3) {
		t.Fatalf("evicted entries must not count toward the streak")
	}
}

func TestBurstCounter(t *testing.T) {
	counter := NewBurstCounter()
	if got := counter.Increment("b1"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := counter.Increment("b1"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	counter.Reset("b1")
	if got := counter.Count("b1"); got != 0 {
		t.Fatalf("expected reset to remove entry, got %d", got)
	}
	counter.Increment("b2")
	counter.Reset("b1")
	if got := counter.Count("b2"); got != 1 {
		t.Fatalf("reset must not touch other authors, got %d", got)
	}
}
