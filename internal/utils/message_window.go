package utils

import (
	"strings"
	"sync"
	"time"
)

// MessageWindow keeps a user's recent messages ordered by arrival.
// Entries older than the window relative to the newest observation are evicted.
type MessageWindow struct {
	mu      sync.Mutex
	window  time.Duration
	entries []messageEntry
}

type messageEntry struct {
	content string
	at      time.Time
}

func NewMessageWindow(window time.Duration) *MessageWindow {
	return &MessageWindow{window: window}
}

// Observe records (content, now) and reports whether the last repeat entries
// are identical non-blank content. Whitespace-only content never triggers.
func (w *MessageWindow) Observe(content string, now time.Time, repeat int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.entries = append(w.entries, messageEntry{content: content, at: now})

	cutoff := now.Add(-w.window)
	idx := 0
	for _, entry := range w.entries {
		if !entry.at.Before(cutoff) {
			break
		}
		idx++
	}
	w.entries = w.entries[idx:]

	if repeat < 2 || len(w.entries) < repeat {
		return false
	}
	recent := w.entries[len(w.entries)-repeat:]
	if strings.TrimSpace(recent[0].content) == "" {
		return false
	}
	for _, entry := range recent[1:] {
		if entry.content != recent[0].content {
			return false
		}
	}
	return true
}

func (w *MessageWindow) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = nil
}

func (w *MessageWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// OldestAge reports the age of the oldest retained entry, zero when empty.
func (w *MessageWindow) OldestAge(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.entries) == 0 {
		return 0
	}
	return now.Sub(w.entries[0].at)
}
