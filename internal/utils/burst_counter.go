package utils

import "sync"

// BurstCounter tracks consecutive automated messages per author.
type BurstCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewBurstCounter() *BurstCounter {
	return &BurstCounter{counts: make(map[string]int)}
}

// Increment bumps the author's consecutive count and returns the new value.
func (c *BurstCounter) Increment(authorID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[authorID]++
	return c.counts[authorID]
}

// Reset removes a single author's entry. Other authors are untouched.
func (c *BurstCounter) Reset(authorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, authorID)
}

func (c *BurstCounter) Count(authorID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[authorID]
}

// Clear drops every author's entry.
func (c *BurstCounter) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = make(map[string]int)
}

func (c *BurstCounter) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.counts)
}
