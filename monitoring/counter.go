package monitoring

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Counter keeps named totals for a batch run, safe for concurrent workers.
type Counter struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewCounter ...
func NewCounter() *Counter {
	return &Counter{values: make(map[string]int64)}
}

// Get ...
func (c *Counter) Get(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

// Set ...
func (c *Counter) Set(key string, newValue int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = newValue
	return c.values[key]
}

// Incr ...
func (c *Counter) Incr(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key]++
	return c.values[key]
}

// Add increases key by n and returns the new total.
func (c *Counter) Add(key string, n int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] += n
	return c.values[key]
}

// String renders the totals as "key=value" pairs in key order.
func (c *Counter) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, c.values[k]))
	}
	return strings.Join(parts, " ")
}
