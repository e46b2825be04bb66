package cache

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

var _ domain.CalendarCache = (*MemoryCalendarCache)(nil)

// MemoryCalendarCache is the in-process fallback used when redis is unavailable.
type MemoryCalendarCache struct {
	mu          sync.RWMutex
	store       map[string]map[string]int
	generations map[string]int64
}

func NewMemoryCalendarCache() *MemoryCalendarCache {
	return &MemoryCalendarCache{
		store:       make(map[string]map[string]int),
		generations: make(map[string]int64),
	}
}

func memoryKey(userID string, year int) string {
	return fmt.Sprintf("%s/%d", userID, year)
}

func copyCalendar(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (c *MemoryCalendarCache) Get(_ context.Context, userID string, year int) (map[string]int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cal, ok := c.store[memoryKey(userID, year)]
	if !ok {
		return nil, false
	}
	return copyCalendar(cal), true
}

func (c *MemoryCalendarCache) Generation(_ context.Context, userID string, year int) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.generations[memoryKey(userID, year)]
}

func (c *MemoryCalendarCache) Set(_ context.Context, userID string, year int, generation int64, calendar map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := memoryKey(userID, year)
	if generation < 0 || c.generations[key] != generation {
		log.Printf("[CACHE] Calendar %s invalidated during rebuild, not storing", key)
		return
	}
	c.store[key] = copyCalendar(calendar)
}

func (c *MemoryCalendarCache) Invalidate(_ context.Context, userID string, year int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := memoryKey(userID, year)
	c.generations[key]++
	delete(c.store, key)
}
