package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sdhealth/pathway-tracker/common/logger"
)

// Cache interface for key-value storage
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Memory is an in-process TTL cache. It backs the clinical-request-type
// catalog lookups; entries are advisory and correctness never depends on
// a hit.
type Memory struct {
	data map[string]*entry
	mu   sync.RWMutex
	log  *logger.Logger

	stop chan struct{}
	once sync.Once
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates a new in-memory cache
func NewMemory(log *logger.Logger) *Memory {
	c := &Memory{
		data: make(map[string]*entry),
		log:  log,
		stop: make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// Get retrieves a value from cache
func (c *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.data[key]
	if !exists {
		return nil, false, nil
	}

	if time.Now().After(e.expiresAt) {
		return nil, false, nil
	}

	return e.value, true, nil
}

// Set stores a value in cache with TTL
func (c *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a value from cache
func (c *Memory) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	return nil
}

// Close stops the cleanup goroutine and drops all entries
func (c *Memory) Close() error {
	c.once.Do(func() { close(c.stop) })

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]*entry)
	c.log.Info("memory cache closed")
	return nil
}

// cleanup removes expired entries periodically
func (c *Memory) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, e := range c.data {
				if now.After(e.expiresAt) {
					delete(c.data, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Len returns the number of live entries
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
