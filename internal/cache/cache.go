package cache

import (
	"context"
	"sync"
	"time"
)

// EventCache remembers provider event ids that were already processed.
// It is a fast path only; the database unique index stays authoritative.
type EventCache interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkSeen(ctx context.Context, eventID string) error
}

type Memory struct {
	mu        sync.Mutex
	ttl       time.Duration
	m         map[string]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, m: map[string]time.Time{}, now: time.Now}
}

func (c *Memory) Seen(_ context.Context, eventID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	exp, ok := c.m[eventID]
	if !ok {
		return false, nil
	}
	if c.now().After(exp) {
		delete(c.m, eventID)
		return false, nil
	}
	return true, nil
}

func (c *Memory) MarkSeen(_ context.Context, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	// expired ids are dropped at most once per ttl; Seen ignores them meanwhile
	if now.Sub(c.lastSweep) >= c.ttl {
		for k, exp := range c.m {
			if now.After(exp) {
				delete(c.m, k)
			}
		}
		c.lastSweep = now
	}
	c.m[eventID] = now.Add(c.ttl)
	return nil
}
