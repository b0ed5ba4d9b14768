package repository

import (
	"context"
	"sync"
	"time"

	"servicehours/internal/domain"
)

type memoryEntry struct {
	restaurantID int64
	slots        []string
	expiresAt    time.Time
}

// MemorySlotCache keeps slot lists in process. A zero ttl means entries never expire.
type MemorySlotCache struct {
	entries sync.Map
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySlotCache(ttl time.Duration) *MemorySlotCache {
	return &MemorySlotCache{
		ttl: ttl,
		now: time.Now,
	}
}

func (c *MemorySlotCache) GetSlots(_ context.Context, key domain.SlotKey) ([]string, bool, error) {
	val, ok := c.entries.Load(key.String())
	if !ok {
		return nil, false, nil
	}
	entry := val.(*memoryEntry)
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.entries.Delete(key.String())
		return nil, false, nil
	}
	return append([]string{}, entry.slots...), true, nil
}

func (c *MemorySlotCache) SetSlots(_ context.Context, key domain.SlotKey, slots []string) error {
	entry := &memoryEntry{
		restaurantID: key.RestaurantID,
		slots:        append([]string{}, slots...),
	}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.entries.Store(key.String(), entry)
	return nil
}

func (c *MemorySlotCache) InvalidateRestaurant(_ context.Context, restaurantID int64) error {
	c.entries.Range(func(k, v any) bool {
		if v.(*memoryEntry).restaurantID == restaurantID {
			c.entries.Delete(k)
		}
		return true
	})
	return nil
}
