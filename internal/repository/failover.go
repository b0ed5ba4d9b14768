package repository

import (
	"context"
	"sync/atomic"
	"time"

	"servicehours/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverSlotCache serves from fallback while primary is failing and retries primary once a minute.
type FailoverSlotCache struct {
	primary   domain.SlotCache
	fallback  domain.SlotCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverSlotCache(primary, fallback domain.SlotCache, logger *zerolog.Logger) *FailoverSlotCache {
	return &FailoverSlotCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (c *FailoverSlotCache) markDown(err error) {
	c.logger.Error().Err(err).Msg("Primary slot cache failed, falling back to memory")
	c.isDown.Store(true)
	c.lastCheck.Store(c.now().UnixNano())
}

// usePrimary reports whether the call should go to primary, allowing a probe after recoveryInterval.
func (c *FailoverSlotCache) usePrimary() bool {
	if !c.isDown.Load() {
		return true
	}
	return c.now().Sub(time.Unix(0, c.lastCheck.Load())) > recoveryInterval
}

func (c *FailoverSlotCache) recovered() {
	if c.isDown.CompareAndSwap(true, false) {
		c.logger.Info().Msg("Primary slot cache recovered")
	}
}

func (c *FailoverSlotCache) GetSlots(ctx context.Context, key domain.SlotKey) ([]string, bool, error) {
	if c.usePrimary() {
		slots, ok, err := c.primary.GetSlots(ctx, key)
		if err == nil {
			c.recovered()
			return slots, ok, nil
		}
		c.markDown(err)
	}

	return c.fallback.GetSlots(ctx, key)
}

func (c *FailoverSlotCache) SetSlots(ctx context.Context, key domain.SlotKey, slots []string) error {
	if c.usePrimary() {
		err := c.primary.SetSlots(ctx, key, slots)
		if err == nil {
			c.recovered()
			return nil
		}
		c.markDown(err)
	}

	return c.fallback.SetSlots(ctx, key, slots)
}

// InvalidateRestaurant always clears the fallback, and the primary when it is reachable.
func (c *FailoverSlotCache) InvalidateRestaurant(ctx context.Context, restaurantID int64) error {
	if err := c.fallback.InvalidateRestaurant(ctx, restaurantID); err != nil {
		return err
	}
	if c.usePrimary() {
		err := c.primary.InvalidateRestaurant(ctx, restaurantID)
		if err == nil {
			c.recovered()
			return nil
		}
		c.markDown(err)
	}
	return nil
}
