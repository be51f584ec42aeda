package cache

import (
	"context"
	"time"

	"capsule-hotel/internal/data/entity"
)

// Nop is used when REDIS_ADDR is empty: every read misses and every lock
// is granted, so a single instance behaves as if it were alone.
type Nop struct{}

func (Nop) GetRooms(context.Context) ([]*entity.Room, bool, error) { return nil, false, nil }
func (Nop) SetRooms(context.Context, []*entity.Room) error         { return nil }
func (Nop) InvalidateRooms(context.Context) error                  { return nil }

func (Nop) TryLock(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (Nop) Unlock(context.Context, string) error                         { return nil }
