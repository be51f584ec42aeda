package usecase

import (
	"context"
	"time"

	"capsule-hotel/internal/cache"
	"capsule-hotel/internal/data/entity"
	"capsule-hotel/internal/event"
	"capsule-hotel/internal/payment"
	"capsule-hotel/pkg/clock"

	"go.uber.org/zap"
)

type RoomCache interface {
	GetRooms(ctx context.Context) ([]*entity.Room, bool, error)
	SetRooms(ctx context.Context, rooms []*entity.Room) error
	InvalidateRooms(ctx context.Context) error
}

type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, name string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, evt event.Event) error
}

type PaymentProcessor interface {
	Charge(ctx context.Context, charge payment.Charge) (*payment.Receipt, error)
}

type options struct {
	clock    clock.Clock
	loc      *time.Location
	cache    RoomCache
	locker   Locker
	events   EventPublisher
	payments PaymentProcessor
}

type Option func(*options)

func WithClock(c clock.Clock) Option { return func(o *options) { o.clock = c } }

// WithLocation sets the zone calendar days are computed in.
func WithLocation(loc *time.Location) Option { return func(o *options) { o.loc = loc } }

func WithRoomCache(c RoomCache) Option { return func(o *options) { o.cache = c } }

func WithLocker(l Locker) Option { return func(o *options) { o.locker = l } }

func WithEventPublisher(p EventPublisher) Option { return func(o *options) { o.events = p } }

func WithPaymentProcessor(p PaymentProcessor) Option { return func(o *options) { o.payments = p } }

func buildOptions(log *zap.Logger, opts []Option) *options {
	o := &options{
		clock:  clock.Real(),
		loc:    time.UTC,
		cache:  cache.Nop{},
		locker: cache.Nop{},
		events: event.Nop{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.payments == nil {
		o.payments = payment.NewStub(log)
	}
	return o
}

// publish runs after commit; a broker outage never fails the request.
func publish(ctx context.Context, log *zap.Logger, p EventPublisher, evt event.Event) {
	if err := p.Publish(ctx, evt); err != nil {
		log.Warn("Failed to publish event",
			zap.Error(err),
			zap.String("type", evt.Type),
			zap.String("key", evt.Key),
		)
	}
}

func invalidateRooms(ctx context.Context, log *zap.Logger, c RoomCache) {
	if err := c.InvalidateRooms(ctx); err != nil {
		log.Warn("Failed to invalidate room cache", zap.Error(err))
	}
}
