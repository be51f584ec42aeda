package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"capsule-hotel/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, name, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockLocker) Unlock(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func TestSweeper_TickRemovesExpiredHolds(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()

	hold, err := env.svc.Hold.CreateHold(ctx, guest("s1"), holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)

	sweeper := NewSweeper(env.svc.Hold, time.Minute, zap.NewNop(), env.options()...)
	sweeper.Start(ctx)
	sweeper.Start(ctx)
	assert.Equal(t, 1, env.clock.Tickers())

	env.clock.Advance(6 * time.Minute)

	id := uuid.MustParse(hold.ID)
	assert.Eventually(t, func() bool {
		h, err := env.repo.Hold.FindByID(ctx, id)
		return err == nil && h == nil
	}, 2*time.Second, 10*time.Millisecond)

	sweeper.Stop()
	assert.Equal(t, 0, env.clock.Tickers())
	sweeper.Stop()
}

func TestSweeper_SkipsWhenAnotherInstanceHoldsLock(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()

	_, err := env.svc.Hold.CreateHold(ctx, guest("s1"), holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)
	env.clock.Advance(6 * time.Minute)

	locker := &mockLocker{}
	locker.On("TryLock", mock.Anything, sweepLockName, time.Minute).Return(false, nil).Once()

	sweeper := NewSweeper(env.svc.Hold, time.Minute, zap.NewNop(), append(env.options(), WithLocker(locker))...)
	n, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	locker.AssertExpectations(t)
	locker.AssertNotCalled(t, "Unlock", mock.Anything, mock.Anything)
}

func TestSweeper_ReleasesLockAfterSweep(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()

	_, err := env.svc.Hold.CreateHold(ctx, guest("s1"), holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)
	env.clock.Advance(6 * time.Minute)

	locker := &mockLocker{}
	locker.On("TryLock", mock.Anything, sweepLockName, time.Minute).Return(true, nil).Once()
	locker.On("Unlock", mock.Anything, sweepLockName).Return(nil).Once()

	sweeper := NewSweeper(env.svc.Hold, time.Minute, zap.NewNop(), append(env.options(), WithLocker(locker))...)
	n, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	locker.AssertExpectations(t)
}

func TestSweeper_SweepsLocallyWhenLockStoreFails(t *testing.T) {
	env := newTestEnv(t)
	room := env.addRoom("A101", entity.ZoneWomenOnly, entity.QualityGolden)
	ctx := context.Background()

	_, err := env.svc.Hold.CreateHold(ctx, guest("s1"), holdReq(room, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)
	env.clock.Advance(6 * time.Minute)

	locker := &mockLocker{}
	locker.On("TryLock", mock.Anything, sweepLockName, time.Minute).Return(false, errors.New("redis: connection refused")).Once()

	sweeper := NewSweeper(env.svc.Hold, time.Minute, zap.NewNop(), append(env.options(), WithLocker(locker))...)
	n, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	locker.AssertNotCalled(t, "Unlock", mock.Anything, mock.Anything)
}
