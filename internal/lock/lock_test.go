package redlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T) (redis.UniversalClient, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func TestLockAndUnlock(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	locker := NewLocker(client, "ledger:posting", "holder-1")
	assert.NoError(t, locker.Lock(ctx, time.Minute))

	// Second locker on the same key must be rejected while held.
	second := NewLocker(client, "ledger:posting", "holder-2")
	assert.Error(t, second.Lock(ctx, time.Minute))

	assert.NoError(t, locker.Unlock(ctx))
	assert.NoError(t, second.Lock(ctx, time.Minute))
}

func TestUnlock_NotHolder(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	locker := NewLocker(client, "ledger:posting", "holder-1")
	assert.NoError(t, locker.Lock(ctx, time.Minute))

	impostor := NewLocker(client, "ledger:posting", "holder-2")
	assert.Error(t, impostor.Unlock(ctx))
}

func TestWaitLockAcquiresAfterRelease(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	holder := NewLocker(client, "post:acc_1", "holder-1")
	assert.NoError(t, holder.Lock(ctx, time.Minute))

	go func() {
		time.Sleep(50 * time.Millisecond)
		assert.NoError(t, holder.Unlock(ctx))
	}()

	waiter := NewLocker(client, "post:acc_1", "holder-2")
	assert.NoError(t, waiter.WaitLock(ctx, time.Minute, 2*time.Second))
}

func TestWaitLockTimesOut(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	holder := NewLocker(client, "post:acc_1", "holder-1")
	assert.NoError(t, holder.Lock(ctx, time.Minute))

	waiter := NewLocker(client, "post:acc_1", "holder-2")
	assert.Error(t, waiter.WaitLock(ctx, time.Minute, 150*time.Millisecond))
}

func TestExtendLock(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	locker := NewLocker(client, "ledger:posting", "holder-1")
	assert.NoError(t, locker.Lock(ctx, time.Second))
	assert.NoError(t, locker.ExtendLock(ctx, time.Minute))

	mr.FastForward(30 * time.Second)
	assert.NoError(t, locker.Unlock(ctx))
}
