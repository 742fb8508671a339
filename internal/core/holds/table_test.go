package holds_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
	"github.com/agiledatalabs/booking-management-system/internal/core/holds"
	"github.com/agiledatalabs/booking-management-system/internal/platform/clock"
)

var start = time.Date(2023, 10, 10, 9, 0, 0, 0, time.UTC)

func newHold(userID, resourceID string, slot domain.TimeSlot, qty int, at time.Time) domain.Hold {
	return domain.Hold{
		ID:          uuid.New(),
		UserID:      userID,
		ResourceID:  resourceID,
		BookingDate: "2023-10-10",
		TimeSlot:    slot,
		ResourceQty: qty,
		StartTime:   at,
		Duration:    5 * time.Minute,
	}
}

func TestTable_InsertFindTotal(t *testing.T) {
	clk := clock.NewManual(start)
	table := holds.NewTable(clk)

	h1 := newHold("user-1", "res-1", domain.Slot10To12, 2, start)
	h2 := newHold("user-2", "res-1", domain.Slot10To12, 3, start)
	require.NoError(t, table.Insert(h1, 5))
	require.NoError(t, table.Insert(h2, 5))

	key := h1.Key()
	got, ok := table.FindByUser(key, "user-1")
	require.True(t, ok)
	assert.Equal(t, h1.ID, got.ID)

	_, ok = table.FindByUser(key, "user-3")
	assert.False(t, ok)

	assert.Equal(t, 5, table.TotalQty(key))
	assert.Equal(t, 0, table.TotalQty(domain.NewHoldKey("res-1", "2023-10-10", domain.Slot12To14)))
	assert.Len(t, table.Snapshot(key), 2)
}

func TestTable_RejectsSecondHoldForSameUserAndKey(t *testing.T) {
	table := holds.NewTable(clock.NewManual(start))

	require.NoError(t, table.Insert(newHold("user-1", "res-1", domain.Slot10To12, 2, start), 5))
	err := table.Insert(newHold("user-1", "res-1", domain.Slot10To12, 3, start), 5)

	assert.ErrorIs(t, err, holds.ErrDuplicateHold)
	assert.Equal(t, 2, table.TotalQty(domain.NewHoldKey("res-1", "2023-10-10", domain.Slot10To12)))
}

func TestTable_RejectsInvalidHold(t *testing.T) {
	table := holds.NewTable(clock.NewManual(start))

	h := newHold("user-1", "res-1", domain.Slot10To12, 0, start)
	assert.ErrorIs(t, table.Insert(h, 5), holds.ErrInvalidHold)
}

func TestTable_UserHoldLimit(t *testing.T) {
	table := holds.NewTable(clock.NewManual(start))

	slots := domain.TimeSlotsFor(domain.BookingTwoHour)
	for i := 0; i < 5; i++ {
		h := newHold("user-1", fmt.Sprintf("res-%d", i), slots[i%len(slots)], 1, start)
		require.NoError(t, table.Insert(h, 5))
	}
	assert.Equal(t, 5, table.CountForUser("user-1"))

	err := table.Insert(newHold("user-1", "res-9", domain.Slot10To12, 1, start), 5)
	assert.ErrorIs(t, err, holds.ErrUserHoldLimit)
	assert.Equal(t, 5, table.CountForUser("user-1"))
	assert.Equal(t, 0, table.CountForUser("user-2"))
}

func TestTable_RemoveCleansUpGroupAndIsIdempotent(t *testing.T) {
	table := holds.NewTable(clock.NewManual(start))

	h := newHold("user-1", "res-1", domain.Slot10To12, 2, start)
	require.NoError(t, table.Insert(h, 5))
	assert.Equal(t, 1, table.GroupCount())

	assert.True(t, table.Remove(h.Key(), "user-1"))
	assert.False(t, table.Remove(h.Key(), "user-1"))

	assert.Equal(t, 0, table.GroupCount())
	assert.Equal(t, 0, table.TotalQty(h.Key()))
	assert.Equal(t, 0, table.CountForUser("user-1"))
}

func TestTable_ExpiredHoldIsInvisibleBeforeSweep(t *testing.T) {
	clk := clock.NewManual(start)
	table := holds.NewTable(clk)

	h := newHold("user-1", "res-1", domain.Slot10To12, 4, start)
	require.NoError(t, table.Insert(h, 5))

	clk.Advance(5*time.Minute - time.Second)
	assert.Equal(t, 4, table.TotalQty(h.Key()))

	clk.Advance(time.Second)
	_, ok := table.FindByUser(h.Key(), "user-1")
	assert.False(t, ok)
	assert.Equal(t, 0, table.TotalQty(h.Key()))
	assert.Equal(t, 0, table.CountForUser("user-1"))
}

func TestTable_SweepRemovesDueHoldsAndNotifies(t *testing.T) {
	clk := clock.NewManual(start)
	table := holds.NewTable(clk)

	var notified []domain.Hold
	table.OnExpire(func(h domain.Hold) { notified = append(notified, h) })

	early := newHold("user-1", "res-1", domain.Slot10To12, 1, start)
	late := newHold("user-2", "res-1", domain.Slot10To12, 1, start.Add(2*time.Minute))
	require.NoError(t, table.Insert(early, 5))
	require.NoError(t, table.Insert(late, 5))

	expired := table.Sweep(start.Add(5 * time.Minute))
	require.Len(t, expired, 1)
	assert.Equal(t, early.ID, expired[0].ID)
	assert.Len(t, notified, 1)
	assert.Equal(t, 1, table.GroupCount())

	expired = table.Sweep(start.Add(7 * time.Minute))
	require.Len(t, expired, 1)
	assert.Equal(t, late.ID, expired[0].ID)
	assert.Equal(t, 0, table.GroupCount())
}

func TestTable_SweepAfterRemoveIsNoop(t *testing.T) {
	clk := clock.NewManual(start)
	table := holds.NewTable(clk)

	var notified int
	table.OnExpire(func(domain.Hold) { notified++ })

	h := newHold("user-1", "res-1", domain.Slot10To12, 1, start)
	require.NoError(t, table.Insert(h, 5))
	table.Remove(h.Key(), "user-1")

	assert.Empty(t, table.Sweep(start.Add(time.Hour)))
	assert.Zero(t, notified)
}

func TestTable_StaleExpiryDoesNotRemoveNewerHold(t *testing.T) {
	clk := clock.NewManual(start)
	table := holds.NewTable(clk)

	first := newHold("user-1", "res-1", domain.Slot10To12, 1, start)
	require.NoError(t, table.Insert(first, 5))
	table.Remove(first.Key(), "user-1")

	clk.Advance(time.Minute)
	second := newHold("user-1", "res-1", domain.Slot10To12, 2, clk.Now())
	require.NoError(t, table.Insert(second, 5))

	assert.Empty(t, table.Sweep(start.Add(5*time.Minute)))
	got, ok := table.FindByUser(second.Key(), "user-1")
	require.True(t, ok)
	assert.Equal(t, second.ID, got.ID)
}

func TestTable_ExpiredHoldIsReplacedOnInsert(t *testing.T) {
	clk := clock.NewManual(start)
	table := holds.NewTable(clk)

	var notified int
	table.OnExpire(func(domain.Hold) { notified++ })

	require.NoError(t, table.Insert(newHold("user-1", "res-1", domain.Slot10To12, 1, start), 5))
	clk.Advance(6 * time.Minute)

	require.NoError(t, table.Insert(newHold("user-1", "res-1", domain.Slot10To12, 3, clk.Now()), 5))
	assert.Zero(t, notified, "insert must not run expiry callbacks")
	assert.Equal(t, 3, table.TotalQty(domain.NewHoldKey("res-1", "2023-10-10", domain.Slot10To12)))

	assert.Empty(t, table.Sweep(clk.Now()))
	assert.Equal(t, 1, notified)

	table.Sweep(clk.Now())
	assert.Equal(t, 1, notified)
}

func TestTable_ExpiryCallbackNeverRunsOnCallerPath(t *testing.T) {
	clk := clock.NewManual(start)
	table := holds.NewTable(clk)

	release := make(chan struct{})
	var notified atomic.Int32
	table.OnExpire(func(domain.Hold) {
		<-release
		notified.Add(1)
	})

	pinned := newHold("user-1", "res-1", domain.Slot10To12, 1, start)
	replaced := newHold("user-2", "res-1", domain.Slot10To12, 1, start)
	require.NoError(t, table.Insert(pinned, 5))
	require.NoError(t, table.Insert(replaced, 5))

	_, ok := table.Pin(pinned.Key(), "user-1")
	require.True(t, ok)
	clk.Advance(5 * time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		table.Unpin(pinned.Key(), "user-1")
		_ = table.Insert(newHold("user-2", "res-1", domain.Slot10To12, 2, clk.Now()), 5)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unpin and Insert waited on the expiry callback")
	}
	assert.Zero(t, notified.Load())

	close(release)
	assert.Empty(t, table.Sweep(clk.Now()))
	assert.Equal(t, int32(2), notified.Load())
}

func TestTable_RunDeliversQueuedNotifications(t *testing.T) {
	table := holds.NewTable(clock.NewSystem())

	var expired atomic.Int32
	table.OnExpire(func(domain.Hold) { expired.Add(1) })

	stale := newHold("user-1", "res-1", domain.Slot10To12, 1, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, table.Insert(stale, 5))
	require.NoError(t, table.Insert(newHold("user-1", "res-1", domain.Slot10To12, 1, time.Now().UTC()), 5))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go table.Run(ctx)

	assert.Eventually(t, func() bool {
		return expired.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTable_PinnedHoldSurvivesSweepUntilUnpinned(t *testing.T) {
	clk := clock.NewManual(start)
	table := holds.NewTable(clk)

	h := newHold("user-1", "res-1", domain.Slot10To12, 2, start)
	require.NoError(t, table.Insert(h, 5))

	_, ok := table.Pin(h.Key(), "user-1")
	require.True(t, ok)

	_, ok = table.Pin(h.Key(), "user-1")
	assert.False(t, ok, "a pinned hold cannot be pinned twice")

	clk.Advance(10 * time.Minute)
	assert.Empty(t, table.Sweep(clk.Now()))
	assert.Equal(t, 2, table.TotalQty(h.Key()))

	table.Unpin(h.Key(), "user-1")
	assert.Equal(t, 0, table.TotalQty(h.Key()))
	assert.Equal(t, 0, table.GroupCount())
}

func TestTable_PinExpiredHoldFails(t *testing.T) {
	clk := clock.NewManual(start)
	table := holds.NewTable(clk)

	h := newHold("user-1", "res-1", domain.Slot10To12, 2, start)
	require.NoError(t, table.Insert(h, 5))
	clk.Advance(5 * time.Minute)

	var notified int
	table.OnExpire(func(domain.Hold) { notified++ })

	_, ok := table.Pin(h.Key(), "user-1")
	assert.False(t, ok)
	assert.Equal(t, 0, table.GroupCount())

	table.Sweep(clk.Now())
	assert.Equal(t, 1, notified)
}

func TestTable_RunExpiresHolds(t *testing.T) {
	table := holds.NewTable(clock.NewSystem())

	var expired atomic.Int32
	table.OnExpire(func(domain.Hold) { expired.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go table.Run(ctx)

	h := newHold("user-1", "res-1", domain.Slot10To12, 1, time.Now().UTC())
	h.Duration = 50 * time.Millisecond
	require.NoError(t, table.Insert(h, 5))

	assert.Eventually(t, func() bool {
		return expired.Load() == 1 && table.GroupCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTable_ConcurrentRemoveAndSweep(t *testing.T) {
	clk := clock.NewManual(start)
	table := holds.NewTable(clk)

	var notified atomic.Int32
	table.OnExpire(func(domain.Hold) { notified.Add(1) })

	const users = 50
	for i := 0; i < users; i++ {
		require.NoError(t, table.Insert(newHold(fmt.Sprintf("user-%d", i), "res-1", domain.Slot10To12, 1, start), 5))
	}
	clk.Advance(5 * time.Minute)

	var removed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if table.Remove(domain.NewHoldKey("res-1", "2023-10-10", domain.Slot10To12), fmt.Sprintf("user-%d", i)) {
				removed.Add(1)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		table.Sweep(clk.Now())
	}()
	wg.Wait()

	assert.Equal(t, int32(users), removed.Load()+notified.Load())
	assert.Equal(t, 0, table.GroupCount())
}
