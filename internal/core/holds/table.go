// Package holds keeps the in-process registry of active reservation holds.
//
// A hold is visible to readers only until its expiry time, whether or not the
// scheduler has swept it yet. Removal is idempotent: an explicit Remove and a
// sweep of the same hold may race and the loser does nothing.
//
// Expiry callbacks only ever run from Sweep. Expired holds discovered by
// Insert, Pin or Unpin are queued and handed to the next sweep, so callers
// of those methods never wait on a callback.
package holds

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
	"github.com/agiledatalabs/booking-management-system/internal/platform/clock"
)

var (
	ErrDuplicateHold = errors.New("user already holds this key")
	ErrUserHoldLimit = errors.New("user hold limit reached")
	ErrInvalidHold   = errors.New("invalid hold")
)

const idleWait = time.Minute

type entry struct {
	hold   domain.Hold
	pinned bool
}

func (e *entry) live(now time.Time) bool {
	return e.pinned || !e.hold.IsExpired(now)
}

type Table struct {
	mu       sync.Mutex
	clock    clock.Clock
	groups   map[domain.HoldKey]map[string]*entry
	byUser   map[string]map[domain.HoldKey]struct{}
	queue    expiryQueue
	pending  []domain.Hold
	wake     chan struct{}
	onExpire func(domain.Hold)
}

func NewTable(clk clock.Clock) *Table {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Table{
		clock:  clk,
		groups: make(map[domain.HoldKey]map[string]*entry),
		byUser: make(map[string]map[domain.HoldKey]struct{}),
		wake:   make(chan struct{}, 1),
	}
}

// OnExpire registers a callback invoked by Sweep, outside the table lock, for
// every hold that leaves the table by expiry rather than by Remove.
func (t *Table) OnExpire(fn func(domain.Hold)) {
	t.mu.Lock()
	t.onExpire = fn
	t.mu.Unlock()
}

// Insert adds hold to its key's group and schedules its expiry. maxPerUser
// bounds the number of live holds a user may own across all keys; zero
// disables the bound.
func (t *Table) Insert(hold domain.Hold, maxPerUser int) error {
	if hold.ResourceQty <= 0 || hold.Duration <= 0 || hold.UserID == "" {
		return ErrInvalidHold
	}

	key := hold.Key()
	now := t.clock.Now()

	t.mu.Lock()
	if e, ok := t.groups[key][hold.UserID]; ok {
		if e.live(now) {
			t.mu.Unlock()
			return ErrDuplicateHold
		}
		t.expireLocked(key, e)
	}

	if maxPerUser > 0 && t.countForUserLocked(hold.UserID, now) >= maxPerUser {
		t.mu.Unlock()
		t.signal()
		return ErrUserHoldLimit
	}

	group, ok := t.groups[key]
	if !ok {
		group = make(map[string]*entry)
		t.groups[key] = group
	}
	group[hold.UserID] = &entry{hold: hold}

	keys, ok := t.byUser[hold.UserID]
	if !ok {
		keys = make(map[domain.HoldKey]struct{})
		t.byUser[hold.UserID] = keys
	}
	keys[key] = struct{}{}

	heap.Push(&t.queue, expiryItem{key: key, userID: hold.UserID, holdID: hold.ID, at: hold.ExpiresAt()})
	t.mu.Unlock()

	t.signal()
	return nil
}

func (t *Table) FindByUser(key domain.HoldKey, userID string) (domain.Hold, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.groups[key][userID]
	if !ok || !e.live(t.clock.Now()) {
		return domain.Hold{}, false
	}
	return e.hold, true
}

func (t *Table) TotalQty(key domain.HoldKey) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	total := 0
	for _, e := range t.groups[key] {
		if e.live(now) {
			total += e.hold.ResourceQty
		}
	}
	return total
}

func (t *Table) CountForUser(userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countForUserLocked(userID, t.clock.Now())
}

func (t *Table) countForUserLocked(userID string, now time.Time) int {
	count := 0
	for key := range t.byUser[userID] {
		if e, ok := t.groups[key][userID]; ok && e.live(now) {
			count++
		}
	}
	return count
}

// Snapshot returns a copy of the live holds for key.
func (t *Table) Snapshot(key domain.HoldKey) []domain.Hold {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	holds := make([]domain.Hold, 0, len(t.groups[key]))
	for _, e := range t.groups[key] {
		if e.live(now) {
			holds = append(holds, e.hold)
		}
	}
	return holds
}

// Remove deletes the user's hold for key. It reports whether a hold was
// present; removing an absent hold is not an error.
func (t *Table) Remove(key domain.HoldKey, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeLocked(key, userID)
}

// Pin marks the user's live hold as being confirmed. A pinned hold is skipped
// by expiry until Unpin or Remove.
func (t *Table) Pin(key domain.HoldKey, userID string) (domain.Hold, bool) {
	now := t.clock.Now()

	t.mu.Lock()
	e, ok := t.groups[key][userID]
	if !ok || e.pinned {
		t.mu.Unlock()
		return domain.Hold{}, false
	}
	if !e.live(now) {
		t.expireLocked(key, e)
		t.mu.Unlock()
		t.signal()
		return domain.Hold{}, false
	}
	e.pinned = true
	hold := e.hold
	t.mu.Unlock()

	return hold, true
}

// Unpin releases a pin. If the hold expired while pinned it is removed.
func (t *Table) Unpin(key domain.HoldKey, userID string) {
	now := t.clock.Now()

	t.mu.Lock()
	e, ok := t.groups[key][userID]
	if !ok || !e.pinned {
		t.mu.Unlock()
		return
	}
	e.pinned = false
	if e.live(now) {
		t.mu.Unlock()
		return
	}
	t.expireLocked(key, e)
	t.mu.Unlock()

	t.signal()
}

// GroupCount is the number of keys that currently have a group entry.
func (t *Table) GroupCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.groups)
}

// expireLocked removes an expired entry found outside Sweep and queues its
// notification for the next sweep.
func (t *Table) expireLocked(key domain.HoldKey, e *entry) {
	t.removeLocked(key, e.hold.UserID)
	t.pending = append(t.pending, e.hold)
}

func (t *Table) removeLocked(key domain.HoldKey, userID string) bool {
	group, ok := t.groups[key]
	if !ok {
		return false
	}
	if _, ok := group[userID]; !ok {
		return false
	}

	delete(group, userID)
	if len(group) == 0 {
		delete(t.groups, key)
	}

	if keys, ok := t.byUser[userID]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(t.byUser, userID)
		}
	}
	return true
}

// Sweep removes every unpinned hold whose expiry is at or before now and
// returns them. Queue items for holds that were already removed or replaced
// are dropped silently. Notifications queued by Insert, Pin and Unpin are
// delivered here as well, ahead of the swept holds.
func (t *Table) Sweep(now time.Time) []domain.Hold {
	t.mu.Lock()
	deferred := t.pending
	t.pending = nil

	var expired []domain.Hold
	for {
		item, ok := t.queue.peek()
		if !ok || item.at.After(now) {
			break
		}
		heap.Pop(&t.queue)

		e, ok := t.groups[item.key][item.userID]
		if !ok || e.hold.ID != item.holdID || e.pinned {
			continue
		}
		t.removeLocked(item.key, item.userID)
		expired = append(expired, e.hold)
	}
	t.mu.Unlock()

	t.notifyExpired(deferred)
	t.notifyExpired(expired)
	return expired
}

// Run drives expiry until ctx is done.
func (t *Table) Run(ctx context.Context) {
	timer := time.NewTimer(idleWait)
	defer timer.Stop()

	for {
		t.Sweep(t.clock.Now())

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(t.nextWait())

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-t.wake:
		}
	}
}

func (t *Table) nextWait() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	item, ok := t.queue.peek()
	if !ok {
		return idleWait
	}
	wait := item.at.Sub(t.clock.Now())
	if wait < 0 {
		return 0
	}
	if wait > idleWait {
		return idleWait
	}
	return wait
}

func (t *Table) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (t *Table) notifyExpired(holds []domain.Hold) {
	if len(holds) == 0 {
		return
	}
	t.mu.Lock()
	fn := t.onExpire
	t.mu.Unlock()
	if fn == nil {
		return
	}
	for _, h := range holds {
		fn(h)
	}
}
