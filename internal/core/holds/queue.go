package holds

import (
	"time"

	"github.com/google/uuid"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
)

type expiryItem struct {
	key    domain.HoldKey
	userID string
	holdID uuid.UUID
	at     time.Time
}

// expiryQueue is a min-heap on expiry time, driven through container/heap.
type expiryQueue []expiryItem

func (q expiryQueue) Len() int           { return len(q) }
func (q expiryQueue) Less(i, j int) bool { return q[i].at.Before(q[j].at) }
func (q expiryQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *expiryQueue) Push(x any) {
	*q = append(*q, x.(expiryItem))
}

func (q *expiryQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func (q expiryQueue) peek() (expiryItem, bool) {
	if len(q) == 0 {
		return expiryItem{}, false
	}
	return q[0], true
}
