package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HoldKey identifies the capacity bucket a hold draws from.
type HoldKey struct {
	ResourceID  string
	BookingDate string
	TimeSlot    TimeSlot
}

func NewHoldKey(resourceID, bookingDate string, slot TimeSlot) HoldKey {
	return HoldKey{ResourceID: resourceID, BookingDate: bookingDate, TimeSlot: slot}
}

func (k HoldKey) String() string {
	return fmt.Sprintf("%s-%s-%s", k.ResourceID, k.BookingDate, k.TimeSlot)
}

type Hold struct {
	ID          uuid.UUID
	UserID      string
	ResourceID  string
	BookingDate string
	TimeSlot    TimeSlot
	ResourceQty int
	StartTime   time.Time
	Duration    time.Duration
}

func (h Hold) Key() HoldKey {
	return NewHoldKey(h.ResourceID, h.BookingDate, h.TimeSlot)
}

func (h Hold) ExpiresAt() time.Time {
	return h.StartTime.Add(h.Duration)
}

func (h Hold) IsExpired(now time.Time) bool {
	return !now.Before(h.ExpiresAt())
}

// Remaining is never negative.
func (h Hold) Remaining(now time.Time) time.Duration {
	left := h.ExpiresAt().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}
