package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderConfirmed OrderStatus = "confirmed"
)

type Order struct {
	ID            uuid.UUID   `json:"id"`
	ResourceID    string      `json:"resourceId"`
	ResourceName  string      `json:"resourceName"`
	ResourceQty   int         `json:"resourceQty"`
	BookingDate   string      `json:"bookingDate"`
	TimeSlot      TimeSlot    `json:"timeSlot"`
	BookingType   BookingType `json:"bookingType"`
	Amount        float64     `json:"amount"`
	PaymentMode   string      `json:"mode"`
	TransactionID string      `json:"transactionId"`
	UserID        string      `json:"userId"`
	Status        OrderStatus `json:"status"`
	Timestamp     time.Time   `json:"timestamp"`
}

func (o *Order) Key() HoldKey {
	return NewHoldKey(o.ResourceID, o.BookingDate, o.TimeSlot)
}
