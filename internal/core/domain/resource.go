package domain

import "errors"

var ErrResourceNotFound = errors.New("resource not found")

type BookingType string

const (
	BookingTwoHour BookingType = "2 Hour"
	BookingHalfDay BookingType = "Half Day"
	BookingFullDay BookingType = "Full Day"
)

type Resource struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	ResourceTypeID string      `json:"resourceTypeId"`
	MaxQty         int         `json:"maxQty"`
	PriceInternal  float64     `json:"priceInternal"`
	PriceExternal  float64     `json:"priceExternal"`
	BookingType    BookingType `json:"bookingType"`
	Active         bool        `json:"active"`
}

func (r *Resource) IsActive() bool {
	return r.Active
}
