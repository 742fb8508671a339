package domain

import "slices"

type TimeSlot string

const (
	Slot10To12 TimeSlot = "10:00-12:00"
	Slot12To14 TimeSlot = "12:00-14:00"
	Slot14To16 TimeSlot = "14:00-16:00"
	Slot16To18 TimeSlot = "16:00-18:00"
	Slot10To14 TimeSlot = "10:00-14:00"
	Slot14To18 TimeSlot = "14:00-18:00"
	Slot10To18 TimeSlot = "10:00-18:00"
)

var bookingTypeSlots = map[BookingType][]TimeSlot{
	BookingTwoHour: {Slot10To12, Slot12To14, Slot14To16, Slot16To18},
	BookingHalfDay: {Slot10To14, Slot14To18},
	BookingFullDay: {Slot10To18},
}

// ParseBookingType reports whether s names one of the recognized booking types.
func ParseBookingType(s string) (BookingType, bool) {
	bt := BookingType(s)
	_, ok := bookingTypeSlots[bt]
	return bt, ok
}

// TimeSlotsFor returns the ordered slots a booking type admits. The result is a copy.
func TimeSlotsFor(bt BookingType) []TimeSlot {
	return slices.Clone(bookingTypeSlots[bt])
}

func IsLegalSlot(bt BookingType, slot TimeSlot) bool {
	return slices.Contains(bookingTypeSlots[bt], slot)
}
