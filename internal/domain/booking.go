package domain

import "time"

// DateLayout is the wire format for stay dates. Stay dates are calendar
// dates, not instants; they are normalized to UTC midnight internally.
const DateLayout = "2006-01-02"

type Booking struct {
	ID         int64
	Reference  string // opaque unique id handed to external collaborators
	UserID     string
	RoomID     int64
	HotelID    int64 // denormalized from the room at creation time
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	TotalPrice int64 // cents
	CreatedAt  time.Time
}

// BookingView is a booking resolved to its room and hotel.
type BookingView struct {
	Booking
	Room  Room
	Hotel Hotel
}

// ParseDate parses a calendar date in DateLayout, anchored at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether the half-open stay ranges [a1,a2) and [b1,b2)
// intersect. A checkout on day D does not conflict with a check-in on day D.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
	return a1.Before(b2) && b1.Before(a2)
}
