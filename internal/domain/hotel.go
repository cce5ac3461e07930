package domain

import "time"

type Hotel struct {
	ID      int64
	OwnerID string // identity string issued by the external auth provider
	Name    string
	Address string
	City    *string
	Contact *string
}

type Room struct {
	ID            int64
	HotelID       int64
	RoomType      string
	PricePerNight int64 // cents
	Amenities     []string
	Images        []string
	// IsAvailable is the owner-controlled maintenance toggle. It is
	// independent of date-range occupancy, which is computed from bookings.
	IsAvailable bool
	CreatedAt   time.Time
}

// RoomView is a room resolved to its owning hotel.
type RoomView struct {
	Room
	Hotel Hotel
}
