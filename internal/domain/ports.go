package domain

import (
	"context"
	"time"
)

type RoomRepository interface {
	CreateHotel(ctx context.Context, h *Hotel) error
	GetHotelByOwner(ctx context.Context, ownerID string) (Hotel, error)
	CreateRoom(ctx context.Context, r *Room) error
	GetRoom(ctx context.Context, id int64) (RoomView, error)
	ListAvailableRooms(ctx context.Context) ([]RoomView, error)
	ListRoomsByHotel(ctx context.Context, hotelID int64) ([]RoomView, error)
	// ToggleRoomAvailability flips the manual flag and returns the new value.
	ToggleRoomAvailability(ctx context.Context, roomID int64) (bool, error)
}

type BookingRepository interface {
	// CreateBooking re-checks availability and inserts the booking as one
	// atomic unit. Returns ErrConflict when the range is taken at commit
	// time and ErrNotFound when the room is gone; on success the generated
	// ID and creation timestamp are set on b.
	CreateBooking(ctx context.Context, b *Booking) error

	// IsRoomAvailable is the read-only advisory check. It gives no
	// concurrency guarantee on its own; CreateBooking re-evaluates it
	// inside the commit transaction.
	IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error)

	ListBookingsByUser(ctx context.Context, userID string) ([]BookingView, error)
	ListBookingsByHotel(ctx context.Context, hotelID int64) ([]BookingView, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// BookingCreatedEvent is handed to external collaborators (notification,
// payment) after a booking commits.
type BookingCreatedEvent struct {
	BookingID  int64     `json:"bookingId"`
	Reference  string    `json:"reference"`
	UserID     string    `json:"userId"`
	RoomID     int64     `json:"roomId"`
	HotelID    int64     `json:"hotelId"`
	CheckIn    string    `json:"checkInDate"`
	CheckOut   string    `json:"checkOutDate"`
	Guests     int       `json:"guests"`
	TotalPrice int64     `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}

type EventPublisher interface {
	BookingCreated(ctx context.Context, ev BookingCreatedEvent) error
}
