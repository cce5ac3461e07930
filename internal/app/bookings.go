package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"quickstay/internal/domain"
)

var validate = validator.New()

// BookingService is the reservation engine's entry point: it validates the
// request, resolves the room, prices the stay and hands the repository one
// atomic availability-check-plus-insert.
type BookingService struct {
	rooms    domain.RoomRepository
	bookings domain.BookingRepository
	cache    domain.Cache
	events   domain.EventPublisher
	cacheTTL int // seconds
}

func NewBookingService(rooms domain.RoomRepository, bookings domain.BookingRepository,
	cache domain.Cache, events domain.EventPublisher, cacheTTLSec int) *BookingService {
	return &BookingService{rooms: rooms, bookings: bookings, cache: cache, events: events, cacheTTL: cacheTTLSec}
}

type CreateBookingInput struct {
	RoomID   int64  `json:"room" validate:"required"`
	CheckIn  string `json:"checkInDate" validate:"required"`
	CheckOut string `json:"checkOutDate" validate:"required"`
	Guests   int    `json:"guests" validate:"required,gt=0"`
}

type CheckAvailabilityInput struct {
	RoomID   int64  `json:"room" validate:"required"`
	CheckIn  string `json:"checkInDate" validate:"required"`
	CheckOut string `json:"checkOutDate" validate:"required"`
}

type Dashboard struct {
	TotalBookings int
	TotalRevenue  int64
	Bookings      []domain.BookingView
}

func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	ci, err := domain.ParseDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid check-in date", domain.ErrValidation)
	}
	co, err := domain.ParseDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid check-out date", domain.ErrValidation)
	}
	if !ci.Before(co) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-in must precede check-out", domain.ErrValidation)
	}
	return ci, co, nil
}

func (s *BookingService) CreateBooking(ctx context.Context, userID string, in CreateBookingInput) (domain.Booking, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Booking{}, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	checkIn, checkOut, err := parseStay(in.CheckIn, in.CheckOut)
	if err != nil {
		return domain.Booking{}, err
	}

	room, err := s.rooms.GetRoom(ctx, in.RoomID)
	if err != nil {
		return domain.Booking{}, err
	}

	_, total := domain.Quote(room.PricePerNight, checkIn, checkOut)

	b := domain.Booking{
		Reference:  uuid.NewString(),
		UserID:     userID,
		RoomID:     room.Room.ID,
		HotelID:    room.Hotel.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     in.Guests,
		TotalPrice: total,
	}
	// The repository re-checks availability and inserts in one transaction;
	// a lost race surfaces here as ErrConflict with no row written.
	if err := s.bookings.CreateBooking(ctx, &b); err != nil {
		return domain.Booking{}, err
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, dashboardKey(room.Hotel.ID))
	}
	s.publishCreated(ctx, b)
	return b, nil
}

func (s *BookingService) publishCreated(ctx context.Context, b domain.Booking) {
	if s.events == nil {
		return
	}
	ev := domain.BookingCreatedEvent{
		BookingID:  b.ID,
		Reference:  b.Reference,
		UserID:     b.UserID,
		RoomID:     b.RoomID,
		HotelID:    b.HotelID,
		CheckIn:    b.CheckIn.Format(domain.DateLayout),
		CheckOut:   b.CheckOut.Format(domain.DateLayout),
		Guests:     b.Guests,
		TotalPrice: b.TotalPrice,
		CreatedAt:  b.CreatedAt,
	}
	// Delivery is a collaborator concern; a failed publish never fails the booking.
	if err := s.events.BookingCreated(ctx, ev); err != nil {
		log.Warn().Err(err).Str("reference", b.Reference).Msg("booking event publish failed")
	}
}

func (s *BookingService) CheckAvailability(ctx context.Context, in CheckAvailabilityInput) (bool, error) {
	if err := validate.Struct(in); err != nil {
		return false, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	checkIn, checkOut, err := parseStay(in.CheckIn, in.CheckOut)
	if err != nil {
		return false, err
	}
	return s.bookings.IsRoomAvailable(ctx, in.RoomID, checkIn, checkOut)
}

func (s *BookingService) UserBookings(ctx context.Context, userID string) ([]domain.BookingView, error) {
	return s.bookings.ListBookingsByUser(ctx, userID)
}

// HotelDashboard returns the owner's bookings newest first with revenue
// totals. Restricted to the hotel's owner by construction: the hotel is
// looked up by the authenticated owner id.
func (s *BookingService) HotelDashboard(ctx context.Context, ownerID string) (Dashboard, error) {
	hotel, err := s.rooms.GetHotelByOwner(ctx, ownerID)
	if err != nil {
		return Dashboard{}, err
	}

	key := dashboardKey(hotel.ID)
	var d Dashboard
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &d); ok {
			return d, nil
		}
	}

	bookings, err := s.bookings.ListBookingsByHotel(ctx, hotel.ID)
	if err != nil {
		return Dashboard{}, err
	}
	d = Dashboard{TotalBookings: len(bookings), Bookings: bookings}
	for _, b := range bookings {
		d.TotalRevenue += b.TotalPrice
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, d, s.cacheTTL)
	}
	return d, nil
}

func dashboardKey(hotelID int64) string { return fmt.Sprintf("dashboard:%d", hotelID) }
