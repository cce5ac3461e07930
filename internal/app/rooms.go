package app

import (
	"context"
	"fmt"

	"quickstay/internal/domain"
)

const availableRoomsKey = "rooms:available"

// RoomService covers room provisioning and the owner's manual availability
// toggle. The toggle is orthogonal to date-range occupancy: it takes a room
// fully offline and never consults bookings.
type RoomService struct {
	repo     domain.RoomRepository
	cache    domain.Cache
	cacheTTL int // seconds
}

func NewRoomService(repo domain.RoomRepository, cache domain.Cache, cacheTTLSec int) *RoomService {
	return &RoomService{repo: repo, cache: cache, cacheTTL: cacheTTLSec}
}

type CreateRoomInput struct {
	RoomType      string   `json:"roomType" validate:"required"`
	PricePerNight int64    `json:"pricePerNight" validate:"required,gt=0"`
	Amenities     []string `json:"amenities" validate:"required"`
	Images        []string `json:"images"`
}

func (s *RoomService) CreateRoom(ctx context.Context, ownerID string, in CreateRoomInput) (domain.Room, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Room{}, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	hotel, err := s.repo.GetHotelByOwner(ctx, ownerID)
	if err != nil {
		return domain.Room{}, err
	}

	room := domain.Room{
		HotelID:       hotel.ID,
		RoomType:      in.RoomType,
		PricePerNight: in.PricePerNight,
		Amenities:     in.Amenities,
		Images:        in.Images,
		IsAvailable:   true,
	}
	if err := s.repo.CreateRoom(ctx, &room); err != nil {
		return domain.Room{}, err
	}
	s.invalidateListing(ctx)
	return room, nil
}

func (s *RoomService) ListAvailableRooms(ctx context.Context) ([]domain.RoomView, error) {
	var out []domain.RoomView
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, availableRoomsKey, &out); ok {
			return out, nil
		}
	}
	out, err := s.repo.ListAvailableRooms(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, availableRoomsKey, out, s.cacheTTL)
	}
	return out, nil
}

func (s *RoomService) OwnerRooms(ctx context.Context, ownerID string) ([]domain.RoomView, error) {
	hotel, err := s.repo.GetHotelByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRoomsByHotel(ctx, hotel.ID)
}

// ToggleAvailability flips the manual flag on one of the owner's rooms and
// returns the new value. Two calls return the flag to its original state.
func (s *RoomService) ToggleAvailability(ctx context.Context, ownerID string, roomID int64) (bool, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	if room.Hotel.OwnerID != ownerID {
		return false, domain.ErrForbidden
	}
	flag, err := s.repo.ToggleRoomAvailability(ctx, roomID)
	if err != nil {
		return false, err
	}
	s.invalidateListing(ctx)
	return flag, nil
}

func (s *RoomService) invalidateListing(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, availableRoomsKey)
	}
}
