package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"quickstay/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// ---- hotels ----

func (r *Repo) CreateHotel(ctx context.Context, h *domain.Hotel) error {
	res, err := r.db.ExecContext(ctx, insertHotelSQL,
		h.OwnerID, h.Name, h.Address, valStr(h.City), valStr(h.Contact))
	if err != nil {
		return err
	}
	h.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) GetHotelByOwner(ctx context.Context, ownerID string) (domain.Hotel, error) {
	var (
		h             domain.Hotel
		city, contact sql.NullString
	)
	err := r.db.QueryRowContext(ctx, selectHotelByOwnerSQL, ownerID).
		Scan(&h.ID, &h.OwnerID, &h.Name, &h.Address, &city, &contact)
	if err == sql.ErrNoRows {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, err
	}
	h.City = nullToPtr(city)
	h.Contact = nullToPtr(contact)
	return h, nil
}

// ---- rooms ----

func (r *Repo) CreateRoom(ctx context.Context, rm *domain.Room) error {
	amen, _ := json.Marshal(rm.Amenities)
	imgs, _ := json.Marshal(rm.Images)
	res, err := r.db.ExecContext(ctx, insertRoomSQL,
		rm.HotelID, rm.RoomType, rm.PricePerNight, string(amen), string(imgs), rm.IsAvailable)
	if err != nil {
		return err
	}
	rm.ID, err = res.LastInsertId()
	return err
}

func scanRoomView(sc interface{ Scan(...any) error }) (domain.RoomView, error) {
	var (
		rv                       domain.RoomView
		amenitiesJSON, imagesJSON []byte
		city, contact            sql.NullString
	)
	if err := sc.Scan(
		&rv.Room.ID, &rv.Room.HotelID, &rv.RoomType, &rv.PricePerNight,
		&amenitiesJSON, &imagesJSON, &rv.IsAvailable, &rv.Room.CreatedAt,
		&rv.Hotel.ID, &rv.Hotel.OwnerID, &rv.Hotel.Name, &rv.Hotel.Address,
		&city, &contact,
	); err != nil {
		return domain.RoomView{}, err
	}
	_ = json.Unmarshal(amenitiesJSON, &rv.Amenities)
	_ = json.Unmarshal(imagesJSON, &rv.Images)
	rv.Hotel.City = nullToPtr(city)
	rv.Hotel.Contact = nullToPtr(contact)
	return rv, nil
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.RoomView, error) {
	rv, err := scanRoomView(r.db.QueryRowContext(ctx, selectRoomSQL, id))
	if err == sql.ErrNoRows {
		return domain.RoomView{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) listRooms(ctx context.Context, query string, args ...any) ([]domain.RoomView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoomView
	for rows.Next() {
		rv, err := scanRoomView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) ListAvailableRooms(ctx context.Context) ([]domain.RoomView, error) {
	return r.listRooms(ctx, selectAvailableRoomsSQL)
}

func (r *Repo) ListRoomsByHotel(ctx context.Context, hotelID int64) ([]domain.RoomView, error) {
	return r.listRooms(ctx, selectRoomsByHotelSQL, hotelID)
}

func (r *Repo) ToggleRoomAvailability(ctx context.Context, roomID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, toggleRoomSQL, roomID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, domain.ErrNotFound
	}
	var flag bool
	if err := tx.QueryRowContext(ctx, selectRoomFlagSQL, roomID).Scan(&flag); err != nil {
		return false, err
	}
	return flag, tx.Commit()
}

// ---- bookings ----

// CreateBooking holds the room's row lock while it re-checks for an
// overlapping booking and inserts the new one, so two concurrent requests
// for the same room serialize and at most one survives the overlap check.
func (r *Repo) CreateBooking(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var roomID int64
	if err := tx.QueryRowContext(ctx, lockRoomSQL, b.RoomID).Scan(&roomID); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return err
	}

	var overlapping int
	if err := tx.QueryRowContext(ctx, countOverlappingSQL,
		b.RoomID, b.CheckOut, b.CheckIn).Scan(&overlapping); err != nil {
		return err
	}
	if overlapping > 0 {
		return domain.ErrConflict
	}

	res, err := tx.ExecContext(ctx, insertBookingSQL,
		b.Reference, b.UserID, b.RoomID, b.HotelID,
		b.CheckIn, b.CheckOut, b.Guests, b.TotalPrice)
	if err != nil {
		return err
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx, selectBookingCreatedAtSQL, b.ID).Scan(&b.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repo) IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	var overlapping int
	err := r.db.QueryRowContext(ctx, countOverlappingSQL, roomID, checkOut, checkIn).Scan(&overlapping)
	if err != nil {
		return false, err
	}
	return overlapping == 0, nil
}

func (r *Repo) listBookings(ctx context.Context, query string, arg any) ([]domain.BookingView, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BookingView
	for rows.Next() {
		var (
			bv                        domain.BookingView
			amenitiesJSON, imagesJSON []byte
			city, contact             sql.NullString
		)
		if err := rows.Scan(
			&bv.Booking.ID, &bv.Reference, &bv.UserID, &bv.Booking.RoomID, &bv.Booking.HotelID,
			&bv.CheckIn, &bv.CheckOut, &bv.Guests, &bv.TotalPrice, &bv.Booking.CreatedAt,
			&bv.Room.ID, &bv.Room.HotelID, &bv.Room.RoomType, &bv.Room.PricePerNight,
			&amenitiesJSON, &imagesJSON, &bv.Room.IsAvailable, &bv.Room.CreatedAt,
			&bv.Hotel.ID, &bv.Hotel.OwnerID, &bv.Hotel.Name, &bv.Hotel.Address,
			&city, &contact,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(amenitiesJSON, &bv.Room.Amenities)
		_ = json.Unmarshal(imagesJSON, &bv.Room.Images)
		bv.Hotel.City = nullToPtr(city)
		bv.Hotel.Contact = nullToPtr(contact)
		out = append(out, bv)
	}
	return out, rows.Err()
}

func (r *Repo) ListBookingsByUser(ctx context.Context, userID string) ([]domain.BookingView, error) {
	return r.listBookings(ctx, selectBookingsByUserSQL, userID)
}

func (r *Repo) ListBookingsByHotel(ctx context.Context, hotelID int64) ([]domain.BookingView, error) {
	return r.listBookings(ctx, selectBookingsByHotelSQL, hotelID)
}
