package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"quickstay/internal/adapters/observability"
	"quickstay/internal/app"
	"quickstay/internal/domain"
)

type Handlers struct {
	B *app.BookingService
	R *app.RoomService

	// JWTSecret verifies tokens from the external auth provider.
	JWTSecret string
	// BookingLimit optionally rate-limits booking creation.
	BookingLimit func(http.Handler) http.Handler
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/rooms", h.listRooms)
	s.mux.Post("/v1/bookings/check-availability", h.checkAvailability)

	s.mux.Group(func(g chi.Router) {
		g.Use(Auth(h.JWTSecret))
		if h.BookingLimit != nil {
			g.With(h.BookingLimit).Post("/v1/bookings", h.createBooking)
		} else {
			g.Post("/v1/bookings", h.createBooking)
		}
		g.Get("/v1/me/bookings", h.myBookings)
		g.Get("/v1/owner/dashboard", h.ownerDashboard)
		g.Post("/v1/owner/rooms", h.createRoom)
		g.Get("/v1/owner/rooms", h.ownerRooms)
		g.Post("/v1/owner/rooms/{id}/toggle-availability", h.toggleRoom)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the engine's error taxonomy onto HTTP. Anything outside
// the taxonomy is logged in full and surfaced as a bare 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", "not your resource")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", "room is not available for the requested dates")
	default:
		log.Error().Err(err).Msg("internal error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// ---- response shapes ----

type hotelJSON struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    *string `json:"city,omitempty"`
	Contact *string `json:"contact,omitempty"`
}

type roomJSON struct {
	ID            int64      `json:"id"`
	HotelID       int64      `json:"hotelId"`
	RoomType      string     `json:"roomType"`
	PricePerNight int64      `json:"pricePerNight"`
	Amenities     []string   `json:"amenities"`
	Images        []string   `json:"images"`
	IsAvailable   bool       `json:"isAvailable"`
	Hotel         *hotelJSON `json:"hotel,omitempty"`
}

type bookingJSON struct {
	ID         int64      `json:"id"`
	Reference  string     `json:"reference"`
	UserID     string     `json:"userId"`
	RoomID     int64      `json:"roomId"`
	HotelID    int64      `json:"hotelId"`
	CheckIn    string     `json:"checkInDate"`
	CheckOut   string     `json:"checkOutDate"`
	Guests     int        `json:"guests"`
	TotalPrice int64      `json:"totalPrice"`
	CreatedAt  time.Time  `json:"createdAt"`
	Room       *roomJSON  `json:"room,omitempty"`
	Hotel      *hotelJSON `json:"hotel,omitempty"`
}

func toHotelJSON(h domain.Hotel) *hotelJSON {
	return &hotelJSON{ID: h.ID, Name: h.Name, Address: h.Address, City: h.City, Contact: h.Contact}
}

func toRoomJSON(r domain.Room) roomJSON {
	return roomJSON{
		ID: r.ID, HotelID: r.HotelID, RoomType: r.RoomType,
		PricePerNight: r.PricePerNight, Amenities: r.Amenities,
		Images: r.Images, IsAvailable: r.IsAvailable,
	}
}

func toRoomViewJSON(rv domain.RoomView) roomJSON {
	out := toRoomJSON(rv.Room)
	out.Hotel = toHotelJSON(rv.Hotel)
	return out
}

func toBookingJSON(b domain.Booking) bookingJSON {
	return bookingJSON{
		ID: b.ID, Reference: b.Reference, UserID: b.UserID,
		RoomID: b.RoomID, HotelID: b.HotelID,
		CheckIn:  b.CheckIn.Format(domain.DateLayout),
		CheckOut: b.CheckOut.Format(domain.DateLayout),
		Guests:   b.Guests, TotalPrice: b.TotalPrice, CreatedAt: b.CreatedAt,
	}
}

func toBookingViewJSON(bv domain.BookingView) bookingJSON {
	out := toBookingJSON(bv.Booking)
	room := toRoomJSON(bv.Room)
	out.Room = &room
	out.Hotel = toHotelJSON(bv.Hotel)
	return out
}

// ---- booking handlers ----

func (h *Handlers) checkAvailability(w http.ResponseWriter, r *http.Request) {
	var in app.CheckAvailabilityInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	ok, err := h.B.CheckAvailability(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isAvailable": ok})
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var in app.CreateBookingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	b, err := h.B.CreateBooking(r.Context(), UserID(r.Context()), in)
	if err != nil {
		observability.ObserveBooking(bookingOutcome(err))
		writeError(w, err)
		return
	}
	observability.ObserveBooking("created")
	writeJSON(w, http.StatusCreated, map[string]any{"booking": toBookingJSON(b)})
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (h *Handlers) myBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.B.UserBookings(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]bookingJSON, 0, len(bookings))
	for _, bv := range bookings {
		out = append(out, toBookingViewJSON(bv))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": out})
}

func (h *Handlers) ownerDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.B.HotelDashboard(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	bookings := make([]bookingJSON, 0, len(d.Bookings))
	for _, bv := range d.Bookings {
		bookings = append(bookings, toBookingViewJSON(bv))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalBookings": d.TotalBookings,
		"totalRevenue":  d.TotalRevenue,
		"bookings":      bookings,
	})
}

// ---- room handlers ----

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.R.ListAvailableRooms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]roomJSON, 0, len(rooms))
	for _, rv := range rooms {
		out = append(out, toRoomViewJSON(rv))
	}

	etag, body := calcETagAndBody(map[string]any{"rooms": out})
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listRooms body")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var in app.CreateRoomInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	room, err := h.R.CreateRoom(r.Context(), UserID(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"room": toRoomJSON(room)})
}

func (h *Handlers) ownerRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.R.OwnerRooms(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]roomJSON, 0, len(rooms))
	for _, rv := range rooms {
		out = append(out, toRoomViewJSON(rv))
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": out})
}

func (h *Handlers) toggleRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "room id must be a number")
		return
	}
	flag, err := h.R.ToggleAvailability(r.Context(), UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isAvailable": flag})
}
