package mysql

const insertHotelSQL = `
INSERT INTO hotels (owner_id, name, address, city, contact)
VALUES (?, ?, ?, ?, ?)
`

const selectHotelByOwnerSQL = `
SELECT id, owner_id, name, address, city, contact
FROM hotels
WHERE owner_id = ?
`

const insertRoomSQL = `
INSERT INTO rooms (hotel_id, room_type, price_per_night, amenities, images, is_available)
VALUES (?, ?, ?, ?, ?, ?)
`

// Room reads resolve the owning hotel in one explicit join; nothing in the
// engine chases references after the fact.
const selectRoomSQL = `
SELECT
  r.id, r.hotel_id, r.room_type, r.price_per_night, r.amenities, r.images,
  r.is_available, r.created_at,
  h.id, h.owner_id, h.name, h.address, h.city, h.contact
FROM rooms r
JOIN hotels h ON h.id = r.hotel_id
WHERE r.id = ?
`

const selectAvailableRoomsSQL = `
SELECT
  r.id, r.hotel_id, r.room_type, r.price_per_night, r.amenities, r.images,
  r.is_available, r.created_at,
  h.id, h.owner_id, h.name, h.address, h.city, h.contact
FROM rooms r
JOIN hotels h ON h.id = r.hotel_id
WHERE r.is_available = 1
ORDER BY r.created_at DESC, r.id DESC
`

const selectRoomsByHotelSQL = `
SELECT
  r.id, r.hotel_id, r.room_type, r.price_per_night, r.amenities, r.images,
  r.is_available, r.created_at,
  h.id, h.owner_id, h.name, h.address, h.city, h.contact
FROM rooms r
JOIN hotels h ON h.id = r.hotel_id
WHERE r.hotel_id = ?
ORDER BY r.created_at DESC, r.id DESC
`

const toggleRoomSQL = `
UPDATE rooms SET is_available = NOT is_available WHERE id = ?
`

const selectRoomFlagSQL = `
SELECT is_available FROM rooms WHERE id = ?
`

// lockRoomSQL pins the room row for the duration of the booking transaction.
// The lock scope is this one room; bookings on other rooms proceed untouched.
const lockRoomSQL = `
SELECT id FROM rooms WHERE id = ? FOR UPDATE
`

// Half-open overlap: [a1,a2) and [b1,b2) intersect iff a1 < b2 AND b1 < a2.
// Bound as (room_id, requested check-out, requested check-in).
const countOverlappingSQL = `
SELECT COUNT(*) FROM bookings
WHERE room_id = ? AND check_in < ? AND check_out > ?
`

const insertBookingSQL = `
INSERT INTO bookings
  (reference, user_id, room_id, hotel_id, check_in, check_out, guests, total_price)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

const selectBookingCreatedAtSQL = `
SELECT created_at FROM bookings WHERE id = ?
`

const bookingViewColumns = `
  b.id, b.reference, b.user_id, b.room_id, b.hotel_id,
  b.check_in, b.check_out, b.guests, b.total_price, b.created_at,
  r.id, r.hotel_id, r.room_type, r.price_per_night, r.amenities, r.images,
  r.is_available, r.created_at,
  h.id, h.owner_id, h.name, h.address, h.city, h.contact
`

const selectBookingsByUserSQL = `
SELECT` + bookingViewColumns + `
FROM bookings b
JOIN rooms  r ON r.id = b.room_id
JOIN hotels h ON h.id = b.hotel_id
WHERE b.user_id = ?
ORDER BY b.created_at DESC, b.id DESC
`

const selectBookingsByHotelSQL = `
SELECT` + bookingViewColumns + `
FROM bookings b
JOIN rooms  r ON r.id = b.room_id
JOIN hotels h ON h.id = b.hotel_id
WHERE b.hotel_id = ?
ORDER BY b.created_at DESC, b.id DESC
`
