package domain

import (
	"math"
	"time"
)

// Nights returns the number of billable nights between two stay dates.
// The difference is taken on calendar dates so time-of-day or zone
// components of the inputs cannot skew it, rounded up, with a floor of
// one night. The floor is unreachable once checkIn < checkOut is enforced
// upstream but stays as an explicit invariant: nights >= 1 always.
func Nights(checkIn, checkOut time.Time) int {
	days := DateOf(checkOut).Sub(DateOf(checkIn)).Hours() / 24
	n := int(math.Ceil(days))
	if n < 1 {
		n = 1
	}
	return n
}

// Quote prices a stay: total = nights * nightly rate, exact in cents.
func Quote(pricePerNight int64, checkIn, checkOut time.Time) (nights int, total int64) {
	nights = Nights(checkIn, checkOut)
	return nights, int64(nights) * pricePerNight
}
