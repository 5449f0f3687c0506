package usecase

import (
	"errors"
)

// BookingError is a terminal, user-facing booking failure. Code is the stable
// machine-readable identifier; Message is the human-readable text. The API
// layer picks the HTTP status from Code.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return e.Message
}

var (
	ErrDuplicateBooking = &BookingError{Code: "DUPLICATE_BOOKING", Message: "user already holds a reservation on this schedule"}
	ErrNoCapacity       = &BookingError{Code: "NO_CAPACITY", Message: "no seats remaining on this schedule"}
	ErrPaymentMissing   = &BookingError{Code: "PAYMENT_MISSING", Message: "no successful payment found for this booking"}
	ErrSeatTaken        = &BookingError{Code: "SEAT_TAKEN", Message: "seat already taken"}
	ErrScheduleNotFound = &BookingError{Code: "SCHEDULE_NOT_FOUND", Message: "schedule not found"}

	// ErrLockTimeout is the only booking error callers should retry.
	ErrLockTimeout = &BookingError{Code: "LOCK_TIMEOUT", Message: "schedule is busy, retry the booking"}
)

// AsBookingError unwraps err to a *BookingError if one is in the chain.
func AsBookingError(err error) (*BookingError, bool) {
	var bookingErr *BookingError
	if errors.As(err, &bookingErr) {
		return bookingErr, true
	}
	return nil, false
}
