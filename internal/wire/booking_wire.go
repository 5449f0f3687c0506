package wire

import (
	"bus-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler) {
	// POST /api/reservations - run the booking transaction
	r.Post("/api/reservations", bookingHandler.CreateReservation)

	// GET /api/reservations - all reservations
	r.Get("/api/reservations", bookingHandler.ListReservations)

	// GET /api/users/{id}/reservations - reservations held by one user
	r.Get("/api/users/{id}/reservations", bookingHandler.ListUserReservations)

	// GET /api/schedules/{id}/reservations - sold seats on one schedule
	r.Get("/api/schedules/{id}/reservations", bookingHandler.ListScheduleReservations)
}
