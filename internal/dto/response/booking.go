package response

import (
	"time"

	"bus-reservation/internal/data/entity"
)

type ReservationResponse struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	TravelDate string    `json:"travel_date"`
	Fare       float64   `json:"fare"`
	SeatNo     string    `json:"seat_no"`
	UserID     int64     `json:"user_id"`
	ScheduleID int64     `json:"schedule_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func ReservationToResponse(reservation *entity.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:         reservation.ID,
		Code:       reservation.Code,
		TravelDate: reservation.TravelDate.Format("2006-01-02"),
		Fare:       reservation.Fare,
		SeatNo:     reservation.SeatNo,
		UserID:     reservation.UserID,
		ScheduleID: reservation.ScheduleID,
		CreatedAt:  reservation.CreatedAt,
	}
}

func ReservationsToResponse(reservations []*entity.Reservation) []ReservationResponse {
	responses := make([]ReservationResponse, len(reservations))
	for i, reservation := range reservations {
		responses[i] = ReservationToResponse(reservation)
	}
	return responses
}
