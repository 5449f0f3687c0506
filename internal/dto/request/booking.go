package request

type CreateReservationRequest struct {
	UserID     int64   `json:"user_id" validate:"required,gt=0"`
	ScheduleID int64   `json:"schedule_id" validate:"required,gt=0"`
	TravelDate string  `json:"travel_date" validate:"required,datetime=2006-01-02"`
	SeatNo     string  `json:"seat_no" validate:"required,max=8"`
	Fare       float64 `json:"fare" validate:"required,gt=0"`
}
