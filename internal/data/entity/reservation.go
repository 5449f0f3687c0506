package entity

import (
	"time"
)

// Reservation is one sold seat. Unique per (user, schedule) and per
// (schedule, seat); immutable once created.
type Reservation struct {
	BaseSimple
	Code       string    `db:"code"`
	TravelDate time.Time `db:"travel_date"`
	Fare       float64   `db:"fare"`
	SeatNo     string    `db:"seat_no"`
	UserID     int64     `db:"user_id"`
	ScheduleID int64     `db:"schedule_id"`
}
