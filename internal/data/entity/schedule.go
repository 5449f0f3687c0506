package entity

import (
	"time"
)

// Schedule is one dated departure of a bus. CapacityRemaining and Income are
// mutated only inside the booking transaction; CapacityRemaining never goes
// below zero.
type Schedule struct {
	Base
	BusID             int64     `db:"bus_id"`
	TravelDate        time.Time `db:"travel_date"`
	DepartureTime     time.Time `db:"departure_time"`
	CapacityRemaining int       `db:"capacity_remaining"`
	Income            float64   `db:"income"`
}
