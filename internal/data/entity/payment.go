package entity

import (
	"time"
)

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Payment is owned by the payment gateway integration; the booking flow only
// reads it to verify a successful charge exists.
type Payment struct {
	BaseSimple
	UserID     int64         `db:"user_id"`
	ScheduleID int64         `db:"schedule_id"`
	TravelDate time.Time     `db:"travel_date"`
	Amount     float64       `db:"amount"`
	Status     PaymentStatus `db:"status"`
}
