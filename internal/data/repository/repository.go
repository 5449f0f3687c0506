package repository

import (
	"bus-reservation/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Bus         BusRepository
	Schedule    ScheduleRepository
	Reservation ReservationRepository
	Payment     PaymentRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Bus:         NewBusRepository(db, log),
		Schedule:    NewScheduleRepository(db, log),
		Reservation: NewReservationRepository(db, log),
		Payment:     NewPaymentRepository(db, log),
	}
}
