package usecase

import (
	"bus-reservation/internal/data/repository"
	"bus-reservation/internal/events"
	"bus-reservation/pkg/database"
	"bus-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Booking  BookingService
	Schedule ScheduleService
}

func NewService(
	db database.PgxIface,
	repo *repository.Repository,
	publisher events.Publisher,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Booking:  NewBookingService(db, repo, publisher, config, log),
		Schedule: NewScheduleService(repo, log),
	}
}
