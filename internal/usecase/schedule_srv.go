package usecase

import (
	"context"
	"fmt"
	"time"

	"bus-reservation/internal/data/entity"
	"bus-reservation/internal/data/repository"
	"bus-reservation/internal/dto/request"
	"bus-reservation/internal/dto/response"
	"bus-reservation/pkg/utils"

	"go.uber.org/zap"
)

type ScheduleService interface {
	CreateBus(ctx context.Context, req *request.CreateBusRequest) (*response.BusResponse, error)
	ListBuses(ctx context.Context) ([]response.BusResponse, error)

	CreateSchedule(ctx context.Context, req *request.CreateScheduleRequest) (*response.ScheduleResponse, error)
	GetSchedule(ctx context.Context, scheduleID int64) (*response.ScheduleResponse, error)

	// ListSchedules returns all schedules, or only those departing on the
	// given date when date is non-empty (format 2006-01-02).
	ListSchedules(ctx context.Context, date string) ([]response.ScheduleResponse, error)
}

type scheduleService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewScheduleService(repo *repository.Repository, log *zap.Logger) ScheduleService {
	return &scheduleService{
		repo: repo,
		log:  log.With(zap.String("service", "schedule")),
	}
}

func (s *scheduleService) CreateBus(ctx context.Context, req *request.CreateBusRequest) (*response.BusResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create bus validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	bus := &entity.Bus{
		Base: entity.Base{
			CreatedAt: now,
			UpdatedAt: now,
		},
		Code:     req.Code,
		Operator: req.Operator,
		Seats:    req.Seats,
	}

	if err := s.repo.Bus.Create(ctx, bus); err != nil {
		return nil, fmt.Errorf("create bus: %w", err)
	}

	s.log.Info("Bus created",
		zap.Int64("bus_id", bus.ID),
		zap.String("code", bus.Code),
		zap.Int("seats", bus.Seats),
	)

	resp := response.BusToResponse(bus)
	return &resp, nil
}

func (s *scheduleService) ListBuses(ctx context.Context) ([]response.BusResponse, error) {
	buses, err := s.repo.Bus.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list buses", zap.Error(err))
		return nil, fmt.Errorf("list buses: %w", err)
	}

	return response.BusesToResponse(buses), nil
}

func (s *scheduleService) CreateSchedule(ctx context.Context, req *request.CreateScheduleRequest) (*response.ScheduleResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create schedule validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	travelDate, err := time.Parse("2006-01-02", req.TravelDate)
	if err != nil {
		return nil, fmt.Errorf("invalid travel date %s: %w", req.TravelDate, err)
	}

	departureClock, err := time.Parse("15:04", req.DepartureTime)
	if err != nil {
		return nil, fmt.Errorf("invalid departure time %s: %w", req.DepartureTime, err)
	}

	bus, err := s.repo.Bus.FindByID(ctx, req.BusID)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, fmt.Errorf("bus %d not found", req.BusID)
	}

	departureTime := time.Date(
		travelDate.Year(), travelDate.Month(), travelDate.Day(),
		departureClock.Hour(), departureClock.Minute(), 0, 0, time.UTC,
	)

	now := time.Now()
	schedule := &entity.Schedule{
		Base: entity.Base{
			CreatedAt: now,
			UpdatedAt: now,
		},
		BusID:             req.BusID,
		TravelDate:        travelDate,
		DepartureTime:     departureTime,
		CapacityRemaining: bus.Seats,
		Income:            0,
	}

	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}

	s.log.Info("Schedule created",
		zap.Int64("schedule_id", schedule.ID),
		zap.Int64("bus_id", req.BusID),
		zap.String("travel_date", req.TravelDate),
		zap.Int("capacity", schedule.CapacityRemaining),
	)

	resp := response.ScheduleToResponse(schedule)
	return &resp, nil
}

func (s *scheduleService) GetSchedule(ctx context.Context, scheduleID int64) (*response.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}

	resp := response.ScheduleToResponse(schedule)
	return &resp, nil
}

func (s *scheduleService) ListSchedules(ctx context.Context, date string) ([]response.ScheduleResponse, error) {
	if date != "" {
		travelDate, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("invalid travel date %s: %w", date, err)
		}

		schedules, err := s.repo.Schedule.FindByDate(ctx, travelDate)
		if err != nil {
			s.log.Error("Failed to list schedules by date",
				zap.Error(err),
				zap.String("travel_date", date),
			)
			return nil, fmt.Errorf("list schedules for %s: %w", date, err)
		}
		return response.SchedulesToResponse(schedules), nil
	}

	schedules, err := s.repo.Schedule.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list schedules", zap.Error(err))
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	return response.SchedulesToResponse(schedules), nil
}
