package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bus-reservation/internal/data/entity"
	"bus-reservation/internal/data/repository"
	"bus-reservation/internal/dto/request"
	"bus-reservation/internal/dto/response"
	"bus-reservation/internal/events"
	"bus-reservation/pkg/database"
	"bus-reservation/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Postgres error codes the booking transaction has to recognize.
const (
	pgUniqueViolation  = "23505"
	pgLockNotAvailable = "55P03"
)

type BookingService interface {
	// Book runs the booking transaction: validates the four preconditions
	// under an exclusive schedule row lock and, if they hold, atomically
	// decrements capacity, accumulates income and inserts the reservation.
	Book(ctx context.Context, req *request.CreateReservationRequest) (*response.ReservationResponse, error)

	// Read projections
	ListReservations(ctx context.Context) ([]response.ReservationResponse, error)
	ListUserReservations(ctx context.Context, userID int64) ([]response.ReservationResponse, error)
	ListScheduleReservations(ctx context.Context, scheduleID int64) ([]response.ReservationResponse, error)
}

type bookingService struct {
	db          database.PgxIface
	repo        *repository.Repository
	publisher   events.Publisher
	lockTimeout time.Duration
	log         *zap.Logger
}

func NewBookingService(
	db database.PgxIface,
	repo *repository.Repository,
	publisher events.Publisher,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		db:          db,
		repo:        repo,
		publisher:   publisher,
		lockTimeout: config.Booking.LockTimeout,
		log:         log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) Book(ctx context.Context, req *request.CreateReservationRequest) (*response.ReservationResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Book validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	travelDate, err := time.Parse("2006-01-02", req.TravelDate)
	if err != nil {
		return nil, fmt.Errorf("invalid travel date %s: %w", req.TravelDate, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to begin booking transaction", zap.Error(err))
		return nil, fmt.Errorf("begin booking transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer tx.Rollback(ctx)

	// Bound the wait for the schedule row lock; a blocked booking surfaces a
	// retryable error instead of queueing forever.
	lockStmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, lockStmt); err != nil {
		return nil, fmt.Errorf("set lock timeout: %w", err)
	}

	// Exclusive lock on the schedule row. Every read below happens under this
	// lock and inside the same transaction.
	schedule, err := s.repo.Schedule.FindByIDForUpdate(ctx, tx, req.ScheduleID)
	if err != nil {
		return nil, s.mapLockError(err, req.ScheduleID)
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}

	// Precondition 1: one reservation per user per schedule. Also makes a
	// resubmitted request fail deterministically instead of double-booking.
	taken, err := s.repo.Reservation.ExistsByUserAndSchedule(ctx, tx, req.UserID, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateBooking
	}

	// Precondition 2: seats left. Zero remaining means sold out.
	if schedule.CapacityRemaining <= 0 {
		return nil, ErrNoCapacity
	}

	// Precondition 3: a successful payment must already exist.
	paid, err := s.repo.Payment.HasSuccessful(ctx, tx, req.UserID, req.ScheduleID, travelDate)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, ErrPaymentMissing
	}

	// Precondition 4: seat still free on this schedule.
	seatTaken, err := s.repo.Reservation.ExistsBySeat(ctx, tx, req.ScheduleID, req.SeatNo)
	if err != nil {
		return nil, err
	}
	if seatTaken {
		return nil, ErrSeatTaken
	}

	if err := s.repo.Schedule.ApplyBooking(ctx, tx, req.ScheduleID, req.Fare); err != nil {
		return nil, err
	}

	reservation := &entity.Reservation{
		BaseSimple: entity.BaseSimple{
			CreatedAt: time.Now(),
		},
		Code:       utils.GenerateReservationCode(),
		TravelDate: travelDate,
		Fare:       req.Fare,
		SeatNo:     req.SeatNo,
		UserID:     req.UserID,
		ScheduleID: req.ScheduleID,
	}

	if err := s.repo.Reservation.Insert(ctx, tx, reservation); err != nil {
		// The unique indexes are the last line of defense if the isolation
		// level let a racing insert through; surface the typed error, not the
		// raw constraint violation.
		return nil, s.mapConstraintError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit booking transaction",
			zap.Error(err),
			zap.Int64("user_id", req.UserID),
			zap.Int64("schedule_id", req.ScheduleID),
		)
		return nil, fmt.Errorf("commit booking transaction: %w", err)
	}

	s.log.Info("Reservation created",
		zap.Int64("reservation_id", reservation.ID),
		zap.String("code", reservation.Code),
		zap.Int64("user_id", req.UserID),
		zap.Int64("schedule_id", req.ScheduleID),
		zap.String("seat_no", req.SeatNo),
		zap.Float64("fare", req.Fare),
	)

	// The booking is committed; a publish failure only loses the notification.
	if s.publisher != nil {
		if err := s.publisher.PublishReservationCreated(ctx, events.ReservationCreatedFrom(reservation)); err != nil {
			s.log.Warn("Failed to publish reservation event",
				zap.Error(err),
				zap.String("code", reservation.Code),
			)
		}
	}

	resp := response.ReservationToResponse(reservation)
	return &resp, nil
}

func (s *bookingService) ListReservations(ctx context.Context) ([]response.ReservationResponse, error) {
	reservations, err := s.repo.Reservation.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list reservations", zap.Error(err))
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	return response.ReservationsToResponse(reservations), nil
}

func (s *bookingService) ListUserReservations(ctx context.Context, userID int64) ([]response.ReservationResponse, error) {
	reservations, err := s.repo.Reservation.FindByUserID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to list user reservations",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return nil, fmt.Errorf("list reservations for user %d: %w", userID, err)
	}

	return response.ReservationsToResponse(reservations), nil
}

func (s *bookingService) ListScheduleReservations(ctx context.Context, scheduleID int64) ([]response.ReservationResponse, error) {
	reservations, err := s.repo.Reservation.FindByScheduleID(ctx, scheduleID)
	if err != nil {
		s.log.Error("Failed to list schedule reservations",
			zap.Error(err),
			zap.Int64("schedule_id", scheduleID),
		)
		return nil, fmt.Errorf("list reservations for schedule %d: %w", scheduleID, err)
	}

	return response.ReservationsToResponse(reservations), nil
}

// mapLockError converts a lock wait expiry into the retryable LockTimeout
// error; anything else passes through.
func (s *bookingService) mapLockError(err error, scheduleID int64) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		s.log.Warn("Schedule row lock timed out",
			zap.Int64("schedule_id", scheduleID),
			zap.Duration("lock_timeout", s.lockTimeout),
		)
		return ErrLockTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrLockTimeout
	}
	return err
}

// mapConstraintError remaps unique-index violations on the reservation insert
// to the matching typed error.
func (s *bookingService) mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case repository.UniqueUserSchedule:
			return ErrDuplicateBooking
		case repository.UniqueScheduleSeat:
			return ErrSeatTaken
		default:
			return ErrSeatTaken
		}
	}
	return err
}
