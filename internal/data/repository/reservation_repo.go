package repository

import (
	"context"
	"fmt"

	"bus-reservation/internal/data/entity"
	"bus-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Unique index names from migrations/0001_init.sql; the booking transaction
// maps violations of these back to typed errors.
const (
	UniqueScheduleSeat = "uq_reservations_schedule_seat"
	UniqueUserSchedule = "uq_reservations_user_schedule"
)

type ReservationRepository interface {
	// Transactional operations; q must be the booking transaction.
	Insert(ctx context.Context, q database.Queryer, reservation *entity.Reservation) error
	ExistsByUserAndSchedule(ctx context.Context, q database.Queryer, userID, scheduleID int64) (bool, error)
	ExistsBySeat(ctx context.Context, q database.Queryer, scheduleID int64, seatNo string) (bool, error)

	// Read projections
	FindAll(ctx context.Context) ([]*entity.Reservation, error)
	FindByUserID(ctx context.Context, userID int64) ([]*entity.Reservation, error)
	FindByScheduleID(ctx context.Context, scheduleID int64) ([]*entity.Reservation, error)
	CountByScheduleID(ctx context.Context, scheduleID int64) (int64, error)
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

func (r *reservationRepository) Insert(ctx context.Context, q database.Queryer, reservation *entity.Reservation) error {
	query := `
		INSERT INTO reservations (code, travel_date, fare, seat_no, user_id, schedule_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		reservation.Code,
		reservation.TravelDate,
		reservation.Fare,
		reservation.SeatNo,
		reservation.UserID,
		reservation.ScheduleID,
		reservation.CreatedAt,
	).Scan(&reservation.ID)

	if err != nil {
		r.log.Error("Failed to insert reservation",
			zap.Error(err),
			zap.String("code", reservation.Code),
			zap.Int64("user_id", reservation.UserID),
			zap.Int64("schedule_id", reservation.ScheduleID),
			zap.String("seat_no", reservation.SeatNo),
		)
		return fmt.Errorf("insert reservation %s: %w", reservation.Code, err)
	}

	return nil
}

func (r *reservationRepository) ExistsByUserAndSchedule(ctx context.Context, q database.Queryer, userID, scheduleID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reservations WHERE user_id = $1 AND schedule_id = $2)`

	var exists bool
	err := q.QueryRow(ctx, query, userID, scheduleID).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check reservation by user and schedule",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.Int64("schedule_id", scheduleID),
		)
		return false, fmt.Errorf("check reservation for user %d on schedule %d: %w", userID, scheduleID, err)
	}

	return exists, nil
}

func (r *reservationRepository) ExistsBySeat(ctx context.Context, q database.Queryer, scheduleID int64, seatNo string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reservations WHERE schedule_id = $1 AND seat_no = $2)`

	var exists bool
	err := q.QueryRow(ctx, query, scheduleID, seatNo).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check reservation by seat",
			zap.Error(err),
			zap.Int64("schedule_id", scheduleID),
			zap.String("seat_no", seatNo),
		)
		return false, fmt.Errorf("check seat %s on schedule %d: %w", seatNo, scheduleID, err)
	}

	return exists, nil
}

func (r *reservationRepository) FindAll(ctx context.Context) ([]*entity.Reservation, error) {
	query := `
		SELECT id, code, travel_date, fare, seat_no, user_id, schedule_id, created_at
		FROM reservations
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find reservations", zap.Error(err))
		return nil, fmt.Errorf("find reservations: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

func (r *reservationRepository) FindByUserID(ctx context.Context, userID int64) ([]*entity.Reservation, error) {
	query := `
		SELECT id, code, travel_date, fare, seat_no, user_id, schedule_id, created_at
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to find reservations by user ID",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return nil, fmt.Errorf("find reservations by user ID %d: %w", userID, err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

func (r *reservationRepository) FindByScheduleID(ctx context.Context, scheduleID int64) ([]*entity.Reservation, error) {
	query := `
		SELECT id, code, travel_date, fare, seat_no, user_id, schedule_id, created_at
		FROM reservations
		WHERE schedule_id = $1
		ORDER BY seat_no
	`

	rows, err := r.db.Query(ctx, query, scheduleID)
	if err != nil {
		r.log.Error("Failed to find reservations by schedule ID",
			zap.Error(err),
			zap.Int64("schedule_id", scheduleID),
		)
		return nil, fmt.Errorf("find reservations by schedule ID %d: %w", scheduleID, err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

func (r *reservationRepository) CountByScheduleID(ctx context.Context, scheduleID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE schedule_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, scheduleID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reservations by schedule ID",
			zap.Error(err),
			zap.Int64("schedule_id", scheduleID),
		)
		return 0, fmt.Errorf("count reservations by schedule ID %d: %w", scheduleID, err)
	}

	return count, nil
}

func (r *reservationRepository) scanMany(rows pgx.Rows) ([]*entity.Reservation, error) {
	var reservations []*entity.Reservation
	for rows.Next() {
		var reservation entity.Reservation
		err := rows.Scan(
			&reservation.ID,
			&reservation.Code,
			&reservation.TravelDate,
			&reservation.Fare,
			&reservation.SeatNo,
			&reservation.UserID,
			&reservation.ScheduleID,
			&reservation.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, &reservation)
	}

	return reservations, nil
}
