package repository

import (
	"context"
	"fmt"
	"time"

	"bus-reservation/internal/data/entity"
	"bus-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.Schedule) error
	FindByID(ctx context.Context, id int64) (*entity.Schedule, error)
	FindAll(ctx context.Context) ([]*entity.Schedule, error)
	FindByDate(ctx context.Context, travelDate time.Time) ([]*entity.Schedule, error)

	// Transactional operations; q must be the booking transaction.
	FindByIDForUpdate(ctx context.Context, q database.Queryer, id int64) (*entity.Schedule, error)
	ApplyBooking(ctx context.Context, q database.Queryer, id int64, fare float64) error
}

type scheduleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewScheduleRepository(db database.PgxIface, log *zap.Logger) ScheduleRepository {
	return &scheduleRepository{
		db:  db,
		log: log.With(zap.String("repository", "schedule")),
	}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *entity.Schedule) error {
	query := `
		INSERT INTO schedules (bus_id, travel_date, departure_time, capacity_remaining, income, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		schedule.BusID,
		schedule.TravelDate,
		schedule.DepartureTime,
		schedule.CapacityRemaining,
		schedule.Income,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	).Scan(&schedule.ID)

	if err != nil {
		r.log.Error("Failed to create schedule",
			zap.Error(err),
			zap.Int64("bus_id", schedule.BusID),
			zap.Time("travel_date", schedule.TravelDate),
		)
		return fmt.Errorf("create schedule for bus %d: %w", schedule.BusID, err)
	}

	return nil
}

func (r *scheduleRepository) FindByID(ctx context.Context, id int64) (*entity.Schedule, error) {
	query := `
		SELECT id, bus_id, travel_date, departure_time, capacity_remaining, income, created_at, updated_at
		FROM schedules
		WHERE id = $1
	`

	return r.scanOne(ctx, r.db, query, id)
}

// FindByIDForUpdate reads the schedule row under an exclusive lock. Concurrent
// bookings for the same schedule serialize here; bookings on other schedules
// are unaffected.
func (r *scheduleRepository) FindByIDForUpdate(ctx context.Context, q database.Queryer, id int64) (*entity.Schedule, error) {
	query := `
		SELECT id, bus_id, travel_date, departure_time, capacity_remaining, income, created_at, updated_at
		FROM schedules
		WHERE id = $1
		FOR UPDATE
	`

	return r.scanOne(ctx, q, query, id)
}

// ApplyBooking decrements remaining capacity and accumulates the fare. The
// WHERE clause refuses to take capacity below zero even if the caller's check
// was bypassed.
func (r *scheduleRepository) ApplyBooking(ctx context.Context, q database.Queryer, id int64, fare float64) error {
	query := `
		UPDATE schedules
		SET capacity_remaining = capacity_remaining - 1,
		    income = income + $2,
		    updated_at = NOW()
		WHERE id = $1 AND capacity_remaining > 0
	`

	result, err := q.Exec(ctx, query, id, fare)
	if err != nil {
		r.log.Error("Failed to apply booking to schedule",
			zap.Error(err),
			zap.Int64("schedule_id", id),
			zap.Float64("fare", fare),
		)
		return fmt.Errorf("apply booking to schedule %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("schedule %d has no remaining capacity", id)
	}

	return nil
}

func (r *scheduleRepository) FindAll(ctx context.Context) ([]*entity.Schedule, error) {
	query := `
		SELECT id, bus_id, travel_date, departure_time, capacity_remaining, income, created_at, updated_at
		FROM schedules
		ORDER BY travel_date, departure_time
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find schedules", zap.Error(err))
		return nil, fmt.Errorf("find schedules: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

func (r *scheduleRepository) FindByDate(ctx context.Context, travelDate time.Time) ([]*entity.Schedule, error) {
	query := `
		SELECT id, bus_id, travel_date, departure_time, capacity_remaining, income, created_at, updated_at
		FROM schedules
		WHERE travel_date = $1
		ORDER BY departure_time
	`

	rows, err := r.db.Query(ctx, query, travelDate)
	if err != nil {
		r.log.Error("Failed to find schedules by date",
			zap.Error(err),
			zap.Time("travel_date", travelDate),
		)
		return nil, fmt.Errorf("find schedules by date %s: %w", travelDate.Format("2006-01-02"), err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

func (r *scheduleRepository) scanOne(ctx context.Context, q database.Queryer, query string, id int64) (*entity.Schedule, error) {
	var schedule entity.Schedule
	err := q.QueryRow(ctx, query, id).Scan(
		&schedule.ID,
		&schedule.BusID,
		&schedule.TravelDate,
		&schedule.DepartureTime,
		&schedule.CapacityRemaining,
		&schedule.Income,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find schedule by ID",
			zap.Error(err),
			zap.Int64("schedule_id", id),
		)
		return nil, fmt.Errorf("find schedule by ID %d: %w", id, err)
	}

	return &schedule, nil
}

func (r *scheduleRepository) scanMany(rows pgx.Rows) ([]*entity.Schedule, error) {
	var schedules []*entity.Schedule
	for rows.Next() {
		var schedule entity.Schedule
		err := rows.Scan(
			&schedule.ID,
			&schedule.BusID,
			&schedule.TravelDate,
			&schedule.DepartureTime,
			&schedule.CapacityRemaining,
			&schedule.Income,
			&schedule.CreatedAt,
			&schedule.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan schedule row", zap.Error(err))
			return nil, fmt.Errorf("scan schedule row: %w", err)
		}
		schedules = append(schedules, &schedule)
	}

	return schedules, nil
}
