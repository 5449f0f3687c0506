package repository

import (
	"context"
	"fmt"

	"bus-reservation/internal/data/entity"
	"bus-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BusRepository interface {
	Create(ctx context.Context, bus *entity.Bus) error
	FindByID(ctx context.Context, id int64) (*entity.Bus, error)
	FindAll(ctx context.Context) ([]*entity.Bus, error)
}

type busRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBusRepository(db database.PgxIface, log *zap.Logger) BusRepository {
	return &busRepository{
		db:  db,
		log: log.With(zap.String("repository", "bus")),
	}
}

func (r *busRepository) Create(ctx context.Context, bus *entity.Bus) error {
	query := `
		INSERT INTO buses (code, operator, seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		bus.Code,
		bus.Operator,
		bus.Seats,
		bus.CreatedAt,
		bus.UpdatedAt,
	).Scan(&bus.ID)

	if err != nil {
		r.log.Error("Failed to create bus",
			zap.Error(err),
			zap.String("code", bus.Code),
		)
		return fmt.Errorf("create bus %s: %w", bus.Code, err)
	}

	return nil
}

func (r *busRepository) FindByID(ctx context.Context, id int64) (*entity.Bus, error) {
	query := `
		SELECT id, code, operator, seats, created_at, updated_at
		FROM buses
		WHERE id = $1
	`

	var bus entity.Bus
	err := r.db.QueryRow(ctx, query, id).Scan(
		&bus.ID,
		&bus.Code,
		&bus.Operator,
		&bus.Seats,
		&bus.CreatedAt,
		&bus.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find bus by ID",
			zap.Error(err),
			zap.Int64("bus_id", id),
		)
		return nil, fmt.Errorf("find bus by ID %d: %w", id, err)
	}

	return &bus, nil
}

func (r *busRepository) FindAll(ctx context.Context) ([]*entity.Bus, error) {
	query := `
		SELECT id, code, operator, seats, created_at, updated_at
		FROM buses
		ORDER BY code
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find buses", zap.Error(err))
		return nil, fmt.Errorf("find buses: %w", err)
	}
	defer rows.Close()

	var buses []*entity.Bus
	for rows.Next() {
		var bus entity.Bus
		err := rows.Scan(
			&bus.ID,
			&bus.Code,
			&bus.Operator,
			&bus.Seats,
			&bus.CreatedAt,
			&bus.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan bus row", zap.Error(err))
			return nil, fmt.Errorf("scan bus row: %w", err)
		}
		buses = append(buses, &bus)
	}

	return buses, nil
}
