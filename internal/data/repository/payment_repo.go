package repository

import (
	"context"
	"fmt"
	"time"

	"bus-reservation/internal/data/entity"
	"bus-reservation/pkg/database"

	"go.uber.org/zap"
)

// PaymentRepository reads the payment gateway's ledger. The booking flow never
// writes payments.
type PaymentRepository interface {
	HasSuccessful(ctx context.Context, q database.Queryer, userID, scheduleID int64, travelDate time.Time) (bool, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

// HasSuccessful reports whether a SUCCESS payment exists for the booking
// request. A missing row and a row in any other status both answer false.
func (r *paymentRepository) HasSuccessful(ctx context.Context, q database.Queryer, userID, scheduleID int64, travelDate time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM payments
			WHERE user_id = $1 AND schedule_id = $2 AND travel_date = $3 AND status = $4
		)
	`

	var exists bool
	err := q.QueryRow(ctx, query, userID, scheduleID, travelDate, entity.PaymentStatusSuccess).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check successful payment",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.Int64("schedule_id", scheduleID),
			zap.Time("travel_date", travelDate),
		)
		return false, fmt.Errorf("check payment for user %d on schedule %d: %w", userID, scheduleID, err)
	}

	return exists, nil
}
