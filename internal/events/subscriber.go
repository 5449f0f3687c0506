package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// RunReservationLog consumes reservation.created messages and logs a
// confirmation line for each committed booking. It returns once the
// subscription is established; consumption continues until ctx is cancelled.
func RunReservationLog(ctx context.Context, sub message.Subscriber, log *zap.Logger) error {
	messages, err := sub.Subscribe(ctx, TopicReservationCreated)
	if err != nil {
		return err
	}

	logger := log.With(zap.String("component", "reservation_log"))

	go func() {
		for msg := range messages {
			var event ReservationCreated
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logger.Error("Failed to decode reservation event", zap.Error(err))
				msg.Ack()
				continue
			}

			logger.Info("Reservation confirmed",
				zap.String("code", event.Code),
				zap.Int64("user_id", event.UserID),
				zap.Int64("schedule_id", event.ScheduleID),
				zap.String("seat_no", event.SeatNo),
				zap.Float64("fare", event.Fare),
				zap.String("travel_date", event.TravelDate),
			)

			msg.Ack()
		}
	}()

	return nil
}
