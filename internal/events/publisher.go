package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bus-reservation/internal/data/entity"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const TopicReservationCreated = "reservation.created"

// ReservationCreated is published after a booking transaction commits.
type ReservationCreated struct {
	ReservationID int64     `json:"reservation_id"`
	Code          string    `json:"code"`
	UserID        int64     `json:"user_id"`
	ScheduleID    int64     `json:"schedule_id"`
	SeatNo        string    `json:"seat_no"`
	Fare          float64   `json:"fare"`
	TravelDate    string    `json:"travel_date"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func ReservationCreatedFrom(reservation *entity.Reservation) ReservationCreated {
	return ReservationCreated{
		ReservationID: reservation.ID,
		Code:          reservation.Code,
		UserID:        reservation.UserID,
		ScheduleID:    reservation.ScheduleID,
		SeatNo:        reservation.SeatNo,
		Fare:          reservation.Fare,
		TravelDate:    reservation.TravelDate.Format("2006-01-02"),
		OccurredAt:    time.Now(),
	}
}

type Publisher interface {
	PublishReservationCreated(ctx context.Context, event ReservationCreated) error
	Close() error
}

type busPublisher struct {
	pub message.Publisher
	log *zap.Logger
}

func NewPublisher(pub message.Publisher, log *zap.Logger) Publisher {
	return &busPublisher{
		pub: pub,
		log: log.With(zap.String("component", "event_publisher")),
	}
}

func (p *busPublisher) PublishReservationCreated(ctx context.Context, event ReservationCreated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal reservation event %s: %w", event.Code, err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.SetContext(ctx)

	if err := p.pub.Publish(TopicReservationCreated, msg); err != nil {
		return fmt.Errorf("publish reservation event %s: %w", event.Code, err)
	}

	p.log.Debug("Reservation event published",
		zap.String("topic", TopicReservationCreated),
		zap.String("code", event.Code),
	)

	return nil
}

func (p *busPublisher) Close() error {
	return p.pub.Close()
}
