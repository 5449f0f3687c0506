package response

import (
	"bus-reservation/internal/data/entity"
)

type ScheduleResponse struct {
	ID                int64   `json:"id"`
	BusID             int64   `json:"bus_id"`
	TravelDate        string  `json:"travel_date"`
	DepartureTime     string  `json:"departure_time"`
	CapacityRemaining int     `json:"capacity_remaining"`
	Income            float64 `json:"income"`
}

type BusResponse struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Operator string `json:"operator"`
	Seats    int    `json:"seats"`
}

func ScheduleToResponse(schedule *entity.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:                schedule.ID,
		BusID:             schedule.BusID,
		TravelDate:        schedule.TravelDate.Format("2006-01-02"),
		DepartureTime:     schedule.DepartureTime.Format("15:04"),
		CapacityRemaining: schedule.CapacityRemaining,
		Income:            schedule.Income,
	}
}

func SchedulesToResponse(schedules []*entity.Schedule) []ScheduleResponse {
	responses := make([]ScheduleResponse, len(schedules))
	for i, schedule := range schedules {
		responses[i] = ScheduleToResponse(schedule)
	}
	return responses
}

func BusToResponse(bus *entity.Bus) BusResponse {
	return BusResponse{
		ID:       bus.ID,
		Code:     bus.Code,
		Operator: bus.Operator,
		Seats:    bus.Seats,
	}
}

func BusesToResponse(buses []*entity.Bus) []BusResponse {
	responses := make([]BusResponse, len(buses))
	for i, bus := range buses {
		responses[i] = BusToResponse(bus)
	}
	return responses
}
