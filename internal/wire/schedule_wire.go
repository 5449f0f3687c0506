package wire

import (
	"bus-reservation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireSchedule(r chi.Router, scheduleHandler *adaptor.ScheduleHandler) {
	// Fleet
	r.Post("/api/buses", scheduleHandler.CreateBus)
	r.Get("/api/buses", scheduleHandler.ListBuses)

	// Trips
	r.Post("/api/schedules", scheduleHandler.CreateSchedule)
	r.Get("/api/schedules", scheduleHandler.ListSchedules)
	r.Get("/api/schedules/{id}", scheduleHandler.GetSchedule)
}
