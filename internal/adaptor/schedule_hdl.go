package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"bus-reservation/internal/dto/request"
	"bus-reservation/internal/usecase"
	"bus-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ScheduleHandler struct {
	service usecase.ScheduleService
	log     *zap.Logger
}

func NewScheduleHandler(service usecase.ScheduleService, log *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		log:     log.With(zap.String("handler", "schedule")),
	}
}

// CreateBus handles POST /api/buses
func (h *ScheduleHandler) CreateBus(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	bus, err := h.service.CreateBus(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create bus")
		return
	}

	utils.ResponseCreated(w, "success", bus)
}

// ListBuses handles GET /api/buses
func (h *ScheduleHandler) ListBuses(w http.ResponseWriter, r *http.Request) {
	buses, err := h.service.ListBuses(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list buses")
		return
	}

	utils.ResponseSuccess(w, "success", buses)
}

// CreateSchedule handles POST /api/schedules
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req request.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	schedule, err := h.service.CreateSchedule(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create schedule")
		return
	}

	utils.ResponseCreated(w, "success", schedule)
}

// GetSchedule handles GET /api/schedules/{id}
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID := utils.ParseInt64(chi.URLParam(r, "id"))
	if scheduleID <= 0 {
		utils.ResponseBadRequest(w, "Invalid schedule ID", nil)
		return
	}

	schedule, err := h.service.GetSchedule(r.Context(), scheduleID)
	if err != nil {
		h.handleServiceError(w, err, "get schedule")
		return
	}

	utils.ResponseSuccess(w, "success", schedule)
}

// ListSchedules handles GET /api/schedules?date=2006-01-02
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.service.ListSchedules(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.handleServiceError(w, err, "list schedules")
		return
	}

	utils.ResponseSuccess(w, "success", schedules)
}

func (h *ScheduleHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	if bookingErr, ok := usecase.AsBookingError(err); ok && bookingErr.Code == "SCHEDULE_NOT_FOUND" {
		utils.ResponseErrorCode(w, http.StatusNotFound, bookingErr.Code, bookingErr.Message)
		return
	}

	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "validation failed"), strings.Contains(errMsg, "invalid"):
		h.log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
