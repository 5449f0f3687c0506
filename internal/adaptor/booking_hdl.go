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

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateReservation handles POST /api/reservations
func (h *BookingHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req request.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	reservation, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create reservation")
		return
	}

	utils.ResponseCreated(w, "success", reservation)
}

// ListReservations handles GET /api/reservations
func (h *BookingHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.service.ListReservations(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list reservations")
		return
	}

	utils.ResponseSuccess(w, "success", reservations)
}

// ListUserReservations handles GET /api/users/{id}/reservations
func (h *BookingHandler) ListUserReservations(w http.ResponseWriter, r *http.Request) {
	userID := utils.ParseInt64(chi.URLParam(r, "id"))
	if userID <= 0 {
		utils.ResponseBadRequest(w, "Invalid user ID", nil)
		return
	}

	reservations, err := h.service.ListUserReservations(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "list user reservations")
		return
	}

	utils.ResponseSuccess(w, "success", reservations)
}

// ListScheduleReservations handles GET /api/schedules/{id}/reservations
func (h *BookingHandler) ListScheduleReservations(w http.ResponseWriter, r *http.Request) {
	scheduleID := utils.ParseInt64(chi.URLParam(r, "id"))
	if scheduleID <= 0 {
		utils.ResponseBadRequest(w, "Invalid schedule ID", nil)
		return
	}

	reservations, err := h.service.ListScheduleReservations(r.Context(), scheduleID)
	if err != nil {
		h.handleServiceError(w, err, "list schedule reservations")
		return
	}

	utils.ResponseSuccess(w, "success", reservations)
}

// handleServiceError maps booking failures to HTTP responses. Typed booking
// errors carry a stable machine code; everything else is classified by text
// or treated as internal.
func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	if bookingErr, ok := usecase.AsBookingError(err); ok {
		h.log.Warn(operation+" rejected",
			zap.String("code", bookingErr.Code),
			zap.String("operation", operation),
		)

		switch bookingErr.Code {
		case "SCHEDULE_NOT_FOUND":
			utils.ResponseErrorCode(w, http.StatusNotFound, bookingErr.Code, bookingErr.Message)
		case "PAYMENT_MISSING":
			utils.ResponseErrorCode(w, http.StatusPaymentRequired, bookingErr.Code, bookingErr.Message)
		case "LOCK_TIMEOUT":
			w.Header().Set("Retry-After", "1")
			utils.ResponseErrorCode(w, http.StatusServiceUnavailable, bookingErr.Code, bookingErr.Message)
		default:
			// DUPLICATE_BOOKING, NO_CAPACITY, SEAT_TAKEN
			utils.ResponseErrorCode(w, http.StatusConflict, bookingErr.Code, bookingErr.Message)
		}
		return
	}

	errMsg := err.Error()

	switch {
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
