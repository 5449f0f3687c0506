package adaptor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bus-reservation/internal/dto/request"
	"bus-reservation/internal/dto/response"
	"bus-reservation/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBookingService struct {
	bookErr error
	booked  *response.ReservationResponse
	listed  []response.ReservationResponse
}

func (s *stubBookingService) Book(ctx context.Context, req *request.CreateReservationRequest) (*response.ReservationResponse, error) {
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return s.booked, nil
}

func (s *stubBookingService) ListReservations(ctx context.Context) ([]response.ReservationResponse, error) {
	return s.listed, nil
}

func (s *stubBookingService) ListUserReservations(ctx context.Context, userID int64) ([]response.ReservationResponse, error) {
	return s.listed, nil
}

func (s *stubBookingService) ListScheduleReservations(ctx context.Context, scheduleID int64) ([]response.ReservationResponse, error) {
	return s.listed, nil
}

func newBookingRouter(service usecase.BookingService) *chi.Mux {
	handler := NewBookingHandler(service, zap.NewNop())

	r := chi.NewRouter()
	r.Post("/api/reservations", handler.CreateReservation)
	r.Get("/api/reservations", handler.ListReservations)
	r.Get("/api/users/{id}/reservations", handler.ListUserReservations)
	r.Get("/api/schedules/{id}/reservations", handler.ListScheduleReservations)
	return r
}

const validBody = `{"user_id":1,"schedule_id":10,"travel_date":"2026-09-15","seat_no":"A1","fare":100}`

func TestCreateReservation_Success(t *testing.T) {
	service := &stubBookingService{
		booked: &response.ReservationResponse{ID: 1, Code: "RSV-1", SeatNo: "A1", UserID: 1, ScheduleID: 10, Fare: 100},
	}
	router := newBookingRouter(service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(validBody))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["status"])
}

func TestCreateReservation_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "duplicate booking",
			err:        usecase.ErrDuplicateBooking,
			wantStatus: http.StatusConflict,
			wantCode:   "DUPLICATE_BOOKING",
		},
		{
			name:       "seat taken",
			err:        usecase.ErrSeatTaken,
			wantStatus: http.StatusConflict,
			wantCode:   "SEAT_TAKEN",
		},
		{
			name:       "no capacity",
			err:        usecase.ErrNoCapacity,
			wantStatus: http.StatusConflict,
			wantCode:   "NO_CAPACITY",
		},
		{
			name:       "payment missing",
			err:        usecase.ErrPaymentMissing,
			wantStatus: http.StatusPaymentRequired,
			wantCode:   "PAYMENT_MISSING",
		},
		{
			name:       "schedule not found",
			err:        usecase.ErrScheduleNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "SCHEDULE_NOT_FOUND",
		},
		{
			name:       "lock timeout",
			err:        usecase.ErrLockTimeout,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "LOCK_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newBookingRouter(&stubBookingService{bookErr: tt.err})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(validBody))
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["status"])
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestCreateReservation_LockTimeoutRetryAfter(t *testing.T) {
	router := newBookingRouter(&stubBookingService{bookErr: usecase.ErrLockTimeout})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(validBody))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestCreateReservation_InvalidBody(t *testing.T) {
	router := newBookingRouter(&stubBookingService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader("{not json"))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReservation_ValidationFailed(t *testing.T) {
	router := newBookingRouter(&stubBookingService{})

	// Missing seat_no and non-positive fare
	body := `{"user_id":1,"schedule_id":10,"travel_date":"2026-09-15","fare":0}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(body))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListUserReservations_InvalidID(t *testing.T) {
	router := newBookingRouter(&stubBookingService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/abc/reservations", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListReservations(t *testing.T) {
	service := &stubBookingService{
		listed: []response.ReservationResponse{
			{ID: 1, SeatNo: "A1", UserID: 1, ScheduleID: 10},
			{ID: 2, SeatNo: "A2", UserID: 2, ScheduleID: 10},
		},
	}
	router := newBookingRouter(service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reservations", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []response.ReservationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
}
