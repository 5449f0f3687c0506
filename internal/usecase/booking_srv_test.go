package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bus-reservation/internal/data/entity"
	"bus-reservation/internal/data/repository"
	"bus-reservation/internal/dto/request"
	"bus-reservation/internal/events"
	"bus-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// In-memory booking state with per-schedule row locks. FindByIDForUpdate
// blocks on the schedule's lock exactly like SELECT ... FOR UPDATE; mutations
// stage inside the fake transaction and apply on commit, so a rolled-back
// booking leaves no trace.
// ---------------------------------------------------------------------------

type paymentRow struct {
	userID     int64
	scheduleID int64
	travelDate string
	status     entity.PaymentStatus
}

type bookingState struct {
	mu           sync.Mutex
	nextID       int64
	schedules    map[int64]*entity.Schedule
	reservations []*entity.Reservation
	payments     []paymentRow
	rowLocks     map[int64]*sync.Mutex
}

func newBookingState() *bookingState {
	return &bookingState{
		nextID:    1,
		schedules: make(map[int64]*entity.Schedule),
		rowLocks:  make(map[int64]*sync.Mutex),
	}
}

func (st *bookingState) addSchedule(id int64, capacity int, income float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.schedules[id] = &entity.Schedule{
		Base:              entity.Base{ID: id},
		BusID:             1,
		CapacityRemaining: capacity,
		Income:            income,
	}
	st.rowLocks[id] = &sync.Mutex{}
}

func (st *bookingState) addPayment(userID, scheduleID int64, travelDate string, status entity.PaymentStatus) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.payments = append(st.payments, paymentRow{userID, scheduleID, travelDate, status})
}

func (st *bookingState) schedule(id int64) entity.Schedule {
	st.mu.Lock()
	defer st.mu.Unlock()
	return *st.schedules[id]
}

func (st *bookingState) reservationCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.reservations)
}

type stagedBooking struct {
	scheduleID  int64
	fare        float64
	reservation *entity.Reservation
}

type fakeTx struct {
	pgx.Tx
	state  *bookingState
	locked map[int64]bool
	staged []stagedBooking
	done   bool
}

func (tx *fakeTx) lockRow(id int64) {
	if tx.locked[id] {
		return
	}
	tx.state.mu.Lock()
	lock, ok := tx.state.rowLocks[id]
	tx.state.mu.Unlock()
	if !ok {
		return
	}
	lock.Lock()
	tx.locked[id] = true
}

func (tx *fakeTx) releaseLocks() {
	tx.state.mu.Lock()
	defer tx.state.mu.Unlock()
	for id := range tx.locked {
		tx.state.rowLocks[id].Unlock()
	}
	tx.locked = map[int64]bool{}
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	// SET LOCAL lock_timeout
	return pgconn.NewCommandTag("SET"), nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.state.mu.Lock()
	for _, staged := range tx.staged {
		schedule := tx.state.schedules[staged.scheduleID]
		schedule.CapacityRemaining--
		schedule.Income += staged.fare
		if staged.reservation != nil {
			staged.reservation.ID = tx.state.nextID
			tx.state.nextID++
			tx.state.reservations = append(tx.state.reservations, staged.reservation)
		}
	}
	tx.state.mu.Unlock()

	tx.done = true
	tx.releaseLocks()
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.staged = nil
	tx.releaseLocks()
	return nil
}

type fakeDB struct {
	database.PgxIface
	state *bookingState
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return &fakeTx{state: db.state, locked: map[int64]bool{}}, nil
}

// ---------------------------------------------------------------------------
// Fake repositories over the shared state
// ---------------------------------------------------------------------------

type fakeScheduleRepo struct {
	repository.ScheduleRepository
	state *bookingState
}

func (r *fakeScheduleRepo) FindByIDForUpdate(ctx context.Context, q database.Queryer, id int64) (*entity.Schedule, error) {
	tx := q.(*fakeTx)
	tx.lockRow(id)

	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	schedule, ok := r.state.schedules[id]
	if !ok {
		return nil, nil
	}
	copied := *schedule
	return &copied, nil
}

func (r *fakeScheduleRepo) ApplyBooking(ctx context.Context, q database.Queryer, id int64, fare float64) error {
	tx := q.(*fakeTx)
	tx.staged = append(tx.staged, stagedBooking{scheduleID: id, fare: fare})
	return nil
}

type fakeReservationRepo struct {
	repository.ReservationRepository
	state *bookingState
}

func (r *fakeReservationRepo) Insert(ctx context.Context, q database.Queryer, reservation *entity.Reservation) error {
	tx := q.(*fakeTx)
	if len(tx.staged) == 0 {
		return errors.New("insert before capacity update")
	}
	tx.staged[len(tx.staged)-1].reservation = reservation
	return nil
}

func (r *fakeReservationRepo) ExistsByUserAndSchedule(ctx context.Context, q database.Queryer, userID, scheduleID int64) (bool, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	for _, reservation := range r.state.reservations {
		if reservation.UserID == userID && reservation.ScheduleID == scheduleID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReservationRepo) ExistsBySeat(ctx context.Context, q database.Queryer, scheduleID int64, seatNo string) (bool, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	for _, reservation := range r.state.reservations {
		if reservation.ScheduleID == scheduleID && reservation.SeatNo == seatNo {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReservationRepo) FindAll(ctx context.Context) ([]*entity.Reservation, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return append([]*entity.Reservation(nil), r.state.reservations...), nil
}

func (r *fakeReservationRepo) FindByUserID(ctx context.Context, userID int64) ([]*entity.Reservation, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	var out []*entity.Reservation
	for _, reservation := range r.state.reservations {
		if reservation.UserID == userID {
			out = append(out, reservation)
		}
	}
	return out, nil
}

type fakePaymentRepo struct {
	state *bookingState
}

func (r *fakePaymentRepo) HasSuccessful(ctx context.Context, q database.Queryer, userID, scheduleID int64, travelDate time.Time) (bool, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	date := travelDate.Format("2006-01-02")
	for _, payment := range r.state.payments {
		if payment.userID == userID && payment.scheduleID == scheduleID &&
			payment.travelDate == date && payment.status == entity.PaymentStatusSuccess {
			return true, nil
		}
	}
	return false, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []events.ReservationCreated
}

func (p *capturingPublisher) PublishReservationCreated(ctx context.Context, event events.ReservationCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// ---------------------------------------------------------------------------

func newTestService(state *bookingState) (BookingService, *capturingPublisher) {
	publisher := &capturingPublisher{}
	repo := &repository.Repository{
		Schedule:    &fakeScheduleRepo{state: state},
		Reservation: &fakeReservationRepo{state: state},
		Payment:     &fakePaymentRepo{state: state},
	}

	service := &bookingService{
		db:          &fakeDB{state: state},
		repo:        repo,
		publisher:   publisher,
		lockTimeout: time.Second,
		log:         zap.NewNop(),
	}

	return service, publisher
}

func bookingRequest(userID int64, seatNo string) *request.CreateReservationRequest {
	return &request.CreateReservationRequest{
		UserID:     userID,
		ScheduleID: 10,
		TravelDate: "2026-09-15",
		SeatNo:     seatNo,
		Fare:       100,
	}
}

func TestBook_Success(t *testing.T) {
	state := newBookingState()
	state.addSchedule(10, 5, 0)
	state.addPayment(1, 10, "2026-09-15", entity.PaymentStatusSuccess)
	service, publisher := newTestService(state)

	reservation, err := service.Book(context.Background(), bookingRequest(1, "A1"))

	require.NoError(t, err)
	require.NotNil(t, reservation)
	assert.Equal(t, int64(1), reservation.UserID)
	assert.Equal(t, int64(10), reservation.ScheduleID)
	assert.Equal(t, "A1", reservation.SeatNo)
	assert.Equal(t, float64(100), reservation.Fare)
	assert.Equal(t, "2026-09-15", reservation.TravelDate)
	assert.NotEmpty(t, reservation.Code)

	schedule := state.schedule(10)
	assert.Equal(t, 4, schedule.CapacityRemaining)
	assert.Equal(t, float64(100), schedule.Income)
	assert.Equal(t, 1, state.reservationCount())
	assert.Equal(t, 1, publisher.count())
}

func TestBook_ScheduleNotFound(t *testing.T) {
	state := newBookingState()
	service, _ := newTestService(state)

	reservation, err := service.Book(context.Background(), bookingRequest(1, "A1"))

	require.ErrorIs(t, err, ErrScheduleNotFound)
	assert.Nil(t, reservation)
}

func TestBook_SeatTaken(t *testing.T) {
	state := newBookingState()
	state.addSchedule(10, 5, 0)
	state.addPayment(1, 10, "2026-09-15", entity.PaymentStatusSuccess)
	state.addPayment(2, 10, "2026-09-15", entity.PaymentStatusSuccess)
	service, _ := newTestService(state)

	_, err := service.Book(context.Background(), bookingRequest(1, "A1"))
	require.NoError(t, err)

	// Second user, same seat
	reservation, err := service.Book(context.Background(), bookingRequest(2, "A1"))

	require.ErrorIs(t, err, ErrSeatTaken)
	assert.Nil(t, reservation)

	// State unchanged by the failed attempt
	schedule := state.schedule(10)
	assert.Equal(t, 4, schedule.CapacityRemaining)
	assert.Equal(t, float64(100), schedule.Income)
	assert.Equal(t, 1, state.reservationCount())
}

func TestBook_DuplicateBooking(t *testing.T) {
	state := newBookingState()
	state.addSchedule(10, 5, 0)
	state.addPayment(1, 10, "2026-09-15", entity.PaymentStatusSuccess)
	service, _ := newTestService(state)

	_, err := service.Book(context.Background(), bookingRequest(1, "A1"))
	require.NoError(t, err)

	// Same user, different seat
	reservation, err := service.Book(context.Background(), bookingRequest(1, "B1"))

	require.ErrorIs(t, err, ErrDuplicateBooking)
	assert.Nil(t, reservation)

	schedule := state.schedule(10)
	assert.Equal(t, 4, schedule.CapacityRemaining)
	assert.Equal(t, 1, state.reservationCount())
}

func TestBook_Idempotence(t *testing.T) {
	state := newBookingState()
	state.addSchedule(10, 5, 0)
	state.addPayment(1, 10, "2026-09-15", entity.PaymentStatusSuccess)
	service, publisher := newTestService(state)

	first, err := service.Book(context.Background(), bookingRequest(1, "A1"))
	require.NoError(t, err)
	require.NotNil(t, first)

	// Identical resubmission fails deterministically, never double-books
	second, err := service.Book(context.Background(), bookingRequest(1, "A1"))
	require.ErrorIs(t, err, ErrDuplicateBooking)
	assert.Nil(t, second)

	assert.Equal(t, 1, state.reservationCount())
	assert.Equal(t, 1, publisher.count())
}

func TestBook_PaymentMissing(t *testing.T) {
	tests := []struct {
		name  string
		setup func(state *bookingState)
	}{
		{
			name:  "no payment row at all",
			setup: func(state *bookingState) {},
		},
		{
			name: "payment row with wrong status",
			setup: func(state *bookingState) {
				state.addPayment(1, 10, "2026-09-15", entity.PaymentStatusPending)
			},
		},
		{
			name: "successful payment for a different date",
			setup: func(state *bookingState) {
				state.addPayment(1, 10, "2026-09-16", entity.PaymentStatusSuccess)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newBookingState()
			state.addSchedule(10, 5, 0)
			tt.setup(state)
			service, publisher := newTestService(state)

			reservation, err := service.Book(context.Background(), bookingRequest(1, "A1"))

			require.ErrorIs(t, err, ErrPaymentMissing)
			assert.Nil(t, reservation)

			schedule := state.schedule(10)
			assert.Equal(t, 5, schedule.CapacityRemaining)
			assert.Equal(t, float64(0), schedule.Income)
			assert.Equal(t, 0, state.reservationCount())
			assert.Equal(t, 0, publisher.count())
		})
	}
}

func TestBook_NoCapacity(t *testing.T) {
	state := newBookingState()
	state.addSchedule(10, 0, 300)
	state.addPayment(1, 10, "2026-09-15", entity.PaymentStatusSuccess)
	service, _ := newTestService(state)

	reservation, err := service.Book(context.Background(), bookingRequest(1, "A1"))

	require.ErrorIs(t, err, ErrNoCapacity)
	assert.Nil(t, reservation)

	schedule := state.schedule(10)
	assert.Equal(t, 0, schedule.CapacityRemaining)
	assert.Equal(t, float64(300), schedule.Income)
}

func TestBook_ValidationFailed(t *testing.T) {
	state := newBookingState()
	state.addSchedule(10, 5, 0)
	service, _ := newTestService(state)

	req := bookingRequest(1, "A1")
	req.Fare = 0

	reservation, err := service.Book(context.Background(), req)

	require.Error(t, err)
	assert.Nil(t, reservation)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestBook_ConcurrentLastSeat(t *testing.T) {
	const racers = 8

	state := newBookingState()
	state.addSchedule(10, 1, 0)
	for i := int64(1); i <= racers; i++ {
		state.addPayment(i, 10, "2026-09-15", entity.PaymentStatusSuccess)
	}
	service, publisher := newTestService(state)

	seats := []string{"A1", "A2", "A3", "A4", "B1", "B2", "B3", "B4"}

	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Book(context.Background(), bookingRequest(int64(i+1), seats[i]))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, ErrNoCapacity)
		}
	}

	assert.Equal(t, 1, successes, "exactly one booking wins the last seat")
	assert.Equal(t, 1, publisher.count())

	// Accounting invariant: remaining capacity + sold seats == initial capacity
	schedule := state.schedule(10)
	assert.Equal(t, 0, schedule.CapacityRemaining)
	assert.Equal(t, 1, state.reservationCount())
}

func TestBook_ConcurrentDistinctSchedules(t *testing.T) {
	const schedules = 4

	state := newBookingState()
	for i := int64(1); i <= schedules; i++ {
		state.addSchedule(i, 3, 0)
		state.addPayment(i, i, "2026-09-15", entity.PaymentStatusSuccess)
	}
	service, _ := newTestService(state)

	var wg sync.WaitGroup
	errs := make([]error, schedules)
	for i := int64(1); i <= schedules; i++ {
		wg.Add(1)
		go func(i int64) {
			defer wg.Done()
			req := bookingRequest(i, "A1")
			req.ScheduleID = i
			_, errs[i-1] = service.Book(context.Background(), req)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	for i := int64(1); i <= schedules; i++ {
		schedule := state.schedule(i)
		assert.Equal(t, 2, schedule.CapacityRemaining)
		assert.Equal(t, float64(100), schedule.Income)
	}
}

func TestListUserReservations(t *testing.T) {
	state := newBookingState()
	state.addSchedule(10, 5, 0)
	state.addSchedule(11, 5, 0)
	state.addPayment(1, 10, "2026-09-15", entity.PaymentStatusSuccess)
	state.addPayment(1, 11, "2026-09-15", entity.PaymentStatusSuccess)
	state.addPayment(2, 10, "2026-09-15", entity.PaymentStatusSuccess)
	service, _ := newTestService(state)

	_, err := service.Book(context.Background(), bookingRequest(1, "A1"))
	require.NoError(t, err)

	req := bookingRequest(1, "A2")
	req.ScheduleID = 11
	_, err = service.Book(context.Background(), req)
	require.NoError(t, err)

	_, err = service.Book(context.Background(), bookingRequest(2, "B1"))
	require.NoError(t, err)

	mine, err := service.ListUserReservations(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := service.ListReservations(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
