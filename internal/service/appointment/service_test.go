package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/lock"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/messaging"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/validator"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Dispatch(ctx context.Context, outcome model.NotificationOutcome, appointment *model.Appointment) error {
	return m.Called(ctx, outcome, appointment).Error(0)
}

type recordingBroker struct {
	messaging.NopBroker
	mu        sync.Mutex
	published []messaging.Message
	err       error
}

func (b *recordingBroker) Publish(_ context.Context, _ string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, message.(messaging.Message))
	return nil
}

type busyLocker struct{}

func (busyLocker) WithSlotLock(context.Context, string, string, func(context.Context) error) error {
	return lock.ErrLockNotAcquired
}

type fixture struct {
	svc      *Service
	repo     *mocks.AppointmentRepository
	payers   *mocks.PayerRepository
	notifier *mockNotifier
	broker   *recordingBroker
	metrics  *metrics.Metrics
}

// June 9th 2024 at noon, the day before most test bookings
var testNow = time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		repo:     &mocks.AppointmentRepository{},
		payers:   &mocks.PayerRepository{},
		notifier: &mockNotifier{},
		broker:   &recordingBroker{},
		metrics:  metrics.New("test", prometheus.NewRegistry()),
	}
	opts = append([]Option{
		WithClock(func() time.Time { return testNow }),
		WithBroker(f.broker, "appointments"),
		WithMetrics(f.metrics),
	}, opts...)
	f.svc = NewService(f.repo, f.payers, f.notifier, validator.New(), opts...)
	return f
}

func validRequest() *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		FirstName: "Ana",
		LastName:  "Paz",
		Phone:     "+54 11 5555 0000",
		Email:     "ana@example.com",
		PayerID:   1,
		Date:      "2024-06-10",
		Slot:      "10:00",
	}
}

func appointmentWithStatus(status model.AppointmentStatus) *model.Appointment {
	return &model.Appointment{
		Base:      model.Base{ID: 5},
		FirstName: "Ana",
		LastName:  "Paz",
		Email:     "ana@example.com",
		PayerID:   1,
		PayerName: "OSDE",
		Date:      "2024-06-10",
		Slot:      "10:00",
		Status:    status,
	}
}

func TestAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("one booked slot", func(t *testing.T) {
		f := newFixture()
		f.repo.On("BookedSlots", ctx, "2024-06-10").Return([]string{"10:00"}, nil)

		resp, err := f.svc.Availability(ctx, &model.AvailabilityRequest{Date: "2024-06-10"})
		require.NoError(t, err)
		assert.Equal(t, "2024-06-10", resp.Date)
		assert.Len(t, resp.Slots, 17)
		assert.NotContains(t, resp.Slots, "10:00")
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AvailabilityQueries))
	})

	t.Run("today after hours returns empty list", func(t *testing.T) {
		f := newFixture(WithClock(func() time.Time { return time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC) }))
		f.repo.On("BookedSlots", ctx, "2024-06-10").Return([]string{}, nil)

		resp, err := f.svc.Availability(ctx, &model.AvailabilityRequest{Date: "2024-06-10"})
		require.NoError(t, err)
		assert.NotNil(t, resp.Slots)
		assert.Empty(t, resp.Slots)
	})

	t.Run("missing or malformed date", func(t *testing.T) {
		f := newFixture()
		for _, date := range []string{"", "10/06/2024", "2024-6-10", "2024-02-30"} {
			_, err := f.svc.Availability(ctx, &model.AvailabilityRequest{Date: date})
			assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput), date)
		}
		f.repo.AssertNotCalled(t, "BookedSlots", mock.Anything, mock.Anything)
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newFixture()
		f.repo.On("BookedSlots", ctx, "2024-06-10").Return(nil, errors.New("connection reset"))

		_, err := f.svc.Availability(ctx, &model.AvailabilityRequest{Date: "2024-06-10"})
		assert.Error(t, err)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("books a free slot as requested", func(t *testing.T) {
		f := newFixture()
		f.payers.On("Get", mock.Anything, int64(1)).Return(&model.Payer{Base: model.Base{ID: 1}, Name: "OSDE", Active: true}, nil)
		f.repo.On("BookedSlots", mock.Anything, "2024-06-10").Return([]string{"09:00"}, nil)
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Appointment) bool {
			return a.Status == model.AppointmentStatusRequested && a.Slot == "10:00"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.Appointment).ID = 42
		}).Return(nil)

		appt, err := f.svc.Create(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(42), appt.ID)
		assert.Equal(t, "OSDE", appt.PayerName)
		assert.Equal(t, model.AppointmentStatusRequested, appt.Status)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AppointmentsCreated))
		f.repo.AssertExpectations(t)
	})

	t.Run("unknown payer", func(t *testing.T) {
		f := newFixture()
		f.payers.On("Get", mock.Anything, int64(1)).Return(nil, apperrors.NotFound("payer", nil))

		_, err := f.svc.Create(ctx, validRequest())
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))
		assert.Contains(t, err.Error(), "payer does not exist")
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("slot already booked", func(t *testing.T) {
		f := newFixture()
		f.payers.On("Get", mock.Anything, int64(1)).Return(&model.Payer{Name: "OSDE"}, nil)
		f.repo.On("BookedSlots", mock.Anything, "2024-06-10").Return([]string{"10:00"}, nil)

		_, err := f.svc.Create(ctx, validRequest())
		assert.True(t, apperrors.Is(err, apperrors.KindConflict))
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("slot outside the template", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.Slot = "10:15"

		_, err := f.svc.Create(ctx, req)
		assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))
		f.payers.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("slot already passed today", func(t *testing.T) {
		f := newFixture(WithClock(func() time.Time { return time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC) }))
		f.payers.On("Get", mock.Anything, int64(1)).Return(&model.Payer{Name: "OSDE"}, nil)
		f.repo.On("BookedSlots", mock.Anything, "2024-06-10").Return([]string{}, nil)

		_, err := f.svc.Create(ctx, validRequest())
		assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid patient fields", func(t *testing.T) {
		f := newFixture()
		req := validRequest()
		req.FirstName = "  "
		req.Email = "not-an-email"

		_, err := f.svc.Create(ctx, req)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))
		assert.Contains(t, err.Error(), "first_name")
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("lock held elsewhere", func(t *testing.T) {
		f := newFixture(WithLocker(busyLocker{}))
		f.payers.On("Get", mock.Anything, int64(1)).Return(&model.Payer{Name: "OSDE"}, nil)

		_, err := f.svc.Create(ctx, validRequest())
		assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	})

	t.Run("unique index rejects concurrent insert", func(t *testing.T) {
		f := newFixture()
		f.payers.On("Get", mock.Anything, int64(1)).Return(&model.Payer{Name: "OSDE"}, nil)
		f.repo.On("BookedSlots", mock.Anything, "2024-06-10").Return([]string{}, nil)
		f.repo.On("Create", mock.Anything, mock.Anything).Return(apperrors.Conflict("slot is already booked", nil))

		_, err := f.svc.Create(ctx, validRequest())
		assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("pending alias filters requested", func(t *testing.T) {
		f := newFixture()
		f.repo.On("List", ctx, &model.AppointmentFilters{Status: model.AppointmentStatusRequested, Date: "2024-06-10"}).
			Return([]*model.Appointment{appointmentWithStatus(model.AppointmentStatusRequested)}, nil)

		got, err := f.svc.List(ctx, &model.ListAppointmentsRequest{Status: "Pending", Date: "2024-06-10"})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("no filters", func(t *testing.T) {
		f := newFixture()
		f.repo.On("List", ctx, &model.AppointmentFilters{}).Return([]*model.Appointment{}, nil)

		got, err := f.svc.List(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.List(ctx, &model.ListAppointmentsRequest{Status: "Bogus"})
		assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.On("Get", ctx, int64(999)).Return(nil, apperrors.NotFound("appointment", nil))

	_, err := f.svc.Get(ctx, 999)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm notifies once and publishes", func(t *testing.T) {
		f := newFixture()
		confirmed := appointmentWithStatus(model.AppointmentStatusConfirmed)
		f.repo.On("Get", ctx, int64(5)).Return(appointmentWithStatus(model.AppointmentStatusRequested), nil).Once()
		f.repo.On("UpdateStatus", ctx, int64(5), model.AppointmentStatusConfirmed).Return(nil)
		f.repo.On("Get", ctx, int64(5)).Return(confirmed, nil).Once()
		f.notifier.On("Dispatch", ctx, model.NotificationOutcomeConfirmed, confirmed).Return(nil).Once()

		got, err := f.svc.UpdateStatus(ctx, 5, &model.UpdateStatusRequest{Status: "Confirmed"})
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusConfirmed, got.Status)
		assert.Equal(t, "OSDE", got.PayerName)
		f.notifier.AssertNumberOfCalls(t, "Dispatch", 1)

		require.Len(t, f.broker.published, 1)
		assert.Equal(t, model.EventAppointmentStatusChanged, f.broker.published[0].Type)
		event := f.broker.published[0].Payload.(model.StatusChangedEvent)
		assert.Equal(t, model.AppointmentStatusRequested, event.From)
		assert.Equal(t, model.AppointmentStatusConfirmed, event.To)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StatusTransitions.WithLabelValues("Requested", "Confirmed")))
	})

	t.Run("unknown status leaves record untouched", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.UpdateStatus(ctx, 5, &model.UpdateStatusRequest{Status: "Bogus"})
		assert.True(t, apperrors.Is(err, apperrors.KindInvalidInput))
		f.repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("same status does not notify", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", ctx, int64(5)).Return(appointmentWithStatus(model.AppointmentStatusConfirmed), nil)
		f.repo.On("UpdateStatus", ctx, int64(5), model.AppointmentStatusConfirmed).Return(nil)

		_, err := f.svc.UpdateStatus(ctx, 5, &model.UpdateStatusRequest{Status: "Confirmed"})
		require.NoError(t, err)
		f.notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.broker.published)
	})

	t.Run("confirm then cancel notifies twice", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", ctx, int64(5)).Return(appointmentWithStatus(model.AppointmentStatusRequested), nil).Once()
		f.repo.On("Get", ctx, int64(5)).Return(appointmentWithStatus(model.AppointmentStatusConfirmed), nil).Twice()
		f.repo.On("Get", ctx, int64(5)).Return(appointmentWithStatus(model.AppointmentStatusCancelled), nil).Once()
		f.repo.On("UpdateStatus", ctx, int64(5), mock.Anything).Return(nil)
		f.notifier.On("Dispatch", ctx, model.NotificationOutcomeConfirmed, mock.Anything).Return(nil).Once()
		f.notifier.On("Dispatch", ctx, model.NotificationOutcomeCancelled, mock.Anything).Return(nil).Once()

		_, err := f.svc.UpdateStatus(ctx, 5, &model.UpdateStatusRequest{Status: "Confirmed"})
		require.NoError(t, err)
		got, err := f.svc.UpdateStatus(ctx, 5, &model.UpdateStatusRequest{Status: "Cancelled"})
		require.NoError(t, err)

		assert.Equal(t, model.AppointmentStatusCancelled, got.Status)
		f.notifier.AssertNumberOfCalls(t, "Dispatch", 2)
		f.notifier.AssertExpectations(t)
	})

	t.Run("back to pending does not notify", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", ctx, int64(5)).Return(appointmentWithStatus(model.AppointmentStatusConfirmed), nil).Once()
		f.repo.On("UpdateStatus", ctx, int64(5), model.AppointmentStatusRequested).Return(nil)
		f.repo.On("Get", ctx, int64(5)).Return(appointmentWithStatus(model.AppointmentStatusRequested), nil).Once()

		got, err := f.svc.UpdateStatus(ctx, 5, &model.UpdateStatusRequest{Status: "Pending"})
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusRequested, got.Status)
		f.notifier.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
		assert.Len(t, f.broker.published, 1)
	})

	t.Run("missing appointment", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", ctx, int64(999)).Return(nil, apperrors.NotFound("appointment", nil))

		_, err := f.svc.UpdateStatus(ctx, 999, &model.UpdateStatusRequest{Status: "Confirmed"})
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("notification failure does not fail the update", func(t *testing.T) {
		f := newFixture()
		f.broker.err = errors.New("redis down")
		f.repo.On("Get", ctx, int64(5)).Return(appointmentWithStatus(model.AppointmentStatusRequested), nil).Once()
		f.repo.On("UpdateStatus", ctx, int64(5), model.AppointmentStatusCancelled).Return(nil)
		f.repo.On("Get", ctx, int64(5)).Return(appointmentWithStatus(model.AppointmentStatusCancelled), nil).Once()
		f.notifier.On("Dispatch", ctx, model.NotificationOutcomeCancelled, mock.Anything).
			Return(apperrors.Dispatch("failed to send cancelled notification", errors.New("smtp timeout")))

		got, err := f.svc.UpdateStatus(ctx, 5, &model.UpdateStatusRequest{Status: "Cancelled"})
		require.NoError(t, err)
		assert.Equal(t, model.AppointmentStatusCancelled, got.Status)
	})
}
