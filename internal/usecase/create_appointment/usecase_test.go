package create_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/session"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Фейки зависимостей

type fakeAppointmentRepo struct {
	existing []*domain.Appointment
	created  *domain.Appointment
	changes  []domain.StatusChange
}

func (f *fakeAppointmentRepo) Create(_ context.Context, apt *domain.Appointment) (*domain.Appointment, error) {
	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt
	f.created = apt
	return apt, nil
}

func (f *fakeAppointmentRepo) GetByProviderWithFilter(_ context.Context, _ domain.ProviderAppointmentsFilter) ([]*domain.Appointment, error) {
	return f.existing, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, _ uuid.UUID, status domain.AppointmentStatus) error {
	f.created.Status = status
	return nil
}

func (f *fakeAppointmentRepo) AppendStatusChange(_ context.Context, change domain.StatusChange) error {
	f.changes = append(f.changes, change)
	return nil
}

type fakeScheduleRepo struct {
	config *domain.ScheduleConfig
}

func (f *fakeScheduleRepo) GetConfigWithHierarchy(_ context.Context, _ int64, _ *int64) (*domain.ScheduleConfig, error) {
	if f.config == nil {
		return nil, scheduleRepo.ErrConfigNotFound
	}
	return f.config, nil
}

type fakeWaitlistRepo struct {
	created *domain.WaitlistEntry
}

func (f *fakeWaitlistRepo) Create(_ context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error) {
	entry.ID = uuid.New()
	entry.Status = domain.WaitlistStatusWaiting
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	f.created = entry
	return entry, nil
}

type fakeProviderClient struct {
	service *providerservice.Service
}

func (f *fakeProviderClient) GetService(_ context.Context, _, _ int64) (*providerservice.Service, error) {
	return f.service, nil
}

func (f *fakeProviderClient) ProviderLocation(_ context.Context, _ int64) (*time.Location, error) {
	return time.UTC, nil
}

type fakeNotifyClient struct {
	events []notifyservice.Event
}

func (f *fakeNotifyClient) SendAsync(event notifyservice.Event) {
	f.events = append(f.events, event)
}

type fakeSessionStore struct {
	states []*session.State
}

func (f *fakeSessionStore) Set(_ context.Context, state *session.State, _ time.Duration) error {
	f.states = append(f.states, state)
	return nil
}

type fakeTxManager struct{}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}

// Сборка use case с фейками

type fixture struct {
	uc              *UseCase
	appointmentRepo *fakeAppointmentRepo
	waitlistRepo    *fakeWaitlistRepo
	notifyClient    *fakeNotifyClient
	sessionStore    *fakeSessionStore
}

func newFixture(config *domain.ScheduleConfig, existing []*domain.Appointment) *fixture {
	appointmentRepo := &fakeAppointmentRepo{existing: existing}
	waitlistRepo := &fakeWaitlistRepo{}
	notifyClient := &fakeNotifyClient{}
	sessionStore := &fakeSessionStore{}

	uc := NewUseCase(
		appointmentRepo,
		&fakeScheduleRepo{config: config},
		waitlistRepo,
		&fakeProviderClient{service: &providerservice.Service{
			ID:              10,
			ProviderID:      1,
			Name:            "Deep cleaning",
			DurationMinutes: ptr.Ptr(90),
			BasePrice:       100,
			IsActive:        true,
		}},
		notifyClient,
		sessionStore,
		&fakeTxManager{},
		noopLogger{},
	)
	// 2025-10-13, понедельник, 09:00 UTC
	uc.timeProvider = &fixedTimeProvider{now: time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)}

	return &fixture{
		uc:              uc,
		appointmentRepo: appointmentRepo,
		waitlistRepo:    waitlistRepo,
		notifyClient:    notifyClient,
		sessionStore:    sessionStore,
	}
}

func testConfig() *domain.ScheduleConfig {
	return &domain.ScheduleConfig{
		ID:                    1,
		ProviderID:            1,
		BusinessDays:          []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
		StartHour:             11,
		EndHour:               20,
		SlotDurationMinutes:   30,
		MaxConcurrentBookings: 1,
		BulkDiscountPercent:   10,
		RequiresApproval:      true,
	}
}

func testRequest() *Request {
	return &Request{
		ClientID:   7,
		ProviderID: 1,
		ServiceID:  10,
		Date:       time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), // среда
		StartTime:  types.TimeString("12:30"),
		Quantity:   3,
	}
}

func TestExecute_CreatesScheduledAppointmentWithBulkPrice(t *testing.T) {
	f := newFixture(testConfig(), nil)

	resp, err := f.uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	assert.False(t, resp.Waitlisted)
	assert.Equal(t, string(domain.StatusScheduled), resp.Status)
	// Длительность услуги важнее длительности слота из конфигурации
	assert.Equal(t, 90, resp.DurationMinutes)
	// 100 * 3 минус 10% = 270.00
	assert.Equal(t, 270.0, resp.TotalPrice)
	assert.Equal(t, 3, resp.Quantity)

	// Аудит рождения записи
	require.Len(t, f.appointmentRepo.changes, 1)
	assert.Equal(t, string(domain.StatusScheduled), f.appointmentRepo.changes[0].NewValue)

	// Состояние окна оплаты и уведомление
	require.Len(t, f.sessionStore.states, 1)
	assert.Equal(t, resp.ID, f.sessionStore.states[0].AppointmentID)
	require.Len(t, f.notifyClient.events, 1)
	assert.Equal(t, notifyservice.EventAppointmentCreated, f.notifyClient.events[0].Type)
}

func TestExecute_AutoConfirmWhenApprovalNotRequired(t *testing.T) {
	config := testConfig()
	config.RequiresApproval = false
	f := newFixture(config, nil)

	resp, err := f.uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, domain.StatusConfirmed, f.appointmentRepo.created.Status)

	// Два аудитных перехода: рождение записи и системное подтверждение
	require.Len(t, f.appointmentRepo.changes, 2)
	confirm := f.appointmentRepo.changes[1]
	assert.Equal(t, string(domain.StatusScheduled), confirm.OldValue)
	assert.Equal(t, string(domain.StatusConfirmed), confirm.NewValue)
	assert.Equal(t, domain.SystemActorID, confirm.ChangedBy)
	assert.Equal(t, domain.RoleSystem, confirm.ChangedByRole)

	// Окно оплаты не открывается: sweeper'у здесь нечего истекать
	assert.Empty(t, f.sessionStore.states)

	require.Len(t, f.notifyClient.events, 2)
	assert.Equal(t, notifyservice.EventAppointmentCreated, f.notifyClient.events[0].Type)
	assert.Equal(t, notifyservice.EventAppointmentConfirmed, f.notifyClient.events[1].Type)
}

func TestExecute_SlotTakenGoesToWaitlist(t *testing.T) {
	config := testConfig()
	config.AllowWaitlist = true

	existing := []*domain.Appointment{
		{StartTime: "12:30", DurationMinutes: 90, Status: domain.StatusConfirmed},
	}
	f := newFixture(config, existing)

	resp, err := f.uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	assert.True(t, resp.Waitlisted)
	require.NotNil(t, resp.WaitlistEntryID)
	assert.Nil(t, f.appointmentRepo.created)

	require.NotNil(t, f.waitlistRepo.created)
	assert.Equal(t, int64(7), f.waitlistRepo.created.ClientID)
	require.NotNil(t, f.waitlistRepo.created.DesiredTime)
	assert.Equal(t, types.TimeString("12:30"), *f.waitlistRepo.created.DesiredTime)
}

func TestExecute_SkipWaitlistReturnsConflict(t *testing.T) {
	config := testConfig()
	config.AllowWaitlist = true

	existing := []*domain.Appointment{
		{StartTime: "12:30", DurationMinutes: 90, Status: domain.StatusConfirmed},
	}
	f := newFixture(config, existing)

	req := testRequest()
	req.SkipWaitlist = true

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Nil(t, f.waitlistRepo.created)
}

func TestExecute_SlotTakenWithoutWaitlist(t *testing.T) {
	existing := []*domain.Appointment{
		{StartTime: "12:30", DurationMinutes: 90, Status: domain.StatusScheduled},
	}
	f := newFixture(testConfig(), existing)

	_, err := f.uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_BoundaryTouchingAppointmentDoesNotBlock(t *testing.T) {
	// Запись 11:00-12:30 заканчивается ровно на старте запрошенного слота
	existing := []*domain.Appointment{
		{StartTime: "11:00", DurationMinutes: 90, Status: domain.StatusConfirmed},
	}
	f := newFixture(testConfig(), existing)

	resp, err := f.uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)
	assert.False(t, resp.Waitlisted)
}

func TestExecute_DailyLimitClosesDayEntirely(t *testing.T) {
	config := testConfig()
	config.AllowWaitlist = true
	config.MaxBookingsPerDay = 2

	// Лимит исчерпан записями в другие часы: в лист ожидания не ставим
	existing := []*domain.Appointment{
		{StartTime: "11:00", DurationMinutes: 90, Status: domain.StatusConfirmed},
		{StartTime: "17:00", DurationMinutes: 90, Status: domain.StatusScheduled},
	}
	f := newFixture(config, existing)

	_, err := f.uc.Execute(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrDailyLimitReached)
	assert.Nil(t, f.waitlistRepo.created)
}

func TestExecute_CancelledAppointmentFreesSlot(t *testing.T) {
	existing := []*domain.Appointment{
		{StartTime: "12:30", DurationMinutes: 90, Status: domain.StatusCancelled},
	}
	f := newFixture(testConfig(), existing)

	resp, err := f.uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)
	assert.False(t, resp.Waitlisted)
}

func TestExecute_MisalignedStartTime(t *testing.T) {
	f := newFixture(testConfig(), nil)

	req := testRequest()
	req.StartTime = types.TimeString("12:00") // сетка с шагом 90 от 11:00: 11:00, 12:30...

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestExecute_ClosedDay(t *testing.T) {
	f := newFixture(testConfig(), nil)

	req := testRequest()
	req.Date = time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC) // воскресенье

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrProviderClosed)
}

func TestExecute_PastDate(t *testing.T) {
	f := newFixture(testConfig(), nil)

	req := testRequest()
	req.Date = time.Date(2025, 10, 12, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_DefaultConfigWhenMissing(t *testing.T) {
	// Конфигурации нет: дефолт 9-18, шаг услуги 90 минут, будни
	f := newFixture(nil, nil)

	req := testRequest()
	req.StartTime = types.TimeString("10:30")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 90, resp.DurationMinutes)
	// Дефолтная конфигурация без скидки
	assert.Equal(t, 300.0, resp.TotalPrice)
}

func TestExecute_ZeroQuantityTreatedAsOne(t *testing.T) {
	f := newFixture(testConfig(), nil)

	req := testRequest()
	req.Quantity = 0

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Quantity)
	assert.Equal(t, 100.0, resp.TotalPrice)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture(testConfig(), nil)

	req := testRequest()
	req.ClientID = 0

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
