package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	storage "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const managerID = int64(42)

type fakeAppointmentRepo struct {
	appointment *domain.Appointment
	changes     []domain.StatusChange

	cancelReason string
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Appointment, error) {
	if r.appointment == nil || r.appointment.ID != id {
		return nil, storage.ErrAppointmentNotFound
	}
	return r.appointment, nil
}

func (r *fakeAppointmentRepo) GetByClientID(_ context.Context, clientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	if r.appointment == nil || r.appointment.ClientID != clientID {
		return nil, nil
	}
	if status != nil && r.appointment.Status != *status {
		return nil, nil
	}
	return []*domain.Appointment{r.appointment}, nil
}

func (r *fakeAppointmentRepo) GetByProviderWithFilter(_ context.Context, filter domain.ProviderAppointmentsFilter) ([]*domain.Appointment, error) {
	if r.appointment == nil || r.appointment.ProviderID != filter.ProviderID {
		return nil, nil
	}
	return []*domain.Appointment{r.appointment}, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.AppointmentStatus) error {
	r.appointment.Status = status
	return nil
}

func (r *fakeAppointmentRepo) Cancel(_ context.Context, id uuid.UUID, reason string) error {
	r.appointment.Status = domain.StatusCancelled
	r.cancelReason = reason
	return nil
}

func (r *fakeAppointmentRepo) AppendStatusChange(_ context.Context, change domain.StatusChange) error {
	r.changes = append(r.changes, change)
	return nil
}

type fakeScheduleRepo struct {
	config *domain.ScheduleConfig
}

func (r *fakeScheduleRepo) GetConfigWithHierarchy(_ context.Context, _ int64, _ *int64) (*domain.ScheduleConfig, error) {
	return r.config, nil
}

type fakeProviderClient struct{}

func (c *fakeProviderClient) GetProvider(_ context.Context, providerID int64) (*providerservice.Provider, error) {
	return &providerservice.Provider{
		ID:         providerID,
		Name:       "Автомойка на Ленина",
		Timezone:   "UTC",
		ManagerIDs: []int64{managerID},
		IsActive:   true,
	}, nil
}

func (c *fakeProviderClient) ProviderLocation(_ context.Context, _ int64) (*time.Location, error) {
	return time.UTC, nil
}

type fakeNotifyClient struct {
	events []notifyservice.Event
}

func (c *fakeNotifyClient) SendAsync(event notifyservice.Event) {
	c.events = append(c.events, event)
}

type promotedSlot struct {
	providerID int64
	serviceID  int64
	date       time.Time
	startTime  types.TimeString
}

type fakePromoter struct {
	promoted []promotedSlot
}

func (p *fakePromoter) PromoteForSlot(_ context.Context, providerID, serviceID int64, date time.Time, startTime types.TimeString) {
	p.promoted = append(p.promoted, promotedSlot{providerID, serviceID, date, startTime})
}

type fakeSessionStore struct {
	deleted []uuid.UUID
}

func (s *fakeSessionStore) Delete(_ context.Context, appointmentID uuid.UUID) error {
	s.deleted = append(s.deleted, appointmentID)
	return nil
}

type fakeTxManager struct{}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeMetrics struct {
	cancelledBy []string
	transitions []string
}

func (m *fakeMetrics) IncAppointmentCancelled(by string) {
	m.cancelledBy = append(m.cancelledBy, by)
}

func (m *fakeMetrics) IncTransition(from, to string) {
	m.transitions = append(m.transitions, from+"->"+to)
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type noopLogger struct{}

func (l *noopLogger) Info(string, ...interface{})  {}
func (l *noopLogger) Warn(string, ...interface{})  {}
func (l *noopLogger) Error(string, ...interface{}) {}

func testAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:              uuid.New(),
		ClientID:        7,
		ProviderID:      1,
		ServiceID:       10,
		BookingDate:     time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString("12:30"),
		DurationMinutes: 90,
		Status:          domain.StatusScheduled,
	}
}

type fixture struct {
	svc          *Service
	repo         *fakeAppointmentRepo
	notifyClient *fakeNotifyClient
	promoter     *fakePromoter
	sessionStore *fakeSessionStore
	metrics      *fakeMetrics
}

func newFixture(apt *domain.Appointment, config *domain.ScheduleConfig, now time.Time) *fixture {
	repo := &fakeAppointmentRepo{appointment: apt}
	notifyClient := &fakeNotifyClient{}
	promoter := &fakePromoter{}
	sessionStore := &fakeSessionStore{}
	collector := &fakeMetrics{}

	svc := NewService(
		repo,
		&fakeScheduleRepo{config: config},
		&fakeProviderClient{},
		notifyClient,
		promoter,
		sessionStore,
		&fakeTxManager{},
		collector,
		&noopLogger{},
	)
	svc.timeProvider = &fixedTimeProvider{now: now}

	return &fixture{
		svc:          svc,
		repo:         repo,
		notifyClient: notifyClient,
		promoter:     promoter,
		sessionStore: sessionStore,
		metrics:      collector,
	}
}

func cancelRequest(actorID int64, role domain.ActorRole, reason string) *models.CancelAppointmentRequest {
	return &models.CancelAppointmentRequest{
		ActorRequest:       models.ActorRequest{ActorID: actorID, ActorRole: role},
		CancellationReason: reason,
	}
}

func TestCancel_ClientOutsideWindow(t *testing.T) {
	apt := testAppointment()
	now := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	err := f.svc.Cancel(context.Background(), apt.ID, cancelRequest(7, domain.RoleClient, "не смогу прийти"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, f.repo.appointment.Status)
	assert.Equal(t, "не смогу прийти", f.repo.cancelReason)

	require.Len(t, f.repo.changes, 1)
	assert.Equal(t, string(domain.StatusScheduled), f.repo.changes[0].OldValue)
	assert.Equal(t, string(domain.StatusCancelled), f.repo.changes[0].NewValue)

	assert.Equal(t, []string{"client"}, f.metrics.cancelledBy)
	assert.Equal(t, []string{"scheduled->cancelled"}, f.metrics.transitions)
	assert.Equal(t, []uuid.UUID{apt.ID}, f.sessionStore.deleted)

	require.Len(t, f.notifyClient.events, 1)
	assert.Equal(t, notifyservice.EventAppointmentCancelled, f.notifyClient.events[0].Type)

	// Освободившийся слот отдан листу ожидания
	require.Len(t, f.promoter.promoted, 1)
	assert.Equal(t, apt.ProviderID, f.promoter.promoted[0].providerID)
	assert.Equal(t, types.TimeString("12:30"), f.promoter.promoted[0].startTime)
}

func TestCancel_ExactlyAtWindowBoundary(t *testing.T) {
	// До начала ровно 24 часа: отмена на границе окна разрешена
	apt := testAppointment()
	now := time.Date(2025, 10, 14, 12, 30, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	err := f.svc.Cancel(context.Background(), apt.ID, cancelRequest(7, domain.RoleClient, "планы изменились"))
	assert.NoError(t, err)
}

func TestCancel_InsideWindowForClient(t *testing.T) {
	apt := testAppointment()
	now := time.Date(2025, 10, 14, 12, 31, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	err := f.svc.Cancel(context.Background(), apt.ID, cancelRequest(7, domain.RoleClient, "планы изменились"))
	assert.ErrorIs(t, err, ErrCancellationWindowPassed)

	assert.Equal(t, domain.StatusScheduled, f.repo.appointment.Status)
	assert.Empty(t, f.promoter.promoted)
}

func TestCancel_PrivilegedOverrideInsideWindow(t *testing.T) {
	apt := testAppointment()
	now := time.Date(2025, 10, 15, 11, 0, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	err := f.svc.Cancel(context.Background(), apt.ID, cancelRequest(managerID, domain.RoleProvider, "мастер заболел"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, f.repo.appointment.Status)
	assert.Equal(t, []string{"provider"}, f.metrics.cancelledBy)
}

func TestCancel_ReasonRequired(t *testing.T) {
	apt := testAppointment()
	now := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	err := f.svc.Cancel(context.Background(), apt.ID, cancelRequest(7, domain.RoleClient, ""))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel_TerminalStatus(t *testing.T) {
	apt := testAppointment()
	apt.Status = domain.StatusCompleted
	now := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	err := f.svc.Cancel(context.Background(), apt.ID, cancelRequest(7, domain.RoleClient, "поздно"))
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancel_ForeignAppointment(t *testing.T) {
	apt := testAppointment()
	now := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	err := f.svc.Cancel(context.Background(), apt.ID, cancelRequest(99, domain.RoleClient, "чужая запись"))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestConfirm_Success(t *testing.T) {
	apt := testAppointment()
	now := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	err := f.svc.Confirm(context.Background(), apt.ID, managerID, domain.RoleProvider)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, f.repo.appointment.Status)
	assert.Equal(t, []string{"scheduled->confirmed"}, f.metrics.transitions)

	// Аудит фиксирует исходный статус и время в таймзоне провайдера
	require.Len(t, f.repo.changes, 1)
	assert.Equal(t, string(domain.StatusScheduled), f.repo.changes[0].OldValue)
	assert.Equal(t, string(domain.StatusConfirmed), f.repo.changes[0].NewValue)
	assert.True(t, f.repo.changes[0].ChangedAt.Equal(now))

	// Окно оплаты закрыто, pending-состояние удалено
	assert.Equal(t, []uuid.UUID{apt.ID}, f.sessionStore.deleted)

	require.Len(t, f.notifyClient.events, 1)
	assert.Equal(t, notifyservice.EventAppointmentConfirmed, f.notifyClient.events[0].Type)
}

func TestConfirm_RequiresPrivilegedActor(t *testing.T) {
	// Подтверждение - одобрение заявки провайдером, клиенту недоступно
	apt := testAppointment()
	now := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	err := f.svc.Confirm(context.Background(), apt.ID, 7, domain.RoleClient)
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.Equal(t, domain.StatusScheduled, f.repo.appointment.Status)
	assert.Empty(t, f.repo.changes)
	assert.Empty(t, f.notifyClient.events)
}

func TestConfirm_InvalidTransition(t *testing.T) {
	apt := testAppointment()
	apt.Status = domain.StatusCompleted
	now := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	err := f.svc.Confirm(context.Background(), apt.ID, managerID, domain.RoleProvider)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStart_RequiresPrivilegedActor(t *testing.T) {
	apt := testAppointment()
	apt.Status = domain.StatusConfirmed
	now := time.Date(2025, 10, 15, 12, 20, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	err := f.svc.Start(context.Background(), apt.ID, 7, domain.RoleClient)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestStart_GracePeriod(t *testing.T) {
	// Начало в 12:30, разрешено не раньше 12:15
	apt := testAppointment()
	apt.Status = domain.StatusConfirmed

	now := time.Date(2025, 10, 15, 12, 14, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)
	err := f.svc.Start(context.Background(), apt.ID, managerID, domain.RoleProvider)
	assert.ErrorIs(t, err, ErrTooEarlyToStart)

	now = time.Date(2025, 10, 15, 12, 15, 0, 0, time.UTC)
	f = newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)
	err = f.svc.Start(context.Background(), apt.ID, managerID, domain.RoleProvider)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, f.repo.appointment.Status)
}

func TestMarkNoShow_OnlyAfterScheduledStart(t *testing.T) {
	apt := testAppointment()
	apt.Status = domain.StatusConfirmed

	now := time.Date(2025, 10, 15, 12, 30, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)
	err := f.svc.MarkNoShow(context.Background(), apt.ID, managerID, domain.RoleProvider, nil)
	assert.ErrorIs(t, err, ErrTooEarlyForNoShow)

	now = time.Date(2025, 10, 15, 12, 45, 0, 0, time.UTC)
	f = newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)
	err = f.svc.MarkNoShow(context.Background(), apt.ID, managerID, domain.RoleProvider, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNoShow, f.repo.appointment.Status)
	require.Len(t, f.notifyClient.events, 1)
	assert.Equal(t, notifyservice.EventAppointmentNoShow, f.notifyClient.events[0].Type)

	// Неявка освобождает слот: он отдаётся листу ожидания, как при отмене
	require.Len(t, f.promoter.promoted, 1)
	assert.Equal(t, apt.ProviderID, f.promoter.promoted[0].providerID)
	assert.Equal(t, apt.ServiceID, f.promoter.promoted[0].serviceID)
	assert.Equal(t, types.TimeString("12:30"), f.promoter.promoted[0].startTime)
}

func TestUpdateStatus_Dispatch(t *testing.T) {
	apt := testAppointment()
	now := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	req := &models.UpdateStatusRequest{
		ActorRequest: models.ActorRequest{ActorID: managerID, ActorRole: domain.RoleProvider},
		Status:       "confirmed",
	}
	require.NoError(t, f.svc.UpdateStatus(context.Background(), apt.ID, req))
	assert.Equal(t, domain.StatusConfirmed, f.repo.appointment.Status)

	// scheduled недостижим через update
	req.Status = "scheduled"
	assert.ErrorIs(t, f.svc.UpdateStatus(context.Background(), apt.ID, req), ErrInvalidTransition)

	req.Status = "pending"
	assert.ErrorIs(t, f.svc.UpdateStatus(context.Background(), apt.ID, req), ErrInvalidStatus)
}

func TestGetByID_AccessControl(t *testing.T) {
	apt := testAppointment()
	now := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	// Владелец видит свою запись
	resp, err := f.svc.GetByID(context.Background(), apt.ID, 7, domain.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, apt.ID, resp.ID)

	// Чужой клиент - нет
	_, err = f.svc.GetByID(context.Background(), apt.ID, 99, domain.RoleClient)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Менеджер провайдера видит записи провайдера
	_, err = f.svc.GetByID(context.Background(), apt.ID, managerID, domain.RoleProvider)
	assert.NoError(t, err)

	// Посторонний менеджер - нет
	_, err = f.svc.GetByID(context.Background(), apt.ID, 99, domain.RoleProvider)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Админ видит всё
	_, err = f.svc.GetByID(context.Background(), apt.ID, 1, domain.RoleAdmin)
	assert.NoError(t, err)
}

func TestGetProviderAppointments_ManagerOnly(t *testing.T) {
	apt := testAppointment()
	now := time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC)
	f := newFixture(apt, &domain.ScheduleConfig{CancellationHours: 24}, now)

	req := &models.GetProviderAppointmentsRequest{ActorID: managerID, ProviderID: 1}
	resp, err := f.svc.GetProviderAppointments(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)

	req.ActorID = 99
	_, err = f.svc.GetProviderAppointments(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
