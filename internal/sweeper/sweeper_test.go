package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

type fakeAppointmentRepo struct {
	stale     []*domain.Appointment
	listErr   error
	gotCutoff time.Time
}

func (r *fakeAppointmentRepo) ListStaleScheduled(_ context.Context, cutoff time.Time) ([]*domain.Appointment, error) {
	r.gotCutoff = cutoff
	return r.stale, r.listErr
}

type fakeCanceller struct {
	requests map[uuid.UUID]*models.CancelAppointmentRequest
	failFor  map[uuid.UUID]error
}

func (c *fakeCanceller) Cancel(_ context.Context, id uuid.UUID, req *models.CancelAppointmentRequest) error {
	if c.requests == nil {
		c.requests = map[uuid.UUID]*models.CancelAppointmentRequest{}
	}
	if err, ok := c.failFor[id]; ok {
		return err
	}
	c.requests[id] = req
	return nil
}

type fakeWaitlistExpirer struct {
	affected int64
	err      error
}

func (w *fakeWaitlistExpirer) ExpireStale(_ context.Context) (int64, error) {
	return w.affected, w.err
}

type fakeMetrics struct {
	sweeps []string
}

func (m *fakeMetrics) IncSweep(sweep, status string) {
	m.sweeps = append(m.sweeps, sweep+":"+status)
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

func staleAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:         uuid.New(),
		ClientID:   7,
		ProviderID: 1,
		ServiceID:  10,
		Status:     domain.StatusScheduled,
	}
}

func newSweeper(repo *fakeAppointmentRepo, canceller *fakeCanceller, expirer *fakeWaitlistExpirer, m *fakeMetrics, now time.Time) *Sweeper {
	return New(repo, canceller, expirer, m, &fixedTimeProvider{now: now}, &noopLogger{}, 5, 30)
}

func TestSweepPending_CancelsStaleAsSystem(t *testing.T) {
	first := staleAppointment()
	second := staleAppointment()
	repo := &fakeAppointmentRepo{stale: []*domain.Appointment{first, second}}
	canceller := &fakeCanceller{}
	collector := &fakeMetrics{}
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	s := newSweeper(repo, canceller, &fakeWaitlistExpirer{}, collector, now)

	require.NoError(t, s.SweepPending(context.Background()))

	// Порог - окно подтверждения назад от текущего момента
	assert.Equal(t, now.Add(-30*time.Minute), repo.gotCutoff)

	require.Len(t, canceller.requests, 2)
	req := canceller.requests[first.ID]
	require.NotNil(t, req)
	assert.Equal(t, domain.SystemActorID, req.ActorID)
	assert.Equal(t, domain.RoleSystem, req.ActorRole)
	assert.Equal(t, PendingExpiryReason, req.CancellationReason)

	assert.Equal(t, []string{"pending:cancelled", "pending:cancelled"}, collector.sweeps)
}

func TestSweepPending_FailureDoesNotBlockOthers(t *testing.T) {
	first := staleAppointment()
	second := staleAppointment()
	repo := &fakeAppointmentRepo{stale: []*domain.Appointment{first, second}}
	canceller := &fakeCanceller{
		failFor: map[uuid.UUID]error{first.ID: errors.New("serialization failure")},
	}
	collector := &fakeMetrics{}
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	s := newSweeper(repo, canceller, &fakeWaitlistExpirer{}, collector, now)

	err := s.SweepPending(context.Background())
	assert.Error(t, err)

	// Второй кандидат всё равно отменён
	require.Len(t, canceller.requests, 1)
	assert.NotNil(t, canceller.requests[second.ID])
	assert.Equal(t, []string{"pending:error", "pending:cancelled"}, collector.sweeps)
}

func TestSweepPending_NothingStale(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	collector := &fakeMetrics{}
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	s := newSweeper(repo, &fakeCanceller{}, &fakeWaitlistExpirer{}, collector, now)

	require.NoError(t, s.SweepPending(context.Background()))
	assert.Empty(t, collector.sweeps)
}

func TestSweepPending_ListError(t *testing.T) {
	repo := &fakeAppointmentRepo{listErr: errors.New("connection reset")}
	collector := &fakeMetrics{}
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	s := newSweeper(repo, &fakeCanceller{}, &fakeWaitlistExpirer{}, collector, now)

	assert.Error(t, s.SweepPending(context.Background()))
	assert.Equal(t, []string{"pending:error"}, collector.sweeps)
}

func TestSweepWaitlist(t *testing.T) {
	collector := &fakeMetrics{}
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	s := newSweeper(&fakeAppointmentRepo{}, &fakeCanceller{}, &fakeWaitlistExpirer{affected: 4}, collector, now)
	require.NoError(t, s.SweepWaitlist(context.Background()))
	assert.Equal(t, []string{"waitlist:expired"}, collector.sweeps)

	// Пустая зачистка метрику не инкрементирует
	collector = &fakeMetrics{}
	s = newSweeper(&fakeAppointmentRepo{}, &fakeCanceller{}, &fakeWaitlistExpirer{}, collector, now)
	require.NoError(t, s.SweepWaitlist(context.Background()))
	assert.Empty(t, collector.sweeps)
}

func TestSweepWaitlist_Error(t *testing.T) {
	collector := &fakeMetrics{}
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

	s := newSweeper(&fakeAppointmentRepo{}, &fakeCanceller{}, &fakeWaitlistExpirer{err: errors.New("boom")}, collector, now)
	assert.Error(t, s.SweepWaitlist(context.Background()))
	assert.Equal(t, []string{"waitlist:error"}, collector.sweeps)
}
