package waitlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type fakeWaitlistRepo struct {
	entries []*domain.WaitlistEntry

	statusUpdates  map[uuid.UUID]domain.WaitlistStatus
	expireCutoff   time.Time
	expireAffected int64
	expireErr      error
}

func (r *fakeWaitlistRepo) ListWaiting(_ context.Context, _, _ int64, _ time.Time) ([]*domain.WaitlistEntry, error) {
	return r.entries, nil
}

func (r *fakeWaitlistRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.WaitlistStatus) error {
	if r.statusUpdates == nil {
		r.statusUpdates = map[uuid.UUID]domain.WaitlistStatus{}
	}
	r.statusUpdates[id] = status
	return nil
}

func (r *fakeWaitlistRepo) ExpireBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.expireCutoff = cutoff
	return r.expireAffected, r.expireErr
}

type fakeBooker struct {
	requests []*create_appointment.Request
	failFor  map[int64]error // clientID -> ошибка бронирования
}

func (b *fakeBooker) Execute(_ context.Context, req *create_appointment.Request) (*create_appointment.Response, error) {
	b.requests = append(b.requests, req)
	if err, ok := b.failFor[req.ClientID]; ok {
		return nil, err
	}
	return &create_appointment.Response{ID: uuid.New(), ClientID: req.ClientID}, nil
}

type fakeNotifyClient struct {
	events []notifyservice.Event
}

func (c *fakeNotifyClient) SendAsync(event notifyservice.Event) {
	c.events = append(c.events, event)
}

type fakeMetrics struct {
	promotions []string
}

func (m *fakeMetrics) IncWaitlistPromotion(result string) {
	m.promotions = append(m.promotions, result)
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

var slotDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func entry(clientID int64, desiredTime *types.TimeString, createdAt time.Time) *domain.WaitlistEntry {
	return &domain.WaitlistEntry{
		ID:          uuid.New(),
		ClientID:    clientID,
		ProviderID:  1,
		ServiceID:   10,
		DesiredDate: slotDate,
		DesiredTime: desiredTime,
		Status:      domain.WaitlistStatusWaiting,
		CreatedAt:   createdAt,
	}
}

type fixture struct {
	svc          *Service
	repo         *fakeWaitlistRepo
	booker       *fakeBooker
	notifyClient *fakeNotifyClient
	metrics      *fakeMetrics
}

func newFixture(entries []*domain.WaitlistEntry) *fixture {
	repo := &fakeWaitlistRepo{entries: entries}
	booker := &fakeBooker{}
	notifyClient := &fakeNotifyClient{}
	collector := &fakeMetrics{}

	svc := NewService(repo, booker, notifyClient, collector, &noopLogger{})

	return &fixture{svc: svc, repo: repo, booker: booker, notifyClient: notifyClient, metrics: collector}
}

func TestPromoteForSlot_FirstMatchingCandidateWins(t *testing.T) {
	// Очередь FIFO: репозиторий отдаёт записи по created_at,
	// слот получает первый подходящий кандидат
	base := time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)
	first := entry(7, ptr.Ptr(types.TimeString("12:30")), base)
	second := entry(8, ptr.Ptr(types.TimeString("12:30")), base.Add(time.Minute))

	f := newFixture([]*domain.WaitlistEntry{first, second})
	f.svc.PromoteForSlot(context.Background(), 1, 10, slotDate, "12:30")

	require.Len(t, f.booker.requests, 1)
	assert.Equal(t, int64(7), f.booker.requests[0].ClientID)
	assert.True(t, f.booker.requests[0].SkipWaitlist)

	assert.Equal(t, domain.WaitlistStatusFulfilled, f.repo.statusUpdates[first.ID])
	_, touched := f.repo.statusUpdates[second.ID]
	assert.False(t, touched)

	assert.Equal(t, []string{"fulfilled"}, f.metrics.promotions)

	require.Len(t, f.notifyClient.events, 1)
	event := f.notifyClient.events[0]
	assert.Equal(t, notifyservice.EventWaitlistFulfilled, event.Type)
	assert.Equal(t, int64(7), event.ClientID)
	assert.Equal(t, first.ID.String(), event.Payload["waitlist_entry_id"])
}

func TestPromoteForSlot_NilDesiredTimeMatchesAnySlot(t *testing.T) {
	candidate := entry(7, nil, time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC))

	f := newFixture([]*domain.WaitlistEntry{candidate})
	f.svc.PromoteForSlot(context.Background(), 1, 10, slotDate, "17:00")

	require.Len(t, f.booker.requests, 1)
	// Без желаемого времени бронируется освободившийся слот
	assert.Equal(t, types.TimeString("17:00"), f.booker.requests[0].StartTime)
	assert.Equal(t, domain.WaitlistStatusFulfilled, f.repo.statusUpdates[candidate.ID])
}

func TestPromoteForSlot_SkipsMismatchedTime(t *testing.T) {
	other := entry(7, ptr.Ptr(types.TimeString("11:00")), time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC))

	f := newFixture([]*domain.WaitlistEntry{other})
	f.svc.PromoteForSlot(context.Background(), 1, 10, slotDate, "12:30")

	assert.Empty(t, f.booker.requests)
	assert.Empty(t, f.repo.statusUpdates)
	assert.Empty(t, f.metrics.promotions)
}

func TestPromoteForSlot_FailedBookingMovesToNextCandidate(t *testing.T) {
	base := time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)
	first := entry(7, ptr.Ptr(types.TimeString("12:30")), base)
	second := entry(8, ptr.Ptr(types.TimeString("12:30")), base.Add(time.Minute))

	f := newFixture([]*domain.WaitlistEntry{first, second})
	f.booker.failFor = map[int64]error{7: errors.New("too late to book this slot")}

	f.svc.PromoteForSlot(context.Background(), 1, 10, slotDate, "12:30")

	// Сбой первого кандидата не останавливает очередь
	require.Len(t, f.booker.requests, 2)
	assert.Equal(t, domain.WaitlistStatusFulfilled, f.repo.statusUpdates[second.ID])
	_, touched := f.repo.statusUpdates[first.ID]
	assert.False(t, touched)

	assert.Equal(t, []string{"failed", "fulfilled"}, f.metrics.promotions)
}

func TestPromoteForSlot_SkipsNonWaitingEntries(t *testing.T) {
	fulfilled := entry(7, ptr.Ptr(types.TimeString("12:30")), time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC))
	fulfilled.Status = domain.WaitlistStatusFulfilled
	waiting := entry(8, ptr.Ptr(types.TimeString("12:30")), time.Date(2025, 10, 10, 10, 0, 0, 0, time.UTC))

	f := newFixture([]*domain.WaitlistEntry{fulfilled, waiting})
	f.svc.PromoteForSlot(context.Background(), 1, 10, slotDate, "12:30")

	require.Len(t, f.booker.requests, 1)
	assert.Equal(t, int64(8), f.booker.requests[0].ClientID)
}

func TestPromoteForSlot_EmptyQueue(t *testing.T) {
	f := newFixture(nil)
	f.svc.PromoteForSlot(context.Background(), 1, 10, slotDate, "12:30")

	assert.Empty(t, f.booker.requests)
	assert.Empty(t, f.notifyClient.events)
}

func TestExpireStale(t *testing.T) {
	f := newFixture(nil)
	f.repo.expireAffected = 3
	f.svc.timeProvider = &fixedTimeProvider{
		now: time.Date(2025, 10, 15, 13, 45, 0, 0, time.UTC),
	}

	affected, err := f.svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)

	// Порог - полночь текущего дня: сегодняшние записи ещё живы
	assert.Equal(t, time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), f.repo.expireCutoff)
}

func TestExpireStale_RepositoryError(t *testing.T) {
	f := newFixture(nil)
	f.repo.expireErr = errors.New("connection reset")
	f.svc.timeProvider = &fixedTimeProvider{now: time.Date(2025, 10, 15, 13, 45, 0, 0, time.UTC)}

	_, err := f.svc.ExpireStale(context.Background())
	assert.Error(t, err)
}
