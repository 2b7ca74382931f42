package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

const sweepTimeout = 2 * time.Minute

// PendingExpiryReason причина отмены, которая попадает в историю записи
const PendingExpiryReason = "confirmation window expired"

// Sweeper фоновые зачистки: снятие неподтверждённых записей и
// перевод устаревших записей листа ожидания в expired
type Sweeper struct {
	appointmentRepo AppointmentRepository
	canceller       AppointmentCanceller
	waitlist        WaitlistExpirer
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger

	cron          *cron.Cron
	pendingExpiry time.Duration
	interval      time.Duration
}

// New создает новый экземпляр Sweeper
func New(
	appointmentRepo AppointmentRepository,
	canceller AppointmentCanceller,
	waitlist WaitlistExpirer,
	metrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
	intervalMinutes int,
	pendingExpiryMinutes int,
) *Sweeper {
	return &Sweeper{
		appointmentRepo: appointmentRepo,
		canceller:       canceller,
		waitlist:        waitlist,
		metrics:         metrics,
		timeProvider:    timeProvider,
		logger:          logger,
		cron:            cron.New(),
		pendingExpiry:   time.Duration(pendingExpiryMinutes) * time.Minute,
		interval:        time.Duration(intervalMinutes) * time.Minute,
	}
}

// Start регистрирует задачи и запускает планировщик
func (s *Sweeper) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)

	if _, err := s.cron.AddFunc(spec, s.runPendingSweep); err != nil {
		return fmt.Errorf("sweeper: failed to schedule pending sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(spec, s.runWaitlistSweep); err != nil {
		return fmt.Errorf("sweeper: failed to schedule waitlist sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Sweeper: started, interval=%s, pendingExpiry=%s", s.interval, s.pendingExpiry)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущих задач
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Sweeper: stopped")
}

func (s *Sweeper) runPendingSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if err := s.SweepPending(ctx); err != nil {
		s.logger.Error("Sweeper: pending sweep failed: %v", err)
	}
}

func (s *Sweeper) runWaitlistSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if err := s.SweepWaitlist(ctx); err != nil {
		s.logger.Error("Sweeper: waitlist sweep failed: %v", err)
	}
}

// SweepPending отменяет записи в статусе scheduled, которые не были
// подтверждены за отведённое окно. Каждая запись отменяется отдельно:
// ошибка по одной не блокирует остальные.
func (s *Sweeper) SweepPending(ctx context.Context) error {
	cutoff := s.timeProvider.Now().Add(-s.pendingExpiry)

	stale, err := s.appointmentRepo.ListStaleScheduled(ctx, cutoff)
	if err != nil {
		s.metrics.IncSweep("pending", "error")
		return fmt.Errorf("sweeper: failed to list stale appointments: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	s.logger.Info("SweepPending: found %d stale appointments, cutoff=%s", len(stale), cutoff.Format(time.RFC3339))

	var failed int
	for _, apt := range stale {
		req := &models.CancelAppointmentRequest{
			ActorRequest: models.ActorRequest{
				ActorID:   domain.SystemActorID,
				ActorRole: domain.RoleSystem,
			},
			CancellationReason: PendingExpiryReason,
		}

		if err := s.canceller.Cancel(ctx, apt.ID, req); err != nil {
			failed++
			s.metrics.IncSweep("pending", "error")
			s.logger.Warn("SweepPending: failed to cancel appointment id=%s: %v", apt.ID, err)
			continue
		}

		s.metrics.IncSweep("pending", "cancelled")
		s.logger.Info("SweepPending: cancelled stale appointment id=%s (client=%d, provider=%d)",
			apt.ID, apt.ClientID, apt.ProviderID)
	}

	if failed > 0 {
		return fmt.Errorf("sweeper: %d of %d stale appointments failed to cancel", failed, len(stale))
	}
	return nil
}

// SweepWaitlist переводит записи листа ожидания с прошедшей датой в expired
func (s *Sweeper) SweepWaitlist(ctx context.Context) error {
	expired, err := s.waitlist.ExpireStale(ctx)
	if err != nil {
		s.metrics.IncSweep("waitlist", "error")
		return fmt.Errorf("sweeper: failed to expire waitlist entries: %w", err)
	}

	if expired > 0 {
		s.metrics.IncSweep("waitlist", "expired")
		s.logger.Info("SweepWaitlist: expired %d waitlist entries", expired)
	}
	return nil
}
