package waitlist

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Service сервис продвижения листа ожидания
// Очередь строго FIFO по created_at: первый подходящий кандидат
// получает освободившийся слот
type Service struct {
	waitlistRepo WaitlistRepository
	booker       AppointmentBooker
	notifyClient NotifyServiceClient
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса листа ожидания
func NewService(
	waitlistRepo WaitlistRepository,
	booker AppointmentBooker,
	notifyClient NotifyServiceClient,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		waitlistRepo: waitlistRepo,
		booker:       booker,
		notifyClient: notifyClient,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// PromoteForSlot продвигает лист ожидания на освободившийся слот
// Кандидаты перебираются в порядке создания; запись без конкретного
// желаемого времени подходит на любой слот своей даты. Сбой бронирования
// одного кандидата не останавливает очередь - слот предлагается следующему.
// Ошибки продвижения не пробрасываются: освобождение слота уже состоялось
func (s *Service) PromoteForSlot(ctx context.Context, providerID, serviceID int64, date time.Time, startTime types.TimeString) {
	s.logger.Info("PromoteForSlot: provider=%d, service=%d, date=%s, time=%s",
		providerID, serviceID, date.Format(domain.DateFormat), startTime)

	entries, err := s.waitlistRepo.ListWaiting(ctx, providerID, serviceID, date)
	if err != nil {
		s.logger.Error("PromoteForSlot: failed to list waiting entries: %v", err)
		return
	}

	if len(entries) == 0 {
		s.logger.Info("PromoteForSlot: no waiting entries for provider=%d, service=%d on %s",
			providerID, serviceID, date.Format(domain.DateFormat))
		return
	}

	for _, entry := range entries {
		if !entry.IsWaiting() || !entry.MatchesSlot(startTime) {
			continue
		}

		// Запись без желаемого времени бронируется на освободившийся слот
		bookTime := startTime
		if entry.DesiredTime != nil {
			bookTime = *entry.DesiredTime
		}

		resp, err := s.booker.Execute(ctx, &create_appointment.Request{
			ClientID:     entry.ClientID,
			ProviderID:   entry.ProviderID,
			ServiceID:    entry.ServiceID,
			Date:         entry.DesiredDate,
			StartTime:    bookTime,
			Notes:        entry.Notes,
			SkipWaitlist: true,
		})
		if err != nil {
			// Кандидат не смог занять слот (например, не прошёл notice window) -
			// пропускаем его и пробуем следующего
			s.logger.Warn("PromoteForSlot: failed to book for client=%d, entry=%s: %v",
				entry.ClientID, entry.ID, err)
			s.metrics.IncWaitlistPromotion("failed")
			continue
		}

		if err := s.waitlistRepo.UpdateStatus(ctx, entry.ID, domain.WaitlistStatusFulfilled); err != nil {
			s.logger.Error("PromoteForSlot: failed to mark entry=%s fulfilled: %v", entry.ID, err)
		}

		s.logger.Info("PromoteForSlot: promoted client=%d, entry=%s to appointment=%s",
			entry.ClientID, entry.ID, resp.ID)
		s.metrics.IncWaitlistPromotion("fulfilled")

		s.notifyClient.SendAsync(notifyservice.Event{
			Type:          notifyservice.EventWaitlistFulfilled,
			AppointmentID: resp.ID,
			ClientID:      entry.ClientID,
			ProviderID:    entry.ProviderID,
			ServiceID:     entry.ServiceID,
			Payload: map[string]string{
				"waitlist_entry_id": entry.ID.String(),
			},
		})

		// Слот один - продвигаем только первого подходящего кандидата
		return
	}

	s.logger.Info("PromoteForSlot: no matching candidate for slot %s on %s",
		startTime, date.Format(domain.DateFormat))
}

// ExpireStale переводит в expired все ожидающие записи с датой раньше сегодняшней
// Возвращает количество затронутых записей
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	now := s.timeProvider.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	affected, err := s.waitlistRepo.ExpireBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("ExpireStale: failed to expire entries: %v", err)
		return 0, err
	}

	if affected > 0 {
		s.logger.Info("ExpireStale: expired %d stale waitlist entries", affected)
	}
	return affected, nil
}
