package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

// UseCase use case для переноса записи на новый интервал
type UseCase struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	providerClient  ProviderServiceClient
	notifyClient    NotifyServiceClient
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	providerClient ProviderServiceClient,
	notifyClient NotifyServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		providerClient:  providerClient,
		notifyClient:    notifyClient,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case переноса записи
// Вся проверка и перенос происходят в одной сериализуемой транзакции:
// строка записи и записи старого и нового дня блокируются, интервал
// меняется одним UPDATE. Перенос либо происходит целиком, либо запись
// остаётся на старом интервале.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: id=%s, actor=%d (%s), newDate=%s, newTime=%s",
		req.AppointmentID, req.ActorID, req.ActorRole, req.NewDate.Format(domain.DateFormat), req.NewStartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	var response *Response

	// 2. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Получаем запись с блокировкой строки
		apt, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("RescheduleAppointment: appointment id=%s not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("RescheduleAppointment: failed to get appointment: %v", err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		// 2.2. Авторизация: клиент может переносить только свои записи
		if req.ActorRole == domain.RoleClient && apt.ClientID != req.ActorID {
			uc.logger.Warn("RescheduleAppointment: client id=%d tried to reschedule appointment of client id=%d",
				req.ActorID, apt.ClientID)
			return ErrForbidden
		}

		// 2.3. Статус должен допускать перенос
		if !apt.CanBeRescheduled() {
			uc.logger.Warn("RescheduleAppointment: appointment id=%s in status %s cannot be rescheduled",
				apt.ID, apt.Status)
			return ErrNotReschedulable
		}

		// 2.4. Таймзона провайдера и текущее время в ней
		loc, err := uc.providerClient.ProviderLocation(txCtx, apt.ProviderID)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get provider location: %v", err)
			return fmt.Errorf("%w: failed to get provider location: %v", ErrInternal, err)
		}
		now := uc.timeProvider.Now().In(loc)

		// 2.5. Конфигурация расписания
		config, err := uc.scheduleRepo.GetConfigWithHierarchy(txCtx, apt.ProviderID, ptr.Ptr(apt.ServiceID))
		if err != nil && !errors.Is(err, scheduleRepo.ErrConfigNotFound) {
			uc.logger.Error("RescheduleAppointment: failed to get config: %v", err)
			return fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
		}
		if config == nil {
			config = domain.DefaultScheduleConfig(apt.ProviderID)
		}

		// 2.6. Окно переноса (то же, что окно отмены)
		if err := checkPolicyWindow(apt, now, loc, config.CancellationHours, req.ActorRole, req.Reason); err != nil {
			uc.logger.Warn("RescheduleAppointment: policy check failed for id=%s: %v", apt.ID, err)
			return err
		}

		// 2.7. Валидация новой даты
		if isDateInPast(req.NewDate, now) {
			return ErrInvalidDate
		}
		if !config.IsBusinessDay(req.NewDate.Weekday()) {
			uc.logger.Warn("RescheduleAppointment: provider is closed on %s", req.NewDate.Format(domain.DateFormat))
			return ErrProviderClosed
		}
		if err := validateBookingTime(req.NewDate, req.NewStartTime, now, config.MinBookingNoticeMinutes); err != nil {
			uc.logger.Warn("RescheduleAppointment: booking time validation failed: %v", err)
			return err
		}
		if err := validateSlotAlignment(config, req.NewStartTime, apt.DurationMinutes); err != nil {
			uc.logger.Warn("RescheduleAppointment: slot alignment validation failed: %v", err)
			return err
		}

		// 2.8. Блокируем записи старого дня: освобождаемый интервал тоже
		// участвует в инварианте непересечения
		if !isSameDay(apt.BookingDate, req.NewDate) {
			oldFilter := domain.ProviderAppointmentsFilter{
				ProviderID:      apt.ProviderID,
				StartDate:       &apt.BookingDate,
				EndDate:         &apt.BookingDate,
				IncludeInactive: false,
			}
			if _, err := uc.appointmentRepo.GetByProviderWithFilter(txCtx, oldFilter); err != nil {
				uc.logger.Error("RescheduleAppointment: failed to lock old date: %v", err)
				return fmt.Errorf("%w: failed to lock old date: %v", ErrInternal, err)
			}
		}

		// 2.9. Блокируем записи нового дня и проверяем доступность слота
		newFilter := domain.ProviderAppointmentsFilter{
			ProviderID:      apt.ProviderID,
			StartDate:       &req.NewDate,
			EndDate:         &req.NewDate,
			IncludeInactive: false,
		}
		appointments, err := uc.appointmentRepo.GetByProviderWithFilter(txCtx, newFilter)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		// Дневной лимит проверяется только при смене даты: на своей дате
		// запись уже учтена в лимите
		if !isSameDay(apt.BookingDate, req.NewDate) &&
			config.HasDailyLimit() &&
			countActiveAppointments(appointments, apt.ID) >= config.MaxBookingsPerDay {
			uc.logger.Warn("RescheduleAppointment: daily limit of %d reached on %s",
				config.MaxBookingsPerDay, req.NewDate.Format(domain.DateFormat))
			return ErrDailyLimitReached
		}

		overlappingCount, err := countOverlappingAppointments(req.NewStartTime, apt.DurationMinutes, appointments, apt.ID)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to count overlapping appointments: %v", err)
			return fmt.Errorf("%w: failed to count overlapping appointments: %v", ErrInternal, err)
		}
		if overlappingCount >= config.MaxConcurrentBookings {
			uc.logger.Warn("RescheduleAppointment: slot not available, %d/%d spots taken",
				overlappingCount, config.MaxConcurrentBookings)
			return ErrSlotNotAvailable
		}

		// 2.10. Переносим одним UPDATE той же строки
		if err := uc.appointmentRepo.UpdateInterval(txCtx, apt.ID, req.NewDate, string(req.NewStartTime)); err != nil {
			uc.logger.Error("RescheduleAppointment: failed to update interval: %v", err)
			return fmt.Errorf("%w: failed to update interval: %v", ErrInternal, err)
		}

		// 2.11. Аудит переноса
		change := domain.StatusChange{
			AppointmentID: apt.ID,
			Field:         "interval",
			OldValue:      fmt.Sprintf("%s %s", apt.BookingDate.Format(domain.DateFormat), apt.StartTime),
			NewValue:      fmt.Sprintf("%s %s", req.NewDate.Format(domain.DateFormat), req.NewStartTime),
			ChangedBy:     req.ActorID,
			ChangedByRole: req.ActorRole,
			Reason:        req.Reason,
			ChangedAt:     now,
		}
		if err := uc.appointmentRepo.AppendStatusChange(txCtx, change); err != nil {
			uc.logger.Error("RescheduleAppointment: failed to append status change: %v", err)
			return fmt.Errorf("%w: failed to append status change: %v", ErrInternal, err)
		}

		response = &Response{
			ID:                apt.ID,
			ClientID:          apt.ClientID,
			ProviderID:        apt.ProviderID,
			ServiceID:         apt.ServiceID,
			BookingDate:       req.NewDate,
			StartTime:         req.NewStartTime,
			DurationMinutes:   apt.DurationMinutes,
			Status:            string(apt.Status),
			PreviousDate:      apt.BookingDate,
			PreviousStartTime: apt.StartTime,
			UpdatedAt:         now,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("RescheduleAppointment: successfully rescheduled id=%s to %s %s",
		response.ID, response.BookingDate.Format(domain.DateFormat), response.StartTime)

	// 3. Уведомление о переносе
	uc.notifyClient.SendAsync(notifyservice.Event{
		Type:          notifyservice.EventAppointmentRescheduled,
		AppointmentID: response.ID,
		ClientID:      response.ClientID,
		ProviderID:    response.ProviderID,
		ServiceID:     response.ServiceID,
		Payload: map[string]string{
			"old_date": response.PreviousDate.Format(domain.DateFormat),
			"old_time": string(response.PreviousStartTime),
			"new_date": response.BookingDate.Format(domain.DateFormat),
			"new_time": string(response.StartTime),
		},
	})

	return response, nil
}
