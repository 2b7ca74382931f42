package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/session"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifyservice"
	providerClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-AppointmentService/internal/pricing"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

// UseCase use case для создания записи на приём
type UseCase struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	waitlistRepo    WaitlistRepository
	providerClient  ProviderServiceClient
	notifyClient    NotifyServiceClient
	sessionStore    SessionStore
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	waitlistRepo WaitlistRepository,
	providerClient ProviderServiceClient,
	notifyClient NotifyServiceClient,
	sessionStore SessionStore,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		waitlistRepo:    waitlistRepo,
		providerClient:  providerClient,
		notifyClient:    notifyClient,
		sessionStore:    sessionStore,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
// Использует сериализуемую транзакцию для предотвращения гонки данных:
// два конкурентных запроса на последний слот не могут оба его получить
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: client=%d, provider=%d, service=%d, date=%s, time=%s",
		req.ClientID, req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	// 2. Получаем услугу
	service, err := uc.providerClient.GetService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		if errors.Is(err, providerClient.ErrProviderNotFound) {
			uc.logger.Warn("CreateAppointment: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		if errors.Is(err, providerClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if service.ProviderID != req.ProviderID {
		uc.logger.Warn("CreateAppointment: service id=%d belongs to provider id=%d, not %d",
			req.ServiceID, service.ProviderID, req.ProviderID)
		return nil, ErrServiceNotOwnedByProvider
	}

	// 3. Текущее время в таймзоне провайдера
	loc, err := uc.providerClient.ProviderLocation(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, providerClient.ErrProviderNotFound) {
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get provider location: %v", err)
		return nil, fmt.Errorf("%w: failed to get provider location: %v", ErrInternal, err)
	}
	now := uc.timeProvider.Now().In(loc)

	// Результаты транзакции
	var result *domain.Appointment
	var waitlistEntry *domain.WaitlistEntry

	// 4. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Получаем конфигурацию расписания с учетом иерархии
		config, err := uc.scheduleRepo.GetConfigWithHierarchy(txCtx, req.ProviderID, ptr.Ptr(req.ServiceID))
		if err != nil && !errors.Is(err, scheduleRepo.ErrConfigNotFound) {
			uc.logger.Error("CreateAppointment: failed to get config: %v", err)
			return fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
		}

		// Если конфигурация не найдена, используем дефолтные значения
		if config == nil {
			config = domain.DefaultScheduleConfig(req.ProviderID)
			uc.logger.Info("CreateAppointment: using default config for provider=%d, service=%d",
				req.ProviderID, req.ServiceID)
		} else {
			uc.logger.Info("CreateAppointment: using config id=%d", config.ID)
		}

		// 4.2. Валидация даты
		if err := validateDate(req.Date, now); err != nil {
			uc.logger.Warn("CreateAppointment: date validation failed: %v", err)
			return err
		}

		// 4.3. Рабочий день провайдера
		if !config.IsBusinessDay(req.Date.Weekday()) {
			uc.logger.Warn("CreateAppointment: provider is closed on %s", req.Date.Format(domain.DateFormat))
			return ErrProviderClosed
		}

		// 4.4. Длительность слота: приоритет у длительности услуги
		durationMinutes := config.SlotDurationMinutes
		if service.DurationMinutes != nil && *service.DurationMinutes > 0 {
			durationMinutes = *service.DurationMinutes
		}

		// 4.5. Валидация времени записи (minBookingNoticeMinutes)
		if err := validateBookingTime(req.Date, req.StartTime, now, config.MinBookingNoticeMinutes); err != nil {
			uc.logger.Warn("CreateAppointment: booking time validation failed: %v", err)
			return err
		}

		// 4.6. Проверяем попадание в сетку слотов
		if err := validateSlotAlignment(config, req.StartTime, durationMinutes); err != nil {
			uc.logger.Warn("CreateAppointment: slot alignment validation failed: %v", err)
			return err
		}

		// 4.7. Получаем все активные записи на эту дату с блокировкой (FOR UPDATE)
		filter := domain.ProviderAppointmentsFilter{
			ProviderID:      req.ProviderID,
			StartDate:       &req.Date,
			EndDate:         &req.Date,
			IncludeInactive: false, // Только записи, удерживающие слот
		}

		appointments, err := uc.appointmentRepo.GetByProviderWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to get appointments: %v", err)
			return fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}

		// 4.8. Дневной лимит: при исчерпании день закрыт целиком,
		// в лист ожидания такие запросы не уходят
		if config.HasDailyLimit() && countActiveAppointments(appointments) >= config.MaxBookingsPerDay {
			uc.logger.Warn("CreateAppointment: daily limit of %d reached for provider=%d on %s",
				config.MaxBookingsPerDay, req.ProviderID, req.Date.Format(domain.DateFormat))
			return ErrDailyLimitReached
		}

		// 4.9. Проверяем доступность слота
		overlappingCount, err := countOverlappingAppointments(req.StartTime, durationMinutes, appointments)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to count overlapping appointments: %v", err)
			return fmt.Errorf("%w: failed to count overlapping appointments: %v", ErrInternal, err)
		}

		// Если MaxConcurrentBookings = 4, то допустимо overlappingCount = 0, 1, 2, 3
		// При overlappingCount >= 4 слот недоступен
		if overlappingCount >= config.MaxConcurrentBookings {
			if config.AllowWaitlist && !req.SkipWaitlist {
				entry, err := uc.waitlistRepo.Create(txCtx, &domain.WaitlistEntry{
					ClientID:    req.ClientID,
					ProviderID:  req.ProviderID,
					ServiceID:   req.ServiceID,
					DesiredDate: req.Date,
					DesiredTime: ptr.Ptr(req.StartTime),
					Notes:       req.Notes,
				})
				if err != nil {
					uc.logger.Error("CreateAppointment: failed to create waitlist entry: %v", err)
					return fmt.Errorf("%w: failed to create waitlist entry: %v", ErrInternal, err)
				}

				uc.logger.Info("CreateAppointment: slot taken, client=%d waitlisted, entry=%s",
					req.ClientID, entry.ID)
				waitlistEntry = entry
				return nil
			}

			uc.logger.Warn("CreateAppointment: slot not available, %d/%d spots taken",
				overlappingCount, config.MaxConcurrentBookings)
			return ErrSlotNotAvailable
		}

		uc.logger.Info("CreateAppointment: slot available, %d/%d spots taken",
			overlappingCount, config.MaxConcurrentBookings)

		// 4.10. Вычисляем итоговую цену с учетом объёмной скидки
		totalPrice := pricing.ComputePrice(service.BasePrice, quantity, config.BulkDiscountPercent)

		// 4.11. Создаем запись с денормализацией данных услуги
		// Запись рождается в scheduled; дальше либо ждёт ручного
		// подтверждения в окне оплаты, либо подтверждается сразу (4.13)
		apt := &domain.Appointment{
			ClientID:        req.ClientID,
			ProviderID:      req.ProviderID,
			ServiceID:       req.ServiceID,
			BookingDate:     req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: durationMinutes,
			Status:          domain.StatusScheduled,
			ServiceName:     service.Name,
			ServicePrice:    service.BasePrice,
			Quantity:        quantity,
			TotalPrice:      totalPrice,
			Notes:           req.Notes,
		}

		created, err := uc.appointmentRepo.Create(txCtx, apt)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		// 4.12. Аудит создания
		change := domain.NewStatusChange(created.ID, "", domain.StatusScheduled,
			req.ClientID, domain.RoleClient, nil, now)
		if err := uc.appointmentRepo.AppendStatusChange(txCtx, change); err != nil {
			uc.logger.Error("CreateAppointment: failed to append status change: %v", err)
			return fmt.Errorf("%w: failed to append status change: %v", ErrInternal, err)
		}

		// 4.13. Услуга без ручного подтверждения: запись сразу переводится
		// в confirmed, окно оплаты не открывается и sweeper её не трогает
		if !config.RequiresApproval {
			if err := uc.appointmentRepo.UpdateStatus(txCtx, created.ID, domain.StatusConfirmed); err != nil {
				uc.logger.Error("CreateAppointment: failed to auto-confirm appointment id=%s: %v", created.ID, err)
				return fmt.Errorf("%w: failed to auto-confirm appointment: %v", ErrInternal, err)
			}

			confirm := domain.NewStatusChange(created.ID, domain.StatusScheduled, domain.StatusConfirmed,
				domain.SystemActorID, domain.RoleSystem, nil, now)
			if err := uc.appointmentRepo.AppendStatusChange(txCtx, confirm); err != nil {
				uc.logger.Error("CreateAppointment: failed to append status change: %v", err)
				return fmt.Errorf("%w: failed to append status change: %v", ErrInternal, err)
			}

			created.Status = domain.StatusConfirmed
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 5. Клиент поставлен в лист ожидания
	if waitlistEntry != nil {
		return &Response{
			ClientID:        waitlistEntry.ClientID,
			ProviderID:      waitlistEntry.ProviderID,
			ServiceID:       waitlistEntry.ServiceID,
			BookingDate:     waitlistEntry.DesiredDate,
			StartTime:       req.StartTime,
			Waitlisted:      true,
			WaitlistEntryID: &waitlistEntry.ID,
			CreatedAt:       waitlistEntry.CreatedAt,
			UpdatedAt:       waitlistEntry.UpdatedAt,
		}, nil
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%s", result.ID)

	// 6. Сохраняем состояние окна оплаты: неподтверждённые записи снимает sweeper
	// Автоподтверждённым записям окно оплаты не нужно
	if result.Status == domain.StatusScheduled {
		state := &session.State{
			AppointmentID: result.ID,
			ClientID:      result.ClientID,
			ProviderID:    result.ProviderID,
			ServiceID:     result.ServiceID,
			TotalPrice:    result.TotalPrice,
			Quantity:      result.Quantity,
			CreatedAt:     result.CreatedAt,
		}
		ttl := time.Duration(domain.DefaultPendingExpiryMinutes) * time.Minute
		if err := uc.sessionStore.Set(ctx, state, ttl); err != nil {
			// Состояние в Redis вспомогательное, падение не откатывает бронь
			uc.logger.Error("CreateAppointment: failed to store pending state for id=%s: %v", result.ID, err)
		}
	}

	// 7. Уведомление о создании записи
	uc.notifyClient.SendAsync(notifyservice.Event{
		Type:          notifyservice.EventAppointmentCreated,
		AppointmentID: result.ID,
		ClientID:      result.ClientID,
		ProviderID:    result.ProviderID,
		ServiceID:     result.ServiceID,
	})

	if result.Status == domain.StatusConfirmed {
		uc.notifyClient.SendAsync(notifyservice.Event{
			Type:          notifyservice.EventAppointmentConfirmed,
			AppointmentID: result.ID,
			ClientID:      result.ClientID,
			ProviderID:    result.ProviderID,
			ServiceID:     result.ServiceID,
		})
	}

	// Конвертируем в response
	return &Response{
		ID:              result.ID,
		ClientID:        result.ClientID,
		ProviderID:      result.ProviderID,
		ServiceID:       result.ServiceID,
		BookingDate:     result.BookingDate,
		StartTime:       result.StartTime,
		DurationMinutes: result.DurationMinutes,
		Status:          string(result.Status),
		ServiceName:     result.ServiceName,
		ServicePrice:    result.ServicePrice,
		Quantity:        result.Quantity,
		TotalPrice:      result.TotalPrice,
		Notes:           result.Notes,
		CreatedAt:       result.CreatedAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}
