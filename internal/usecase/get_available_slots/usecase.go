package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	providerClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

// UseCase use case для получения доступных слотов для записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	providerClient  ProviderServiceClient
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	providerClient ProviderServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		providerClient:  providerClient,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: client=%d, provider=%d, service=%d, date=%s",
		req.ClientID, req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу провайдера
	service, err := uc.providerClient.GetService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		if errors.Is(err, providerClient.ErrProviderNotFound) {
			uc.logger.Warn("GetAvailableSlots: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		if errors.Is(err, providerClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if service.ProviderID != req.ProviderID {
		uc.logger.Warn("GetAvailableSlots: service id=%d belongs to provider id=%d, not %d",
			req.ServiceID, service.ProviderID, req.ProviderID)
		return nil, ErrServiceNotOwnedByProvider
	}

	// 3. Текущее время в таймзоне провайдера: все слоты считаются в его локальном времени
	loc, err := uc.providerClient.ProviderLocation(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, providerClient.ErrProviderNotFound) {
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get provider location: %v", err)
		return nil, fmt.Errorf("%w: failed to get provider location: %v", ErrInternal, err)
	}
	now := uc.timeProvider.Now().In(loc)

	// 4. Получаем конфигурацию расписания с учетом иерархии
	config, err := uc.scheduleRepo.GetConfigWithHierarchy(ctx, req.ProviderID, ptr.Ptr(req.ServiceID))
	if err != nil && !errors.Is(err, scheduleRepo.ErrConfigNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get config: %v", err)
		return nil, fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
	}

	// Если конфигурация не найдена, используем дефолтные значения
	if config == nil {
		config = domain.DefaultScheduleConfig(req.ProviderID)
		uc.logger.Info("GetAvailableSlots: using default config for provider=%d, service=%d",
			req.ProviderID, req.ServiceID)
	} else {
		uc.logger.Info("GetAvailableSlots: using config id=%d", config.ID)
	}

	// 5. Нерабочий день провайдера
	if !isDateInPast(req.Date, now) && !config.IsBusinessDay(req.Date.Weekday()) {
		uc.logger.Info("GetAvailableSlots: provider is closed on %s", req.Date.Format(domain.DateFormat))
		return uc.emptyResponse(req, domain.ReasonClosed), nil
	}

	// 6. Длительность слота: приоритет у длительности услуги
	durationMinutes := config.SlotDurationMinutes
	if service.DurationMinutes != nil && *service.DurationMinutes > 0 {
		durationMinutes = *service.DurationMinutes
	}

	// 7. Генерируем временные слоты
	timeSlots, err := generateTimeSlots(config, durationMinutes, req.Date, now)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate time slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate time slots: %v", ErrInternal, err)
	}

	// 8. Получаем все активные записи провайдера на эту дату
	filter := domain.ProviderAppointmentsFilter{
		ProviderID:      req.ProviderID,
		StartDate:       &req.Date,
		EndDate:         &req.Date,
		IncludeInactive: false, // Только записи, удерживающие слот
	}

	appointments, err := uc.appointmentRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 9. Дневной лимит: при исчерпании день закрыт целиком, без ухода в лист ожидания
	if config.HasDailyLimit() && countActiveAppointments(appointments) >= config.MaxBookingsPerDay {
		uc.logger.Info("GetAvailableSlots: daily limit of %d reached for provider=%d on %s",
			config.MaxBookingsPerDay, req.ProviderID, req.Date.Format(domain.DateFormat))
		return uc.emptyResponse(req, domain.ReasonDailyLimitReached), nil
	}

	// 10. Вычисляем доступность для каждого слота
	slots := calculateAvailableSpots(
		timeSlots,
		durationMinutes,
		appointments,
		config.MaxConcurrentBookings,
	)

	uc.logger.Info("GetAvailableSlots: generated %d slots for provider=%d, service=%d, date=%s",
		len(slots), req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:       req.Date,
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		Slots:      slots,
	}, nil
}

func (uc *UseCase) emptyResponse(req *Request, reason domain.UnavailabilityReason) *Response {
	return &Response{
		Date:       req.Date,
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		Slots:      []domain.AvailableSlot{},
		Reason:     &reason,
	}
}
