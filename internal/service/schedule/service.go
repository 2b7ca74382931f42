package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	providerClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

// Service сервис для работы с конфигурацией расписания провайдера
type Service struct {
	scheduleRepo   ScheduleRepository
	providerClient ProviderServiceClient
	logger         Logger
}

// NewService создает новый экземпляр сервиса конфигурации расписания
func NewService(
	scheduleRepo ScheduleRepository,
	providerClient ProviderServiceClient,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo:   scheduleRepo,
		providerClient: providerClient,
		logger:         logger,
	}
}

// Upsert создает или обновляет конфигурацию расписания
// Доступно только менеджерам провайдера
func (s *Service) Upsert(ctx context.Context, req *models.UpsertConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Upsert: config for provider=%d, service=%v by actor=%d",
		req.ProviderID, req.ServiceID, req.ActorID)

	// 1. Валидируем входные данные
	if err := validateConfigRequest(req); err != nil {
		s.logger.Warn("Upsert: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем провайдера для проверки прав доступа
	provider, err := s.providerClient.GetProvider(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, providerClient.ErrProviderNotFound) {
			s.logger.Warn("Upsert: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		s.logger.Error("Upsert: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	// 3. Проверяем права доступа (только менеджер провайдера)
	if !isManager(provider.ManagerIDs, req.ActorID) {
		s.logger.Warn("Upsert: actor=%d is not a manager of provider=%d", req.ActorID, req.ProviderID)
		return nil, ErrAccessDenied
	}

	// 4. Если указан serviceID, проверяем существование услуги
	if req.ServiceID != nil {
		if _, err := s.providerClient.GetService(ctx, req.ProviderID, *req.ServiceID); err != nil {
			if errors.Is(err, providerClient.ErrServiceNotFound) {
				s.logger.Warn("Upsert: service id=%d not found for provider=%d", *req.ServiceID, req.ProviderID)
				return nil, ErrServiceNotFound
			}
			s.logger.Error("Upsert: failed to get service id=%d: %v", *req.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
	}

	// 5. Создаем или обновляем конфигурацию
	config, err := s.scheduleRepo.Upsert(ctx, req.ToDomainConfig())
	if err != nil {
		s.logger.Error("Upsert: repository error: %v", err)
		return nil, fmt.Errorf("%w: Upsert - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Upsert: successfully stored config id=%d", config.ID)
	return models.FromDomainConfig(config), nil
}

// GetEffective получает действующую конфигурацию для провайдера и услуги
// с учетом иерархии приоритетов. Если конфигурации нет, возвращает дефолтную.
// Публичный метод - доступен всем
func (s *Service) GetEffective(ctx context.Context, providerID int64, serviceID *int64) (*models.ConfigResponse, error) {
	s.logger.Info("GetEffective: fetching config for provider=%d, service=%v", providerID, serviceID)

	config, err := s.scheduleRepo.GetConfigWithHierarchy(ctx, providerID, serviceID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrConfigNotFound) {
			s.logger.Info("GetEffective: no config for provider=%d, returning defaults", providerID)
			return models.FromDomainConfig(domain.DefaultScheduleConfig(providerID)), nil
		}
		s.logger.Error("GetEffective: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetEffective - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainConfig(config), nil
}

// GetAllByProvider получает все конфигурации провайдера
// Доступно только менеджерам провайдера
func (s *Service) GetAllByProvider(ctx context.Context, providerID, actorID int64) (*models.ConfigListResponse, error) {
	s.logger.Info("GetAllByProvider: fetching configs for provider=%d by actor=%d", providerID, actorID)

	provider, err := s.providerClient.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, providerClient.ErrProviderNotFound) {
			s.logger.Warn("GetAllByProvider: provider id=%d not found", providerID)
			return nil, ErrProviderNotFound
		}
		s.logger.Error("GetAllByProvider: failed to get provider id=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}

	if !isManager(provider.ManagerIDs, actorID) {
		s.logger.Warn("GetAllByProvider: actor=%d is not a manager of provider=%d", actorID, providerID)
		return nil, ErrAccessDenied
	}

	configs, err := s.scheduleRepo.GetAllByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("GetAllByProvider: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetAllByProvider - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetAllByProvider: successfully fetched %d configs for provider=%d", len(configs), providerID)
	return models.FromDomainConfigList(configs), nil
}

// validateConfigRequest валидирует параметры конфигурации
func validateConfigRequest(req *models.UpsertConfigRequest) error {
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if len(req.BusinessDays) == 0 {
		return fmt.Errorf("%w: businessDays must not be empty", ErrInvalidInput)
	}
	for _, d := range req.BusinessDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: businessDays values must be in [0, 6]", ErrInvalidInput)
		}
	}

	if req.StartHour < domain.MinStartHour || req.StartHour > domain.MaxEndHour-1 {
		return fmt.Errorf("%w: startHour must be in [%d, %d]", ErrInvalidInput, domain.MinStartHour, domain.MaxEndHour-1)
	}
	if req.EndHour <= req.StartHour || req.EndHour > domain.MaxEndHour {
		return fmt.Errorf("%w: endHour must be in (startHour, %d]", ErrInvalidInput, domain.MaxEndHour)
	}

	if req.SlotDurationMinutes < domain.MinSlotDurationMinutes || req.SlotDurationMinutes > domain.MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slotDurationMinutes must be in [%d, %d]",
			ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}

	if req.MaxConcurrentBookings < domain.MinConcurrentBookings || req.MaxConcurrentBookings > domain.MaxConcurrentBookingsLimit {
		return fmt.Errorf("%w: maxConcurrentBookings must be in [%d, %d]",
			ErrInvalidInput, domain.MinConcurrentBookings, domain.MaxConcurrentBookingsLimit)
	}

	if req.MaxBookingsPerDay < 0 {
		return fmt.Errorf("%w: maxBookingsPerDay must not be negative", ErrInvalidInput)
	}

	if req.MinBookingNoticeMinutes < domain.MinBookingNoticeLimit || req.MinBookingNoticeMinutes > domain.MaxBookingNoticeLimit {
		return fmt.Errorf("%w: minBookingNoticeMinutes must be in [%d, %d]",
			ErrInvalidInput, domain.MinBookingNoticeLimit, domain.MaxBookingNoticeLimit)
	}

	if req.CancellationHours < 0 || req.CancellationHours > domain.MaxCancellationHoursLimit {
		return fmt.Errorf("%w: cancellationHours must be in [0, %d]", ErrInvalidInput, domain.MaxCancellationHoursLimit)
	}

	if req.BulkDiscountPercent < 0 || req.BulkDiscountPercent >= 100 {
		return fmt.Errorf("%w: bulkDiscountPercent must be in [0, 100)", ErrInvalidInput)
	}

	return nil
}

// isManager проверяет, что actorID входит в список менеджеров провайдера
func isManager(managerIDs []int64, actorID int64) bool {
	for _, id := range managerIDs {
		if id == actorID {
			return true
		}
	}
	return false
}
