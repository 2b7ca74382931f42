package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifyservice"
	providerClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/providerservice"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

// Service сервис жизненного цикла записей на приём
// Отвечает за переходы статусов, политику отмены и доступ акторов
type Service struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	providerClient  ProviderServiceClient
	notifyClient    NotifyServiceClient
	promoter        WaitlistPromoter
	sessionStore    SessionStore
	txManager       TransactionManager
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	providerClient ProviderServiceClient,
	notifyClient NotifyServiceClient,
	promoter WaitlistPromoter,
	sessionStore SessionStore,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		providerClient:  providerClient,
		notifyClient:    notifyClient,
		promoter:        promoter,
		sessionStore:    sessionStore,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID
// Клиент видит только свои записи, менеджер провайдера - записи провайдера
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, actorID int64, role domain.ActorRole) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%s for actor=%d (%s)", id, actorID, role)

	apt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%s not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	// Проверяем права доступа
	if err := s.checkActorAccess(ctx, apt, actorID, role); err != nil {
		s.logger.Warn("GetByID: access denied for actor=%d to appointment id=%s", actorID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched appointment id=%s", id)
	return models.FromDomainAppointment(apt), nil
}

// GetClientAppointments получает историю записей клиента
// Опционально фильтрует по статусу
func (s *Service) GetClientAppointments(ctx context.Context, req *models.GetClientAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetClientAppointments: fetching appointments for client=%d, status=%v", req.ClientID, req.Status)

	var domainStatus *domain.AppointmentStatus
	if req.Status != nil {
		status, err := models.ToDomainAppointmentStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetClientAppointments: invalid status=%s for client=%d", *req.Status, req.ClientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	appointments, err := s.appointmentRepo.GetByClientID(ctx, req.ClientID, domainStatus)
	if err != nil {
		s.logger.Error("GetClientAppointments: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClientAppointments: successfully fetched %d appointments for client=%d",
		len(appointments), req.ClientID)
	return models.FromDomainAppointmentList(appointments), nil
}

// GetProviderAppointments получает записи провайдера с гибкой фильтрацией
// Доступно только менеджерам провайдера
func (s *Service) GetProviderAppointments(ctx context.Context, req *models.GetProviderAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetProviderAppointments: fetching appointments for provider=%d, actor=%d",
		req.ProviderID, req.ActorID)

	// Проверяем права доступа менеджера
	if err := s.checkManagerAccess(ctx, req.ProviderID, req.ActorID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderAppointments: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderAppointments: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderAppointments: successfully fetched %d appointments for provider=%d",
		len(appointments), req.ProviderID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Confirm подтверждает запись (scheduled -> confirmed)
// Доступно только привилегированным акторам: подтверждение - это
// одобрение заявки провайдером, а не действие клиента
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, actorID int64, role domain.ActorRole) error {
	if !role.IsPrivileged() {
		s.logger.Warn("Confirm: actor=%d (%s) is not allowed to confirm appointments", actorID, role)
		return ErrAccessDenied
	}

	err := s.transition(ctx, id, domain.StatusConfirmed, actorID, role, nil, nil)
	if err != nil {
		return err
	}

	// Запись подтверждена, окно оплаты закрыто
	if err := s.sessionStore.Delete(ctx, id); err != nil {
		s.logger.Error("Confirm: failed to delete pending state for id=%s: %v", id, err)
	}

	s.sendEvent(ctx, id, notifyservice.EventAppointmentConfirmed)
	return nil
}

// Start начинает приём (confirmed -> in_progress)
// Доступно только привилегированным акторам, не раньше чем за
// StartGraceMinutes до запланированного начала
func (s *Service) Start(ctx context.Context, id uuid.UUID, actorID int64, role domain.ActorRole) error {
	if !role.IsPrivileged() {
		s.logger.Warn("Start: actor=%d (%s) is not allowed to start appointments", actorID, role)
		return ErrAccessDenied
	}
	return s.transition(ctx, id, domain.StatusInProgress, actorID, role, nil, checkStartGuard)
}

// Complete завершает приём (in_progress -> completed)
// Доступно только привилегированным акторам
func (s *Service) Complete(ctx context.Context, id uuid.UUID, actorID int64, role domain.ActorRole) error {
	if !role.IsPrivileged() {
		s.logger.Warn("Complete: actor=%d (%s) is not allowed to complete appointments", actorID, role)
		return ErrAccessDenied
	}
	return s.transition(ctx, id, domain.StatusCompleted, actorID, role, nil, nil)
}

// MarkNoShow фиксирует неявку клиента (confirmed -> no_show)
// Доступно только привилегированным акторам, после запланированного начала
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID, actorID int64, role domain.ActorRole, reason *string) error {
	if !role.IsPrivileged() {
		s.logger.Warn("MarkNoShow: actor=%d (%s) is not allowed to mark no-show", actorID, role)
		return ErrAccessDenied
	}

	err := s.transition(ctx, id, domain.StatusNoShow, actorID, role, reason, checkNoShowGuard)
	if err != nil {
		return err
	}

	s.sendEvent(ctx, id, notifyservice.EventAppointmentNoShow)

	// Неявка освобождает слот наравне с отменой
	apt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("MarkNoShow: failed to get appointment id=%s for waitlist promotion: %v", id, err)
		return nil
	}
	s.promoter.PromoteForSlot(ctx, apt.ProviderID, apt.ServiceID, apt.BookingDate, apt.StartTime)

	return nil
}

// Cancel отменяет запись с учётом окна отмены
// Клиент может отменить свою запись не позже чем за cancellationHours до начала
// Привилегированные акторы могут отменить внутри окна, указав причину
// Освободившийся слот отдаётся листу ожидания
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req *models.CancelAppointmentRequest) error {
	s.logger.Info("Cancel: cancelling appointment id=%s by actor=%d (%s)", id, req.ActorID, req.ActorRole)

	if req.CancellationReason == "" {
		return fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
	}
	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason must not exceed %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	var cancelled *domain.Appointment
	var fromStatus domain.AppointmentStatus

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Получаем запись с блокировкой строки
		apt, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				s.logger.Warn("Cancel: appointment id=%s not found", id)
				return ErrAppointmentNotFound
			}
			s.logger.Error("Cancel: repository error for appointment id=%s: %v", id, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		// Проверяем права доступа
		if err := s.checkActorAccess(txCtx, apt, req.ActorID, req.ActorRole); err != nil {
			s.logger.Warn("Cancel: access denied for actor=%d to appointment id=%s", req.ActorID, id)
			return err
		}

		// Проверяем, что статус допускает отмену
		if !apt.CanBeCancelled() {
			s.logger.Warn("Cancel: appointment id=%s cannot be cancelled, status=%s", id, apt.Status)
			return ErrCannotCancel
		}

		// Таймзона провайдера и конфигурация для окна отмены
		loc, err := s.providerClient.ProviderLocation(txCtx, apt.ProviderID)
		if err != nil {
			s.logger.Error("Cancel: failed to get provider location: %v", err)
			return fmt.Errorf("%w: failed to get provider location: %v", ErrInternal, err)
		}
		now := s.timeProvider.Now().In(loc)

		config, err := s.scheduleRepo.GetConfigWithHierarchy(txCtx, apt.ProviderID, ptr.Ptr(apt.ServiceID))
		if err != nil && !errors.Is(err, scheduleRepo.ErrConfigNotFound) {
			s.logger.Error("Cancel: failed to get config: %v", err)
			return fmt.Errorf("%w: failed to get config: %v", ErrInternal, err)
		}
		if config == nil {
			config = domain.DefaultScheduleConfig(apt.ProviderID)
		}

		reason := ptr.Ptr(req.CancellationReason)
		if err := checkCancellationPolicy(apt, now, loc, config.CancellationHours, req.ActorRole, reason); err != nil {
			s.logger.Warn("Cancel: policy check failed for id=%s: %v", id, err)
			return err
		}

		// Исходный статус снимаем до UPDATE: репозиторий может менять
		// модель на месте
		fromStatus = apt.Status

		// Отменяем запись
		if err := s.appointmentRepo.Cancel(txCtx, id, req.CancellationReason); err != nil {
			s.logger.Error("Cancel: repository error for appointment id=%s: %v", id, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		// Аудит отмены
		change := domain.NewStatusChange(id, fromStatus, domain.StatusCancelled,
			req.ActorID, req.ActorRole, reason, now)
		if err := s.appointmentRepo.AppendStatusChange(txCtx, change); err != nil {
			s.logger.Error("Cancel: failed to append status change: %v", err)
			return fmt.Errorf("%w: failed to append status change: %v", ErrInternal, err)
		}

		cancelled = apt
		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("Cancel: successfully cancelled appointment id=%s", id)
	s.metrics.IncAppointmentCancelled(string(req.ActorRole))
	s.metrics.IncTransition(string(fromStatus), string(domain.StatusCancelled))

	if err := s.sessionStore.Delete(ctx, id); err != nil {
		s.logger.Error("Cancel: failed to delete pending state for id=%s: %v", id, err)
	}

	s.notifyClient.SendAsync(notifyservice.Event{
		Type:          notifyservice.EventAppointmentCancelled,
		AppointmentID: cancelled.ID,
		ClientID:      cancelled.ClientID,
		ProviderID:    cancelled.ProviderID,
		ServiceID:     cancelled.ServiceID,
		Payload:       map[string]string{"reason": req.CancellationReason},
	})

	// Освободившийся слот отдаём листу ожидания
	s.promoter.PromoteForSlot(ctx, cancelled.ProviderID, cancelled.ServiceID,
		cancelled.BookingDate, cancelled.StartTime)

	return nil
}

// UpdateStatus переводит запись в указанный статус
// Диспетчеризует на соответствующий переход с его guard'ами
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *models.UpdateStatusRequest) error {
	status, err := models.ToDomainAppointmentStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%s", req.Status, id)
		return ErrInvalidStatus
	}

	switch status {
	case domain.StatusConfirmed:
		return s.Confirm(ctx, id, req.ActorID, req.ActorRole)
	case domain.StatusInProgress:
		return s.Start(ctx, id, req.ActorID, req.ActorRole)
	case domain.StatusCompleted:
		return s.Complete(ctx, id, req.ActorID, req.ActorRole)
	case domain.StatusNoShow:
		return s.MarkNoShow(ctx, id, req.ActorID, req.ActorRole, req.Reason)
	case domain.StatusCancelled:
		reason := ""
		if req.Reason != nil {
			reason = *req.Reason
		}
		return s.Cancel(ctx, id, &models.CancelAppointmentRequest{
			ActorRequest:       models.ActorRequest{ActorID: req.ActorID, ActorRole: req.ActorRole},
			CancellationReason: reason,
		})
	default:
		s.logger.Warn("UpdateStatus: status=%s is not reachable via update for appointment id=%s", status, id)
		return ErrInvalidTransition
	}
}

// transition выполняет переход статуса в транзакции с проверкой state machine
// guard, если задан, проверяет дополнительные условия перехода (тайминги)
func (s *Service) transition(
	ctx context.Context,
	id uuid.UUID,
	target domain.AppointmentStatus,
	actorID int64,
	role domain.ActorRole,
	reason *string,
	guard func(apt *domain.Appointment, now time.Time, loc *time.Location) error,
) error {
	s.logger.Info("Transition: appointment id=%s -> %s by actor=%d (%s)", id, target, actorID, role)

	var from domain.AppointmentStatus

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// Получаем запись с блокировкой строки
		apt, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				s.logger.Warn("Transition: appointment id=%s not found", id)
				return ErrAppointmentNotFound
			}
			s.logger.Error("Transition: repository error for appointment id=%s: %v", id, err)
			return fmt.Errorf("%w: transition - repository error: %v", ErrInternal, err)
		}

		// Проверяем права доступа
		if err := s.checkActorAccess(txCtx, apt, actorID, role); err != nil {
			s.logger.Warn("Transition: access denied for actor=%d to appointment id=%s", actorID, id)
			return err
		}

		// Проверяем допустимость перехода
		if !apt.Status.CanTransitionTo(target) {
			s.logger.Warn("Transition: %s -> %s is not allowed for appointment id=%s", apt.Status, target, id)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, apt.Status, target)
		}

		// Время в таймзоне провайдера: guard'ы и аудит считают в ней
		loc, err := s.providerClient.ProviderLocation(txCtx, apt.ProviderID)
		if err != nil {
			s.logger.Error("Transition: failed to get provider location: %v", err)
			return fmt.Errorf("%w: failed to get provider location: %v", ErrInternal, err)
		}
		now := s.timeProvider.Now().In(loc)

		// Дополнительный guard перехода
		if guard != nil {
			if err := guard(apt, now, loc); err != nil {
				s.logger.Warn("Transition: guard failed for appointment id=%s: %v", id, err)
				return err
			}
		}

		// Исходный статус снимаем до UPDATE: репозиторий может менять
		// модель на месте
		from = apt.Status

		// Обновляем статус
		if err := s.appointmentRepo.UpdateStatus(txCtx, id, target); err != nil {
			s.logger.Error("Transition: failed to update status for appointment id=%s: %v", id, err)
			return fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
		}

		// Аудит перехода
		change := domain.NewStatusChange(id, from, target, actorID, role, reason, now)
		if err := s.appointmentRepo.AppendStatusChange(txCtx, change); err != nil {
			s.logger.Error("Transition: failed to append status change: %v", err)
			return fmt.Errorf("%w: failed to append status change: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("Transition: appointment id=%s moved %s -> %s", id, from, target)
	s.metrics.IncTransition(string(from), string(target))
	return nil
}

// sendEvent отправляет событие жизненного цикла по данным записи
func (s *Service) sendEvent(ctx context.Context, id uuid.UUID, eventType string) {
	apt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("sendEvent: failed to get appointment id=%s for %s event: %v", id, eventType, err)
		return
	}

	s.notifyClient.SendAsync(notifyservice.Event{
		Type:          eventType,
		AppointmentID: apt.ID,
		ClientID:      apt.ClientID,
		ProviderID:    apt.ProviderID,
		ServiceID:     apt.ServiceID,
	})
}

// Вспомогательные методы

// checkActorAccess проверяет, что актор имеет доступ к записи
// Клиент имеет доступ к своим записям, менеджер провайдера - к записям
// провайдера, админ и система - ко всем
func (s *Service) checkActorAccess(ctx context.Context, apt *domain.Appointment, actorID int64, role domain.ActorRole) error {
	switch role {
	case domain.RoleAdmin, domain.RoleSystem:
		return nil
	case domain.RoleClient:
		if apt.ClientID == actorID {
			return nil
		}
		return ErrAccessDenied
	case domain.RoleProvider:
		return s.checkManagerAccess(ctx, apt.ProviderID, actorID)
	default:
		return ErrAccessDenied
	}
}

// checkManagerAccess проверяет, что пользователь является менеджером провайдера
func (s *Service) checkManagerAccess(ctx context.Context, providerID int64, actorID int64) error {
	provider, err := s.providerClient.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, providerClient.ErrProviderNotFound) {
			s.logger.Warn("checkManagerAccess: provider id=%d not found", providerID)
			return ErrProviderNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get provider id=%d: %v", providerID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get provider: %v", ErrInternal, err)
	}

	for _, managerID := range provider.ManagerIDs {
		if managerID == actorID {
			return nil
		}
	}

	s.logger.Warn("checkManagerAccess: actor=%d is not a manager of provider=%d", actorID, providerID)
	return ErrAccessDenied
}
