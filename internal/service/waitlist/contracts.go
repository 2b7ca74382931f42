package waitlist

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

// WaitlistRepository интерфейс репозитория листа ожидания
type WaitlistRepository interface {
	ListWaiting(ctx context.Context, providerID, serviceID int64, date time.Time) ([]*domain.WaitlistEntry, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.WaitlistStatus) error
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AppointmentBooker бронирует слот от имени клиента из очереди
type AppointmentBooker interface {
	Execute(ctx context.Context, req *create_appointment.Request) (*create_appointment.Response, error)
}

// NotifyServiceClient интерфейс клиента для NotifyService
type NotifyServiceClient interface {
	SendAsync(event notifyservice.Event)
}

// Metrics доменные счётчики листа ожидания
type Metrics interface {
	IncWaitlistPromotion(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
