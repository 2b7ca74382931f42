package sweeper

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ListStaleScheduled(ctx context.Context, cutoff time.Time) ([]*domain.Appointment, error)
}

// AppointmentCanceller отменяет запись от имени системы
type AppointmentCanceller interface {
	Cancel(ctx context.Context, id uuid.UUID, req *models.CancelAppointmentRequest) error
}

// WaitlistExpirer переводит устаревшие записи листа ожидания в expired
type WaitlistExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// Metrics счётчики фоновых зачисток
type Metrics interface {
	IncSweep(sweep, status string)
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
