package get_schedule_config

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

type ScheduleService interface {
	GetEffective(ctx context.Context, providerID int64, serviceID *int64) (*models.ConfigResponse, error)
	GetAllByProvider(ctx context.Context, providerID, actorID int64) (*models.ConfigListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
