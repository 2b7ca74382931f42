package reschedule_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на перенос записи
type Request struct {
	AppointmentID uuid.UUID        // ID переносимой записи
	ActorID       int64            // Кто переносит
	ActorRole     domain.ActorRole // Роль актора
	NewDate       time.Time        // Новая дата
	NewStartTime  types.TimeString // Новое время начала
	Reason        *string          // Причина (обязательна для override внутри окна)
}

// Response модель ответа с перенесённой записью
type Response struct {
	ID              uuid.UUID
	ClientID        int64
	ProviderID      int64
	ServiceID       int64
	BookingDate     time.Time        // Новая дата
	StartTime       types.TimeString // Новое время начала
	DurationMinutes int
	Status          string

	PreviousDate      time.Time        // Дата до переноса
	PreviousStartTime types.TimeString // Время до переноса

	UpdatedAt time.Time
}
