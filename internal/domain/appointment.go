package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

// validTransitions defines the appointment status state machine.
// Cancellation and no-show guards (policy window, actor role, timing)
// are enforced by the appointments service on top of this table.
var validTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled:  {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusNoShow:     {},
}

// IsValid returns true if the status is a recognized appointment status
func (s AppointmentStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status
func (s AppointmentStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status
func (s AppointmentStatus) String() string {
	return string(s)
}

// Appointment represents a client appointment with a service provider
type Appointment struct {
	ID              uuid.UUID
	ClientID        int64
	ProviderID      int64
	ServiceID       int64
	BookingDate     time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          AppointmentStatus

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64
	Quantity     int     // Number of service units booked
	TotalPrice   float64 // Final price after bulk discount
	Notes        *string

	CancellationReason *string
	ConfirmedAt        *time.Time
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlocksSlot returns true if the appointment holds its time interval.
// Only these statuses participate in the provider non-overlap invariant.
func (a *Appointment) BlocksSlot() bool {
	return a.Status == StatusScheduled ||
		a.Status == StatusConfirmed ||
		a.Status == StatusInProgress
}

// CanBeCancelled returns true if the appointment can still be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status.CanTransitionTo(StatusCancelled)
}

// CanBeRescheduled returns true if the appointment interval can still be moved
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// ScheduledStart returns the full start timestamp in the given location
func (a *Appointment) ScheduledStart(loc *time.Location) time.Time {
	minutes, err := a.StartTime.Minutes()
	if err != nil {
		minutes = 0
	}
	y, m, d := a.BookingDate.Date()
	return time.Date(y, m, d, 0, minutes, 0, 0, loc)
}

// ScheduledEnd returns the full end timestamp in the given location
func (a *Appointment) ScheduledEnd(loc *time.Location) time.Time {
	return a.ScheduledStart(loc).Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// ProviderAppointmentsFilter фильтр для получения записей провайдера
type ProviderAppointmentsFilter struct {
	ProviderID      int64              // Обязательный параметр
	ServiceID       *int64             // Фильтр по услуге (опционально)
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли завершённые/отменённые записи
}
