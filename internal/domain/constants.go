package domain

import "time"

// Default configuration values
const (
	DefaultSlotDurationMinutes     = 30
	DefaultMaxConcurrentBookings   = 1
	DefaultMaxBookingsPerDay       = 0  // 0 = unlimited
	DefaultMinBookingNoticeMinutes = 60 // 1 hour
	DefaultCancellationHours       = 24
	DefaultStartHour               = 9
	DefaultEndHour                 = 18

	// DefaultPendingExpiryMinutes окно ожидания подтверждения/оплаты,
	// после которого неподтверждённая запись снимается sweeper'ом
	DefaultPendingExpiryMinutes = 30

	// DefaultRequiresApproval без явной конфигурации запись ждёт ручного
	// подтверждения; услуги с requires_approval=false подтверждаются сразу
	DefaultRequiresApproval = true
)

// DefaultBusinessDays returns the default working week (Mon-Fri)
func DefaultBusinessDays() []time.Weekday {
	return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
}

// Business validation constants
const (
	MinSlotDurationMinutes      = 5
	MaxSlotDurationMinutes      = 480 // 8 hours
	MinConcurrentBookings       = 1
	MaxConcurrentBookingsLimit  = 100
	MinStartHour                = 0
	MaxEndHour                  = 24
	MinBookingNoticeLimit       = 0
	MaxBookingNoticeLimit       = 10080 // 1 week
	MaxCancellationHoursLimit   = 720   // 30 days
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500

	// StartGraceMinutes допуск на ранний старт визита (guard перехода start)
	StartGraceMinutes = 15
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// OverlapStatuses список статусов, участвующих в инварианте непересечения
// Используется при подсчёте занятости слотов
var OverlapStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusInProgress,
}

// InactiveStatuses список терминальных статусов, освобождающих слот
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusNoShow,
	StatusCompleted,
}
