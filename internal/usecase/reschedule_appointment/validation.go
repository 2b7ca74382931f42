package reschedule_appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AppointmentID == uuid.Nil {
		return fmt.Errorf("%w: appointmentID is required", ErrInvalidInput)
	}

	if req.ActorID < 0 {
		return fmt.Errorf("%w: actorID must not be negative", ErrInvalidInput)
	}

	if !isKnownRole(req.ActorRole) {
		return fmt.Errorf("%w: unknown actor role %q", ErrInvalidInput, req.ActorRole)
	}

	if req.NewDate.IsZero() {
		return fmt.Errorf("%w: newDate is required", ErrInvalidInput)
	}

	if req.NewStartTime.IsZero() {
		return fmt.Errorf("%w: newStartTime is required", ErrInvalidInput)
	}

	if err := req.NewStartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid newStartTime format: %v", ErrInvalidInput, err)
	}

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return nil
}

func isKnownRole(role domain.ActorRole) bool {
	switch role {
	case domain.RoleClient, domain.RoleProvider, domain.RoleAdmin, domain.RoleSystem:
		return true
	default:
		return false
	}
}

// checkPolicyWindow проверяет окно переноса: до начала приёма должно
// оставаться не меньше cancellationHours. Граница включительно: перенос
// ровно за cancellationHours до начала разрешён.
// Привилегированные акторы могут переносить внутри окна, но обязаны указать причину.
func checkPolicyWindow(apt *domain.Appointment, now time.Time, loc *time.Location, cancellationHours int, role domain.ActorRole, reason *string) error {
	start := apt.ScheduledStart(loc)
	window := time.Duration(cancellationHours) * time.Hour

	if start.Sub(now) >= window {
		return nil
	}

	if !role.IsPrivileged() {
		return fmt.Errorf("%w: must reschedule at least %d hours in advance", ErrPolicyWindowPassed, cancellationHours)
	}

	if reason == nil || *reason == "" {
		return ErrReasonRequired
	}

	return nil
}

// validateBookingTime проверяет, что новый слот не нарушает minBookingNoticeMinutes
func validateBookingTime(
	bookingDate time.Time,
	startTime types.TimeString,
	now time.Time,
	minBookingNoticeMinutes int,
) error {
	if !isSameDay(bookingDate, now) {
		return nil
	}

	currentTime := types.NewTimeString(now)
	minAllowedTime, err := currentTime.AddMinutes(minBookingNoticeMinutes)
	if err != nil {
		return fmt.Errorf("%w: failed to calculate min allowed time: %v", ErrInternal, err)
	}

	if startTime.IsBefore(minAllowedTime) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, minBookingNoticeMinutes)
	}

	return nil
}

// validateSlotAlignment проверяет попадание нового времени в сетку слотов
func validateSlotAlignment(config *domain.ScheduleConfig, startTime types.TimeString, durationMinutes int) error {
	openTime := config.OpenTime()
	closeTime := config.CloseTime()

	if startTime.IsBefore(openTime) {
		return fmt.Errorf("%w: slot starts before opening time %s", ErrInvalidTimeSlot, openTime)
	}

	slotEnd, err := startTime.AddMinutes(durationMinutes)
	if err != nil {
		return fmt.Errorf("%w: slot does not fit into the day", ErrInvalidTimeSlot)
	}
	if slotEnd.IsAfter(closeTime) {
		return fmt.Errorf("%w: slot ends after closing time %s", ErrInvalidTimeSlot, closeTime)
	}

	startMinutes, err := startTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: invalid start time", ErrInvalidTimeSlot)
	}
	openMinutes, err := openTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: invalid opening time", ErrInvalidTimeSlot)
	}

	if (startMinutes-openMinutes)%durationMinutes != 0 {
		return fmt.Errorf("%w: start time is not aligned to the slot grid", ErrInvalidTimeSlot)
	}

	return nil
}

// countOverlappingAppointments подсчитывает активные записи, пересекающиеся со слотом
// Переносимая запись исключается из подсчёта: она не конкурирует сама с собой
func countOverlappingAppointments(
	startTime types.TimeString,
	durationMinutes int,
	appointments []*domain.Appointment,
	excludeID uuid.UUID,
) (int, error) {
	slotEnd, err := startTime.AddMinutes(durationMinutes)
	if err != nil {
		return 0, err
	}

	count := 0

	for _, apt := range appointments {
		if apt.ID == excludeID {
			continue
		}
		if !apt.BlocksSlot() {
			continue
		}

		aptStart := apt.StartTime
		aptEnd, err := apt.StartTime.AddMinutes(apt.DurationMinutes)
		if err != nil {
			continue
		}

		// Строгие неравенства: граничные случаи пересечением не считаются
		if aptStart.IsBefore(slotEnd) && aptEnd.IsAfter(startTime) {
			count++
		}
	}

	return count, nil
}

// countActiveAppointments подсчитывает записи, удерживающие слот на дату
// Переносимая запись исключается из подсчёта
func countActiveAppointments(appointments []*domain.Appointment, excludeID uuid.UUID) int {
	count := 0
	for _, apt := range appointments {
		if apt.ID == excludeID {
			continue
		}
		if apt.BlocksSlot() {
			count++
		}
	}
	return count
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
