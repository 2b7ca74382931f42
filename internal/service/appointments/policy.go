package appointments

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// checkCancellationPolicy проверяет окно отмены: до начала приёма должно
// оставаться не меньше cancellationHours. Граница включительно: отмена
// ровно за cancellationHours до начала разрешена.
// Привилегированные акторы (провайдер, админ, система) могут отменять
// внутри окна, но обязаны указать причину.
func checkCancellationPolicy(
	apt *domain.Appointment,
	now time.Time,
	loc *time.Location,
	cancellationHours int,
	role domain.ActorRole,
	reason *string,
) error {
	start := apt.ScheduledStart(loc)
	window := time.Duration(cancellationHours) * time.Hour

	if start.Sub(now) >= window {
		return nil
	}

	if !role.IsPrivileged() {
		return fmt.Errorf("%w: must cancel at least %d hours in advance", ErrCancellationWindowPassed, cancellationHours)
	}

	if reason == nil || *reason == "" {
		return ErrReasonRequired
	}

	return nil
}

// checkStartGuard проверяет, что приём можно начать: текущее время не
// раньше, чем за StartGraceMinutes до запланированного начала
func checkStartGuard(apt *domain.Appointment, now time.Time, loc *time.Location) error {
	earliest := apt.ScheduledStart(loc).Add(-time.Duration(domain.StartGraceMinutes) * time.Minute)
	if now.Before(earliest) {
		return fmt.Errorf("%w: appointment starts at %s", ErrTooEarlyToStart,
			apt.ScheduledStart(loc).Format(time.RFC3339))
	}
	return nil
}

// checkNoShowGuard проверяет, что неявку можно фиксировать: запланированное
// время начала уже прошло
func checkNoShowGuard(apt *domain.Appointment, now time.Time, loc *time.Location) error {
	if !now.After(apt.ScheduledStart(loc)) {
		return ErrTooEarlyForNoShow
	}
	return nil
}
