package reschedule_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("reschedule_appointment: appointment not found")

	// ErrForbidden возвращается, когда актор не имеет прав на перенос этой записи
	ErrForbidden = errors.New("reschedule_appointment: actor is not allowed to reschedule this appointment")

	// ErrNotReschedulable возвращается, когда запись в статусе, не допускающем перенос
	ErrNotReschedulable = errors.New("reschedule_appointment: appointment cannot be rescheduled in its current status")

	// ErrPolicyWindowPassed возвращается, когда до начала приёма осталось меньше окна отмены
	ErrPolicyWindowPassed = errors.New("reschedule_appointment: reschedule window has passed")

	// ErrReasonRequired возвращается, когда привилегированный перенос внутри окна не содержит причины
	ErrReasonRequired = errors.New("reschedule_appointment: reason is required for override inside the policy window")

	// ErrProviderClosed возвращается, когда провайдер не работает в новую дату
	ErrProviderClosed = errors.New("reschedule_appointment: provider is closed on this date")

	// ErrSlotNotAvailable возвращается, когда новый слот недоступен
	ErrSlotNotAvailable = errors.New("reschedule_appointment: slot is not available")

	// ErrInvalidTimeSlot возвращается, когда новое время не попадает в сетку слотов
	ErrInvalidTimeSlot = errors.New("reschedule_appointment: invalid time slot")

	// ErrTooLateToBook возвращается, когда новый слот нарушает minBookingNoticeMinutes
	ErrTooLateToBook = errors.New("reschedule_appointment: too late to book this slot")

	// ErrDailyLimitReached возвращается при исчерпании дневного лимита на новую дату
	ErrDailyLimitReached = errors.New("reschedule_appointment: daily booking limit reached")

	// ErrInvalidDate возвращается при некорректной новой дате
	ErrInvalidDate = errors.New("reschedule_appointment: invalid date")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_appointment: internal error")
)
