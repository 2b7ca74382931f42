package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("provider not found")

	// ErrAccessDenied возвращается, когда у актора нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrCannotCancel возвращается, когда запись не может быть отменена
	ErrCannotCancel = errors.New("appointment cannot be cancelled")

	// ErrCancellationWindowPassed возвращается, когда до начала приёма осталось меньше окна отмены
	ErrCancellationWindowPassed = errors.New("cancellation window has passed")

	// ErrReasonRequired возвращается, когда привилегированная отмена внутри окна не содержит причины
	ErrReasonRequired = errors.New("reason is required for override inside the cancellation window")

	// ErrTooEarlyToStart возвращается при попытке начать приём задолго до его начала
	ErrTooEarlyToStart = errors.New("too early to start the appointment")

	// ErrTooEarlyForNoShow возвращается при попытке отметить неявку до начала приёма
	ErrTooEarlyForNoShow = errors.New("cannot mark no-show before the scheduled start")

	// ErrInvalidStatus возвращается при неизвестном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
