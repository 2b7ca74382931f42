package create_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на создание записи
type Request struct {
	ClientID   int64            // ID клиента
	ProviderID int64            // ID провайдера
	ServiceID  int64            // ID услуги
	Date       time.Time        // Дата записи (без времени)
	StartTime  types.TimeString // Время начала слота (например, "10:00")
	Quantity   int              // Количество единиц услуги (0 трактуется как 1)
	Notes      *string          // Дополнительные заметки (опционально)

	// SkipWaitlist отключает постановку в очередь при занятом слоте
	// Используется при продвижении из листа ожидания, чтобы клиент
	// не вставал в конец своей же очереди
	SkipWaitlist bool
}

// Response модель ответа с созданной записью
// При занятом слоте и включенном листе ожидания возвращается Waitlisted=true
// с идентификатором записи в очереди вместо данных приёма
type Response struct {
	ID              uuid.UUID        // ID созданной записи
	ClientID        int64            // ID клиента
	ProviderID      int64            // ID провайдера
	ServiceID       int64            // ID услуги
	BookingDate     time.Time        // Дата записи
	StartTime       types.TimeString // Время начала
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус записи

	// Денормализованные данные
	ServiceName  string  // Название услуги
	ServicePrice float64 // Базовая цена за единицу
	Quantity     int     // Количество единиц
	TotalPrice   float64 // Итоговая цена с учетом объёмной скидки
	Notes        *string // Заметки

	// Лист ожидания
	Waitlisted      bool       // Слот занят, клиент поставлен в очередь
	WaitlistEntryID *uuid.UUID // ID записи в листе ожидания

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
