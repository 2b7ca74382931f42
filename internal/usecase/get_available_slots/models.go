package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ClientID   int64     // ID клиента (для логирования, не влияет на результат)
	ProviderID int64     // ID провайдера
	ServiceID  int64     // ID услуги
	Date       time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date       time.Time              // Дата, на которую запрашивались слоты
	ProviderID int64                  // ID провайдера
	ServiceID  int64                  // ID услуги
	Slots      []domain.AvailableSlot // Список слотов с доступностью

	// Reason объясняет пустой список слотов, когда дело не в занятости
	Reason *domain.UnavailabilityReason
}
