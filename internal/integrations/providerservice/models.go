package providerservice

// Provider модель провайдера из ProviderService
type Provider struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Timezone   string  `json:"timezone"` // IANA, например "Europe/Moscow"
	ManagerIDs []int64 `json:"manager_ids"`
	IsActive   bool    `json:"is_active"`
}

// Service модель услуги из ProviderService
type Service struct {
	ID              int64   `json:"id"`
	ProviderID      int64   `json:"provider_id"`
	Name            string  `json:"name"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	BasePrice       float64 `json:"base_price"`
	IsActive        bool    `json:"is_active"`
}

// ErrorResponse модель ошибки от ProviderService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
