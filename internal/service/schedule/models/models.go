package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// UpsertConfigRequest запрос на создание или обновление конфигурации расписания
type UpsertConfigRequest struct {
	ActorID    int64  `json:"actorId"`
	ProviderID int64  `json:"providerId"`
	ServiceID  *int64 `json:"serviceId,omitempty"` // nil = конфигурация всего провайдера

	BusinessDays            []int   `json:"businessDays"` // 0=Sunday ... 6=Saturday
	StartHour               int     `json:"startHour"`
	EndHour                 int     `json:"endHour"`
	SlotDurationMinutes     int     `json:"slotDurationMinutes"`
	MaxConcurrentBookings   int     `json:"maxConcurrentBookings"`
	MaxBookingsPerDay       int     `json:"maxBookingsPerDay"`
	MinBookingNoticeMinutes int     `json:"minBookingNoticeMinutes"`
	CancellationHours       int     `json:"cancellationHours"`
	BulkDiscountPercent     float64 `json:"bulkDiscountPercent"`
	AllowWaitlist           bool    `json:"allowWaitlist"`
	RequiresApproval        bool    `json:"requiresApproval"`
}

// ToDomainConfig конвертирует request в domain модель
func (r *UpsertConfigRequest) ToDomainConfig() *domain.ScheduleConfig {
	days := make([]time.Weekday, len(r.BusinessDays))
	for i, d := range r.BusinessDays {
		days[i] = time.Weekday(d)
	}

	return &domain.ScheduleConfig{
		ProviderID:              r.ProviderID,
		ServiceID:               r.ServiceID,
		BusinessDays:            days,
		StartHour:               r.StartHour,
		EndHour:                 r.EndHour,
		SlotDurationMinutes:     r.SlotDurationMinutes,
		MaxConcurrentBookings:   r.MaxConcurrentBookings,
		MaxBookingsPerDay:       r.MaxBookingsPerDay,
		MinBookingNoticeMinutes: r.MinBookingNoticeMinutes,
		CancellationHours:       r.CancellationHours,
		BulkDiscountPercent:     r.BulkDiscountPercent,
		AllowWaitlist:           r.AllowWaitlist,
		RequiresApproval:        r.RequiresApproval,
	}
}

// Response модели

// ConfigResponse ответ с конфигурацией расписания
type ConfigResponse struct {
	ID         int64  `json:"id"`
	ProviderID int64  `json:"providerId"`
	ServiceID  *int64 `json:"serviceId,omitempty"`

	BusinessDays            []int   `json:"businessDays"`
	StartHour               int     `json:"startHour"`
	EndHour                 int     `json:"endHour"`
	SlotDurationMinutes     int     `json:"slotDurationMinutes"`
	MaxConcurrentBookings   int     `json:"maxConcurrentBookings"`
	MaxBookingsPerDay       int     `json:"maxBookingsPerDay"`
	MinBookingNoticeMinutes int     `json:"minBookingNoticeMinutes"`
	CancellationHours       int     `json:"cancellationHours"`
	BulkDiscountPercent     float64 `json:"bulkDiscountPercent"`
	AllowWaitlist           bool    `json:"allowWaitlist"`
	RequiresApproval        bool    `json:"requiresApproval"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConfigListResponse ответ со списком конфигураций
type ConfigListResponse struct {
	Configs []ConfigResponse `json:"configs"`
}

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.ScheduleConfig) *ConfigResponse {
	if c == nil {
		return nil
	}

	days := make([]int, len(c.BusinessDays))
	for i, d := range c.BusinessDays {
		days[i] = int(d)
	}

	return &ConfigResponse{
		ID:                      c.ID,
		ProviderID:              c.ProviderID,
		ServiceID:               c.ServiceID,
		BusinessDays:            days,
		StartHour:               c.StartHour,
		EndHour:                 c.EndHour,
		SlotDurationMinutes:     c.SlotDurationMinutes,
		MaxConcurrentBookings:   c.MaxConcurrentBookings,
		MaxBookingsPerDay:       c.MaxBookingsPerDay,
		MinBookingNoticeMinutes: c.MinBookingNoticeMinutes,
		CancellationHours:       c.CancellationHours,
		BulkDiscountPercent:     c.BulkDiscountPercent,
		AllowWaitlist:           c.AllowWaitlist,
		RequiresApproval:        c.RequiresApproval,
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
}

// FromDomainConfigList конвертирует список domain моделей в DTO
func FromDomainConfigList(configs []*domain.ScheduleConfig) *ConfigListResponse {
	if configs == nil {
		return &ConfigListResponse{Configs: []ConfigResponse{}}
	}

	resp := &ConfigListResponse{
		Configs: make([]ConfigResponse, len(configs)),
	}
	for i, c := range configs {
		if cr := FromDomainConfig(c); cr != nil {
			resp.Configs[i] = *cr
		}
	}
	return resp
}
