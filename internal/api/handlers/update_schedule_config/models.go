package update_schedule_config

import (
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

// UpdateScheduleConfigRequest HTTP request model
type UpdateScheduleConfigRequest struct {
	ServiceID *int64 `json:"serviceId,omitempty"` // nil = конфигурация всего провайдера

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

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateScheduleConfigRequest) ToServiceRequest(providerID, actorID int64) *models.UpsertConfigRequest {
	return &models.UpsertConfigRequest{
		ActorID:                 actorID,
		ProviderID:              providerID,
		ServiceID:               r.ServiceID,
		BusinessDays:            r.BusinessDays,
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
