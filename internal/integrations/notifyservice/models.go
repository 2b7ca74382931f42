package notifyservice

import (
	"time"

	"github.com/google/uuid"
)

// Типы событий уведомлений
const (
	EventAppointmentCreated     = "appointment:created"
	EventAppointmentConfirmed   = "appointment:confirmed"
	EventAppointmentCancelled   = "appointment:cancelled"
	EventAppointmentRescheduled = "appointment:rescheduled"
	EventAppointmentNoShow      = "appointment:no_show"
	EventWaitlistFulfilled      = "waitlist:fulfilled"
)

// Event событие для NotifyService
type Event struct {
	Type          string            `json:"type"`
	AppointmentID uuid.UUID         `json:"appointment_id"`
	ClientID      int64             `json:"client_id"`
	ProviderID    int64             `json:"provider_id"`
	ServiceID     int64             `json:"service_id"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Payload       map[string]string `json:"payload,omitempty"`
}
