package reschedule_appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// RescheduleAppointmentRequest HTTP request model
type RescheduleAppointmentRequest struct {
	NewDate      string  `json:"newDate"`      // "2025-10-20"
	NewStartTime string  `json:"newStartTime"` // "14:00"
	Reason       *string `json:"reason,omitempty"`
}

// RescheduleAppointmentResponse HTTP response model
type RescheduleAppointmentResponse struct {
	ID                uuid.UUID `json:"id"`
	ClientID          int64     `json:"clientId"`
	ProviderID        int64     `json:"providerId"`
	ServiceID         int64     `json:"serviceId"`
	Date              string    `json:"date"`
	StartTime         string    `json:"startTime"`
	DurationMinutes   int       `json:"durationMinutes"`
	Status            string    `json:"status"`
	PreviousDate      string    `json:"previousDate"`
	PreviousStartTime string    `json:"previousStartTime"`
	UpdatedAt         string    `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleAppointmentRequest) ToUseCaseRequest(
	appointmentID uuid.UUID,
	actorID int64,
	role domain.ActorRole,
) (*rescheduleAppointment.Request, error) {
	newDate, err := time.Parse(domain.DateFormat, r.NewDate)
	if err != nil {
		return nil, err
	}

	newStartTime, err := types.NewTimeStringFromString(r.NewStartTime)
	if err != nil {
		return nil, err
	}

	return &rescheduleAppointment.Request{
		AppointmentID: appointmentID,
		ActorID:       actorID,
		ActorRole:     role,
		NewDate:       newDate,
		NewStartTime:  newStartTime,
		Reason:        r.Reason,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleAppointment.Response) *RescheduleAppointmentResponse {
	return &RescheduleAppointmentResponse{
		ID:                resp.ID,
		ClientID:          resp.ClientID,
		ProviderID:        resp.ProviderID,
		ServiceID:         resp.ServiceID,
		Date:              resp.BookingDate.Format(domain.DateFormat),
		StartTime:         resp.StartTime.String(),
		DurationMinutes:   resp.DurationMinutes,
		Status:            resp.Status,
		PreviousDate:      resp.PreviousDate.Format(domain.DateFormat),
		PreviousStartTime: resp.PreviousStartTime.String(),
		UpdatedAt:         resp.UpdatedAt.Format(time.RFC3339),
	}
}
