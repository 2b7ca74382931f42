package domain

import (
	"time"

	"github.com/google/uuid"
)

// StatusChange is the audit record produced by every successful
// appointment transition. Persistence is a repository concern; the
// appointments service is responsible for producing the record.
type StatusChange struct {
	ID            int64
	AppointmentID uuid.UUID
	Field         string
	OldValue      string
	NewValue      string
	ChangedBy     int64
	ChangedByRole ActorRole
	// Reason is mandatory for privileged policy overrides
	Reason    *string
	ChangedAt time.Time
}

// NewStatusChange builds an audit record for a status transition
func NewStatusChange(appointmentID uuid.UUID, from, to AppointmentStatus, actorID int64, role ActorRole, reason *string, at time.Time) StatusChange {
	return StatusChange{
		AppointmentID: appointmentID,
		Field:         "status",
		OldValue:      string(from),
		NewValue:      string(to),
		ChangedBy:     actorID,
		ChangedByRole: role,
		Reason:        reason,
		ChangedAt:     at,
	}
}
