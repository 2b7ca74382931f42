package domain

import "github.com/m04kA/SMC-AppointmentService/pkg/types"

// AvailableSlot represents a time slot available for booking.
// Slots are derived on demand and never persisted.
type AvailableSlot struct {
	StartTime       types.TimeString
	DurationMinutes int
	AvailableSpots  int // Free concurrent spots at this time
	TotalSpots      int // MaxConcurrentBookings of the provider/service
}

// IsFull returns true if the slot has no available spots
func (s *AvailableSlot) IsFull() bool {
	return s.AvailableSpots <= 0
}

// IsPartiallyAvailable returns true if the slot has some but not all spots available
func (s *AvailableSlot) IsPartiallyAvailable() bool {
	return s.AvailableSpots > 0 && s.AvailableSpots < s.TotalSpots
}

// IsFullyAvailable returns true if all spots are available
func (s *AvailableSlot) IsFullyAvailable() bool {
	return s.AvailableSpots == s.TotalSpots
}

// UnavailabilityReason explains why no slots were returned for a day
type UnavailabilityReason string

const (
	// ReasonDailyLimitReached дневной лимит записей провайдера исчерпан
	ReasonDailyLimitReached UnavailabilityReason = "daily_limit_reached"

	// ReasonClosed провайдер не работает в запрошенную дату
	ReasonClosed UnavailabilityReason = "closed"
)
