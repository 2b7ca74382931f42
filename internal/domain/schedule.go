package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// ScheduleConfig represents the booking configuration for a provider.
// Supports hierarchical configuration:
// 1. Service-specific (provider_id, service_id)
// 2. Provider-wide (provider_id, NULL)
type ScheduleConfig struct {
	ID         int64
	ProviderID int64
	ServiceID  *int64 // NULL = config for all services of the provider

	// Business hours
	BusinessDays []time.Weekday // weekdays the provider accepts appointments
	StartHour    int            // first bookable hour, 0-23
	EndHour      int            // end of the bookable window, 1-24, exclusive

	// Booking rules
	SlotDurationMinutes     int
	MaxConcurrentBookings   int
	MaxBookingsPerDay       int // 0 = unlimited
	MinBookingNoticeMinutes int
	CancellationHours       int
	BulkDiscountPercent     float64
	AllowWaitlist           bool
	RequiresApproval        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsProviderWide returns true if this is a provider-wide configuration
func (c *ScheduleConfig) IsProviderWide() bool {
	return c.ServiceID == nil
}

// IsServiceSpecific returns true if this configuration is for a specific service
func (c *ScheduleConfig) IsServiceSpecific() bool {
	return c.ServiceID != nil
}

// IsBusinessDay returns true if the provider accepts appointments on the given weekday
func (c *ScheduleConfig) IsBusinessDay(day time.Weekday) bool {
	for _, d := range c.BusinessDays {
		if d == day {
			return true
		}
	}
	return false
}

// HasDailyLimit returns true if the number of appointments per day is capped
func (c *ScheduleConfig) HasDailyLimit() bool {
	return c.MaxBookingsPerDay > 0
}

// SupportsParallelBookings returns true if multiple concurrent appointments are allowed
func (c *ScheduleConfig) SupportsParallelBookings() bool {
	return c.MaxConcurrentBookings > 1
}

// OpenTime returns the start of the bookable window as HH:MM
func (c *ScheduleConfig) OpenTime() types.TimeString {
	ts, _ := types.NewTimeStringFromMinutes(c.StartHour * 60)
	return ts
}

// CloseTime returns the end of the bookable window as HH:MM
func (c *ScheduleConfig) CloseTime() types.TimeString {
	ts, _ := types.NewTimeStringFromMinutes(c.EndHour * 60)
	return ts
}

// DefaultScheduleConfig returns the configuration used when a provider has no stored config
func DefaultScheduleConfig(providerID int64) *ScheduleConfig {
	return &ScheduleConfig{
		ProviderID:              providerID,
		BusinessDays:            DefaultBusinessDays(),
		StartHour:               DefaultStartHour,
		EndHour:                 DefaultEndHour,
		SlotDurationMinutes:     DefaultSlotDurationMinutes,
		MaxConcurrentBookings:   DefaultMaxConcurrentBookings,
		MaxBookingsPerDay:       DefaultMaxBookingsPerDay,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
		CancellationHours:       DefaultCancellationHours,
		BulkDiscountPercent:     0,
		AllowWaitlist:           false,
		RequiresApproval:        DefaultRequiresApproval,
	}
}
