package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// WaitlistStatus represents the status of a waitlist entry
type WaitlistStatus string

const (
	WaitlistStatusWaiting   WaitlistStatus = "waiting"
	WaitlistStatusNotified  WaitlistStatus = "notified"
	WaitlistStatusFulfilled WaitlistStatus = "fulfilled"
	WaitlistStatusExpired   WaitlistStatus = "expired"
)

// IsValid returns true if the status is a recognized waitlist status
func (s WaitlistStatus) IsValid() bool {
	switch s {
	case WaitlistStatusWaiting, WaitlistStatusNotified, WaitlistStatusFulfilled, WaitlistStatusExpired:
		return true
	default:
		return false
	}
}

// WaitlistEntry represents a queued booking request that could not be
// satisfied immediately. Entries for the same provider/service/date are
// promoted strictly FIFO by CreatedAt.
type WaitlistEntry struct {
	ID          uuid.UUID
	ClientID    int64
	ProviderID  int64
	ServiceID   int64
	DesiredDate time.Time
	// DesiredTime narrows the entry to a specific slot; nil means any slot
	// on the desired date is acceptable.
	DesiredTime *types.TimeString
	Status      WaitlistStatus
	Notes       *string

	NotifiedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsWaiting returns true if the entry is still eligible for promotion
func (w *WaitlistEntry) IsWaiting() bool {
	return w.Status == WaitlistStatusWaiting
}

// MatchesSlot returns true if the entry can be promoted into the given slot
func (w *WaitlistEntry) MatchesSlot(startTime types.TimeString) bool {
	if w.DesiredTime == nil {
		return true
	}
	return w.DesiredTime.Equal(startTime)
}
