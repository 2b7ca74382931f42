package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusInProgress, false},
		{StatusScheduled, StatusNoShow, false},
		{StatusConfirmed, StatusInProgress, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusNoShow, StatusConfirmed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"transition %s -> %s", tt.from, tt.to)
	}
}

func TestAppointmentStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusScheduled.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())
}

func TestAppointmentStatus_IsValid(t *testing.T) {
	assert.True(t, StatusScheduled.IsValid())
	assert.True(t, StatusNoShow.IsValid())
	assert.False(t, AppointmentStatus("pending").IsValid())
	assert.False(t, AppointmentStatus("").IsValid())
}

func TestAppointment_BlocksSlot(t *testing.T) {
	apt := &Appointment{Status: StatusScheduled}
	assert.True(t, apt.BlocksSlot())

	apt.Status = StatusConfirmed
	assert.True(t, apt.BlocksSlot())

	apt.Status = StatusInProgress
	assert.True(t, apt.BlocksSlot())

	// Отменённые, завершённые и неявки не держат слот
	apt.Status = StatusCancelled
	assert.False(t, apt.BlocksSlot())

	apt.Status = StatusCompleted
	assert.False(t, apt.BlocksSlot())

	apt.Status = StatusNoShow
	assert.False(t, apt.BlocksSlot())
}

func TestAppointment_CanBeRescheduled(t *testing.T) {
	apt := &Appointment{Status: StatusScheduled}
	assert.True(t, apt.CanBeRescheduled())

	apt.Status = StatusConfirmed
	assert.True(t, apt.CanBeRescheduled())

	apt.Status = StatusInProgress
	assert.False(t, apt.CanBeRescheduled())

	apt.Status = StatusCancelled
	assert.False(t, apt.CanBeRescheduled())
}

func TestAppointment_ScheduledStart(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	assert.NoError(t, err)

	apt := &Appointment{
		BookingDate:     time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       types.TimeString("14:30"),
		DurationMinutes: 90,
	}

	start := apt.ScheduledStart(loc)
	assert.Equal(t, time.Date(2025, 10, 15, 14, 30, 0, 0, loc), start)

	end := apt.ScheduledEnd(loc)
	assert.Equal(t, time.Date(2025, 10, 15, 16, 0, 0, 0, loc), end)
}

func TestScheduleConfig_IsBusinessDay(t *testing.T) {
	config := &ScheduleConfig{
		BusinessDays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
	}

	assert.True(t, config.IsBusinessDay(time.Monday))
	assert.True(t, config.IsBusinessDay(time.Friday))
	assert.False(t, config.IsBusinessDay(time.Sunday))
}

func TestScheduleConfig_OpenCloseTime(t *testing.T) {
	config := &ScheduleConfig{StartHour: 11, EndHour: 20}

	assert.Equal(t, types.TimeString("11:00"), config.OpenTime())
	assert.Equal(t, types.TimeString("20:00"), config.CloseTime())

	// Верхняя граница суток
	config.EndHour = 24
	assert.Equal(t, types.TimeString("24:00"), config.CloseTime())
}

func TestDefaultScheduleConfig(t *testing.T) {
	config := DefaultScheduleConfig(42)

	assert.Equal(t, int64(42), config.ProviderID)
	assert.Nil(t, config.ServiceID)
	assert.True(t, config.IsProviderWide())
	assert.Equal(t, DefaultStartHour, config.StartHour)
	assert.Equal(t, DefaultEndHour, config.EndHour)
	assert.Equal(t, DefaultSlotDurationMinutes, config.SlotDurationMinutes)
	assert.False(t, config.AllowWaitlist)
	assert.True(t, config.RequiresApproval)
}
