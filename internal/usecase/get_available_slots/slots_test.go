package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func mondayToSaturday() []time.Weekday {
	return []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}

func TestGenerateTimeSlots_StepsByServiceDuration(t *testing.T) {
	// Окно 11:00-20:00, услуга 90 минут: шесть стартов с шагом 90 минут,
	// последний слот 18:30-20:00 умещается ровно до закрытия
	config := &domain.ScheduleConfig{
		BusinessDays:        mondayToSaturday(),
		StartHour:           11,
		EndHour:             20,
		SlotDurationMinutes: 30,
	}

	requestDate := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC) // понедельник
	now := time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)

	slots, err := generateTimeSlots(config, 90, requestDate, now)
	require.NoError(t, err)

	expected := []types.TimeString{"11:00", "12:30", "14:00", "15:30", "17:00", "18:30"}
	assert.Equal(t, expected, slots)
}

func TestGenerateTimeSlots_LastSlotMustFitBeforeClose(t *testing.T) {
	// Окно 9:00-18:00, услуга 120 минут: 9:00..15:00, слот 17:00-19:00 не умещается
	config := &domain.ScheduleConfig{
		BusinessDays:        mondayToSaturday(),
		StartHour:           9,
		EndHour:             18,
		SlotDurationMinutes: 60,
	}

	requestDate := time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)

	slots, err := generateTimeSlots(config, 120, requestDate, now)
	require.NoError(t, err)

	expected := []types.TimeString{"09:00", "11:00", "13:00", "15:00"}
	assert.Equal(t, expected, slots)
}

func TestGenerateTimeSlots_NonBusinessDay(t *testing.T) {
	config := &domain.ScheduleConfig{
		BusinessDays:        mondayToSaturday(),
		StartHour:           11,
		EndHour:             20,
		SlotDurationMinutes: 90,
	}

	sunday := time.Date(2025, 10, 12, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)

	slots, err := generateTimeSlots(config, 90, sunday, now)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateTimeSlots_PastDate(t *testing.T) {
	config := &domain.ScheduleConfig{
		BusinessDays:        mondayToSaturday(),
		StartHour:           11,
		EndHour:             20,
		SlotDurationMinutes: 90,
	}

	requestDate := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 10, 14, 9, 0, 0, 0, time.UTC)

	slots, err := generateTimeSlots(config, 90, requestDate, now)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateTimeSlots_SameDayFiltersByNotice(t *testing.T) {
	config := &domain.ScheduleConfig{
		BusinessDays:            mondayToSaturday(),
		StartHour:               11,
		EndHour:                 20,
		SlotDurationMinutes:     90,
		MinBookingNoticeMinutes: 60,
	}

	// Сегодня 13 октября, 12:00. С уведомлением за час доступны слоты с 13:00,
	// значит 11:00 и 12:30 отпадают
	requestDate := time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 10, 13, 12, 0, 0, 0, time.UTC)

	slots, err := generateTimeSlots(config, 90, requestDate, now)
	require.NoError(t, err)

	expected := []types.TimeString{"14:00", "15:30", "17:00", "18:30"}
	assert.Equal(t, expected, slots)
}

func TestCountOverlappingAppointments_StrictBoundaries(t *testing.T) {
	appointments := []*domain.Appointment{
		// Заканчивается ровно на старте слота - не пересечение
		{StartTime: "11:00", DurationMinutes: 30, Status: domain.StatusScheduled},
		// Начинается ровно на конце слота - не пересечение
		{StartTime: "12:00", DurationMinutes: 30, Status: domain.StatusConfirmed},
		// Частичное наложение
		{StartTime: "11:20", DurationMinutes: 20, Status: domain.StatusScheduled},
		// Полное покрытие слота
		{StartTime: "11:00", DurationMinutes: 120, Status: domain.StatusInProgress},
		// Отменённая запись слот не держит
		{StartTime: "11:30", DurationMinutes: 30, Status: domain.StatusCancelled},
	}

	count := countOverlappingAppointments("11:30", 30, appointments)
	assert.Equal(t, 2, count)
}

func TestCalculateAvailableSpots(t *testing.T) {
	appointments := []*domain.Appointment{
		{StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusScheduled},
		{StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
	}

	slots := calculateAvailableSpots(
		[]types.TimeString{"09:00", "10:00", "11:00"},
		60,
		appointments,
		2,
	)

	require.Len(t, slots, 3)

	assert.Equal(t, 2, slots[0].AvailableSpots)
	assert.Equal(t, 0, slots[1].AvailableSpots)
	assert.Equal(t, 2, slots[2].AvailableSpots)

	assert.False(t, slots[0].IsFull())
	assert.True(t, slots[1].IsFull())
}

func TestCountActiveAppointments(t *testing.T) {
	appointments := []*domain.Appointment{
		{Status: domain.StatusScheduled},
		{Status: domain.StatusConfirmed},
		{Status: domain.StatusInProgress},
		{Status: domain.StatusCancelled},
		{Status: domain.StatusCompleted},
		{Status: domain.StatusNoShow},
	}

	assert.Equal(t, 3, countActiveAppointments(appointments))
}
