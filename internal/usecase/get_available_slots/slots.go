package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// generateTimeSlots генерирует список всех возможных временных слотов на день
// Слоты генерируются от начала рабочего окна с шагом, равным длительности услуги
// Затем фильтруются с учетом текущего времени и минимального времени до бронирования
func generateTimeSlots(
	config *domain.ScheduleConfig,
	durationMinutes int,
	requestDate time.Time,
	now time.Time,
) ([]types.TimeString, error) {
	// Проверяем, что дата не в прошлом
	if isDateInPast(requestDate, now) {
		return []types.TimeString{}, nil
	}

	// Если провайдер не работает в этот день недели
	if !config.IsBusinessDay(requestDate.Weekday()) {
		return []types.TimeString{}, nil
	}

	openTime := config.OpenTime()
	closeTime := config.CloseTime()

	// Шаг 1: Генерируем ВСЕ слоты от открытия до закрытия
	// Последний слот должен целиком умещаться до closeTime
	allSlots := make([]types.TimeString, 0)
	currentSlot := openTime

	for currentSlot.IsBefore(closeTime) {
		slotEnd, err := currentSlot.AddMinutes(durationMinutes)
		if err != nil {
			return nil, err
		}
		if slotEnd.IsAfter(closeTime) {
			break
		}

		allSlots = append(allSlots, currentSlot)
		currentSlot, err = currentSlot.AddMinutes(durationMinutes)
		if err != nil {
			return nil, err
		}
	}

	// Шаг 2: Если дата бронирования НЕ сегодня - возвращаем все слоты
	if !isSameDay(requestDate, now) {
		return allSlots, nil
	}

	// Шаг 3: Если дата бронирования - сегодня, фильтруем слоты по времени
	// Вычисляем минимальное допустимое время начала слота
	currentTime := types.NewTimeString(now)
	minAllowedTime, err := currentTime.AddMinutes(config.MinBookingNoticeMinutes)
	if err != nil {
		return nil, err
	}

	availableSlots := make([]types.TimeString, 0)
	for _, slot := range allSlots {
		if !slot.IsBefore(minAllowedTime) {
			availableSlots = append(availableSlots, slot)
		}
	}

	return availableSlots, nil
}

// calculateAvailableSpots вычисляет количество свободных мест для каждого слота
func calculateAvailableSpots(
	slots []types.TimeString,
	durationMinutes int,
	appointments []*domain.Appointment,
	maxConcurrentBookings int,
) []domain.AvailableSlot {
	result := make([]domain.AvailableSlot, len(slots))

	for i, slotStart := range slots {
		overlappingCount := countOverlappingAppointments(slotStart, durationMinutes, appointments)

		availableSpots := maxConcurrentBookings - overlappingCount
		if availableSpots < 0 {
			availableSpots = 0
		}

		result[i] = domain.AvailableSlot{
			StartTime:       slotStart,
			DurationMinutes: durationMinutes,
			AvailableSpots:  availableSpots,
			TotalSpots:      maxConcurrentBookings,
		}
	}

	return result
}

// countOverlappingAppointments подсчитывает количество записей, пересекающихся с указанным слотом
// Пересечение есть только если интервалы действительно накладываются друг на друга
// Если одна запись заканчивается ровно там, где начинается слот (или наоборот) - это НЕ пересечение
//
// Примеры:
// - Слот 11:30-12:00, запись 11:20-11:40 → ЕСТЬ пересечение (11:30-11:40)
// - Слот 11:30-12:00, запись 11:00-11:30 → НЕТ пересечения (граничат)
// - Слот 11:30-12:00, запись 12:00-12:30 → НЕТ пересечения (граничат)
func countOverlappingAppointments(slotStart types.TimeString, durationMinutes int, appointments []*domain.Appointment) int {
	slotEnd, err := slotStart.AddMinutes(durationMinutes)
	if err != nil {
		// Если не можем вычислить конец слота, считаем что пересечений нет
		return 0
	}

	count := 0

	for _, apt := range appointments {
		// Слот держат только активные записи
		if !apt.BlocksSlot() {
			continue
		}

		aptStart := apt.StartTime
		aptEnd, err := apt.StartTime.AddMinutes(apt.DurationMinutes)
		if err != nil {
			// Если не можем вычислить конец записи, пропускаем
			continue
		}

		// Строгие неравенства: граничные случаи пересечением не считаются
		if aptStart.IsBefore(slotEnd) && aptEnd.IsAfter(slotStart) {
			count++
		}
	}

	return count
}

// countActiveAppointments подсчитывает записи, удерживающие слот на дату
// Используется для проверки дневного лимита maxBookingsPerDay
func countActiveAppointments(appointments []*domain.Appointment) int {
	count := 0
	for _, apt := range appointments {
		if apt.BlocksSlot() {
			count++
		}
	}
	return count
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	// Обнуляем время, чтобы сравнивать только даты
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
