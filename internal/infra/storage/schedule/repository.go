package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// configColumns колонки таблицы provider_schedule_config в порядке сканирования
var configColumns = []string{
	"id",
	"provider_id",
	"service_id",
	"business_days",
	"start_hour",
	"end_hour",
	"slot_duration_minutes",
	"max_concurrent_bookings",
	"max_bookings_per_day",
	"min_booking_notice_minutes",
	"cancellation_hours",
	"bulk_discount_percent",
	"allow_waitlist",
	"requires_approval",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с конфигурацией расписания провайдера
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации расписания
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает или обновляет конфигурацию расписания
// Уникальность задаётся парой (provider_id, service_id)
func (r *Repository) Upsert(ctx context.Context, config *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("provider_schedule_config").
		Columns(
			"provider_id",
			"service_id",
			"business_days",
			"start_hour",
			"end_hour",
			"slot_duration_minutes",
			"max_concurrent_bookings",
			"max_bookings_per_day",
			"min_booking_notice_minutes",
			"cancellation_hours",
			"bulk_discount_percent",
			"allow_waitlist",
			"requires_approval",
		).
		Values(
			config.ProviderID,
			config.ServiceID,
			weekdaysToArray(config.BusinessDays),
			config.StartHour,
			config.EndHour,
			config.SlotDurationMinutes,
			config.MaxConcurrentBookings,
			config.MaxBookingsPerDay,
			config.MinBookingNoticeMinutes,
			config.CancellationHours,
			config.BulkDiscountPercent,
			config.AllowWaitlist,
			config.RequiresApproval,
		).
		Suffix(`ON CONFLICT (provider_id, COALESCE(service_id, 0)) DO UPDATE SET
			business_days = EXCLUDED.business_days,
			start_hour = EXCLUDED.start_hour,
			end_hour = EXCLUDED.end_hour,
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			max_concurrent_bookings = EXCLUDED.max_concurrent_bookings,
			max_bookings_per_day = EXCLUDED.max_bookings_per_day,
			min_booking_notice_minutes = EXCLUDED.min_booking_notice_minutes,
			cancellation_hours = EXCLUDED.cancellation_hours,
			bulk_discount_percent = EXCLUDED.bulk_discount_percent,
			allow_waitlist = EXCLUDED.allow_waitlist,
			requires_approval = EXCLUDED.requires_approval,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&config.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return config, nil
}

// GetConfigWithHierarchy получает конфигурацию с учетом иерархии приоритетов:
// 1. Конфигурация для конкретной услуги (provider_id, service_id)
// 2. Общая конфигурация провайдера (provider_id, NULL)
func (r *Repository) GetConfigWithHierarchy(ctx context.Context, providerID int64, serviceID *int64) (*domain.ScheduleConfig, error) {
	if serviceID != nil {
		config, err := r.getByProviderAndService(ctx, providerID, serviceID)
		if err == nil {
			return config, nil
		}
		if err != ErrConfigNotFound {
			return nil, err
		}
	}

	return r.getByProviderAndService(ctx, providerID, nil)
}

// GetAllByProvider получает все конфигурации провайдера
func (r *Repository) GetAllByProvider(ctx context.Context, providerID int64) ([]*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(configColumns...).
		From("provider_schedule_config").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("service_id ASC NULLS FIRST").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByProvider - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAllByProvider - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	configs := make([]*domain.ScheduleConfig, 0)
	for rows.Next() {
		config, err := scanConfigRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetAllByProvider - scan row: %v", ErrScanRow, err)
		}
		configs = append(configs, config)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAllByProvider - rows error: %v", ErrScanRow, err)
	}

	return configs, nil
}

// getByProviderAndService получает конфигурацию для точного сочетания provider/service
func (r *Repository) getByProviderAndService(ctx context.Context, providerID int64, serviceID *int64) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(configColumns...).
		From("provider_schedule_config").
		Where(squirrel.Eq{"provider_id": providerID})

	if serviceID == nil {
		selectBuilder = selectBuilder.Where("service_id IS NULL")
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": *serviceID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getByProviderAndService - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	config, err := scanConfigRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getByProviderAndService - scan config: %v", ErrScanRow, err)
	}

	return config, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanConfigRow сканирует одну строку в domain.ScheduleConfig
func scanConfigRow(row rowScanner) (*domain.ScheduleConfig, error) {
	var config domain.ScheduleConfig
	var businessDays pq.Int64Array
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&config.ID,
		&config.ProviderID,
		&config.ServiceID,
		&businessDays,
		&config.StartHour,
		&config.EndHour,
		&config.SlotDurationMinutes,
		&config.MaxConcurrentBookings,
		&config.MaxBookingsPerDay,
		&config.MinBookingNoticeMinutes,
		&config.CancellationHours,
		&config.BulkDiscountPercent,
		&config.AllowWaitlist,
		&config.RequiresApproval,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	config.BusinessDays = arrayToWeekdays(businessDays)
	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return &config, nil
}

// weekdaysToArray конвертирует дни недели в массив для PostgreSQL
func weekdaysToArray(days []time.Weekday) pq.Int64Array {
	arr := make(pq.Int64Array, len(days))
	for i, d := range days {
		arr[i] = int64(d)
	}
	return arr
}

// arrayToWeekdays конвертирует массив из PostgreSQL в дни недели
func arrayToWeekdays(arr pq.Int64Array) []time.Weekday {
	days := make([]time.Weekday, len(arr))
	for i, v := range arr {
		days[i] = time.Weekday(v)
	}
	return days
}
