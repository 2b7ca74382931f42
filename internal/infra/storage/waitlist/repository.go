package waitlist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// entryColumns колонки таблицы waitlist_entries в порядке сканирования
var entryColumns = []string{
	"id",
	"client_id",
	"provider_id",
	"service_id",
	"desired_date",
	"desired_time",
	"status",
	"notes",
	"notified_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с листом ожидания
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория листа ожидания
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись в листе ожидания
func (r *Repository) Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Status == "" {
		entry.Status = domain.WaitlistStatusWaiting
	}

	query, args, err := psqlbuilder.Insert("waitlist_entries").
		Columns(
			"id",
			"client_id",
			"provider_id",
			"service_id",
			"desired_date",
			"desired_time",
			"status",
			"notes",
		).
		Values(
			entry.ID,
			entry.ClientID,
			entry.ProviderID,
			entry.ServiceID,
			entry.DesiredDate,
			desiredTimeValue(entry.DesiredTime),
			entry.Status,
			entry.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return entry, nil
}

// ListWaiting получает ожидающие записи для провайдера/услуги/даты
// Порядок строго FIFO по created_at — на нём держится гарантия
// справедливого продвижения листа ожидания
func (r *Repository) ListWaiting(ctx context.Context, providerID, serviceID int64, date time.Time) ([]*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(entryColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{
			"provider_id":  providerID,
			"service_id":   serviceID,
			"desired_date": date,
			"status":       domain.WaitlistStatusWaiting,
		}).
		OrderBy("created_at ASC")

	// Блокируем очередь внутри транзакции продвижения
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWaiting - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWaiting - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetByID получает запись листа ожидания по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(entryColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	entry, err := scanEntryRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan entry: %v", ErrScanRow, err)
	}

	return entry, nil
}

// UpdateStatus обновляет статус записи листа ожидания
// При переходе в notified проставляет notified_at
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.WaitlistStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("waitlist_entries").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if status == domain.WaitlistStatusNotified {
		updateBuilder = updateBuilder.Set("notified_at", squirrel.Expr("NOW()"))
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// ExpireBefore переводит в expired все ожидающие записи с desired_date раньше cutoff
// Возвращает количество затронутых записей
func (r *Repository) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("waitlist_entries").
		Set("status", domain.WaitlistStatusExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.WaitlistStatusWaiting}).
		Where(squirrel.Lt{"desired_date": cutoff}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: ExpireBefore - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireBefore - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireBefore - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEntryRow сканирует одну строку в domain.WaitlistEntry
func scanEntryRow(row rowScanner) (*domain.WaitlistEntry, error) {
	var entry domain.WaitlistEntry
	var desiredTime sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.ClientID,
		&entry.ProviderID,
		&entry.ServiceID,
		&entry.DesiredDate,
		&desiredTime,
		&entry.Status,
		&entry.Notes,
		&entry.NotifiedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if desiredTime.Valid {
		var ts types.TimeString
		if err := ts.Scan(desiredTime.String); err != nil {
			return nil, err
		}
		entry.DesiredTime = &ts
	}

	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return &entry, nil
}

// desiredTimeValue конвертирует опциональное время в аргумент запроса
func desiredTimeValue(t *types.TimeString) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// scanEntries сканирует результаты запроса в слайс записей листа ожидания
func scanEntries(rows *sql.Rows) ([]*domain.WaitlistEntry, error) {
	entries := make([]*domain.WaitlistEntry, 0)

	for rows.Next() {
		entry, err := scanEntryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanEntries - scan row: %v", ErrScanRow, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanEntries - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}
