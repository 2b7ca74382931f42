package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrStateNotFound возвращается, когда состояние бронирования не найдено или истекло
var ErrStateNotFound = errors.New("session.store: state not found")

// State промежуточное состояние бронирования между созданием и подтверждением.
// Живёт ровно окно оплаты: не подтверждено вовремя — запись чистит sweeper.
type State struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	ClientID      int64     `json:"client_id"`
	ProviderID    int64     `json:"provider_id"`
	ServiceID     int64     `json:"service_id"`
	TotalPrice    float64   `json:"total_price"`
	Quantity      int       `json:"quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store хранилище промежуточных состояний бронирования
type Store interface {
	// Get возвращает состояние по ID записи
	Get(ctx context.Context, appointmentID uuid.UUID) (*State, error)
	// Set сохраняет состояние с таймаутом жизни
	Set(ctx context.Context, state *State, ttl time.Duration) error
	// Delete удаляет состояние (после подтверждения или отмены)
	Delete(ctx context.Context, appointmentID uuid.UUID) error
}
