package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "appointment:pending:"

// RedisStore хранилище состояний бронирования в Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore создает хранилище поверх существующего клиента Redis
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, appointmentID uuid.UUID) (*State, error) {
	data, err := s.client.Get(ctx, stateKey(appointmentID)).Bytes()
	if err == redis.Nil {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session.store: Get - redis get: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("session.store: Get - unmarshal state: %w", err)
	}

	return &state, nil
}

func (s *RedisStore) Set(ctx context.Context, state *State, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session.store: Set - marshal state: %w", err)
	}

	if err := s.client.Set(ctx, stateKey(state.AppointmentID), data, ttl).Err(); err != nil {
		return fmt.Errorf("session.store: Set - redis set: %w", err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, appointmentID uuid.UUID) error {
	if err := s.client.Del(ctx, stateKey(appointmentID)).Err(); err != nil {
		return fmt.Errorf("session.store: Delete - redis del: %w", err)
	}
	return nil
}

func stateKey(appointmentID uuid.UUID) string {
	return keyPrefix + appointmentID.String()
}
