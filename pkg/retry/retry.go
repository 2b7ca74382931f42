package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config параметры повторяемой операции
type Config struct {
	// MaxAttempts максимальное число попыток (включая первую)
	MaxAttempts uint64

	// InitialInterval начальная задержка между попытками
	InitialInterval time.Duration

	// MaxInterval верхняя граница задержки
	MaxInterval time.Duration

	// Retryable предикат, отделяющий транзиентные ошибки от терминальных
	// nil означает "повторять любую ошибку"
	Retryable func(error) bool
}

// DefaultConfig разумные значения по умолчанию для исходящих HTTP вызовов
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Permanent помечает ошибку как терминальную: Do вернет её сразу,
// не тратя оставшиеся попытки
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do выполняет op с экспоненциальным backoff между попытками
// Терминальные ошибки (Retryable(err) == false) возвращаются сразу без повторов
func Do(ctx context.Context, cfg Config, op func() error) error {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}

	expo := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		expo.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		expo.MaxInterval = cfg.MaxInterval
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, cfg.MaxAttempts-1), ctx)

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(wrapped, policy)
}
