package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/retry"
)

// Client клиент для отправки событий в NotifyService
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryCfg   retry.Config
	log        Logger
}

// NewClient создает новый экземпляр клиента NotifyService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryCfg: retry.DefaultConfig(),
		log:      log,
	}
}

// Send отправляет событие с повторами при временных сбоях
func (c *Client) Send(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	return retry.Do(ctx, c.retryCfg, func() error {
		return c.post(ctx, event)
	})
}

// SendAsync отправляет событие в фоне, не блокируя бизнес-операцию.
// Доставка best-effort: при исчерпании повторов событие теряется,
// ошибка остаётся в логах.
func (c *Client) SendAsync(event Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.Send(ctx, event); err != nil {
			c.log.Error("Failed to deliver %s event for appointment %s: %v", event.Type, event.AppointmentID, err)
			return
		}

		c.log.Info("Delivered %s event for appointment %s", event.Type, event.AppointmentID)
	}()
}

func (c *Client) post(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/events", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Клиентские ошибки не лечатся повтором
		body, _ := io.ReadAll(resp.Body)
		return retry.Permanent(fmt.Errorf("%w: status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body)))
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}
}
