package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"

	"productimporter/internal/domain/entity"
)

// WebhookSenderUseCase performs the single outbound HTTP call for a webhook
// delivery task. One attempt, bounded by the client timeout; the outcome is
// logged, not retried.
type WebhookSenderUseCase struct {
	Client *http.Client
}

func NewWebhookSenderUseCase(client *http.Client) *WebhookSenderUseCase {
	return &WebhookSenderUseCase{Client: client}
}

func (u *WebhookSenderUseCase) Deliver(ctx context.Context, msg entity.WebhookDeliveryMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, msg.URL, bytes.NewReader(msg.Payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.Client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook %d: %w", msg.WebhookID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %d returned status %d", msg.WebhookID, resp.StatusCode)
	}

	log.Printf("Delivered webhook %d (task %s), status %d", msg.WebhookID, msg.TaskID, resp.StatusCode)
	return nil
}
