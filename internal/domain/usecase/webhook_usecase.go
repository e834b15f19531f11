package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"productimporter/internal/domain/entity"
	"productimporter/pkg/utils"
)

var ErrWebhookNotFound = errors.New("webhook not found")

type WebhookInput struct {
	URL       string `json:"url"`
	EventType string `json:"event_type"`
	Active    *bool  `json:"active"`
}

type WebhookUpdate struct {
	URL       *string `json:"url"`
	EventType *string `json:"event_type"`
	Active    *bool   `json:"active"`
}

type WebhookRepo interface {
	List(ctx context.Context) ([]entity.Webhook, error)
	GetByID(ctx context.Context, id uint) (*entity.Webhook, error)
	Create(ctx context.Context, w *entity.Webhook) error
	Save(ctx context.Context, w *entity.Webhook) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type WebhookUseCase struct {
	Webhooks  WebhookRepo
	Publisher Publisher
}

func NewWebhookUseCase(webhooks WebhookRepo, pub Publisher) *WebhookUseCase {
	return &WebhookUseCase{Webhooks: webhooks, Publisher: pub}
}

func (u *WebhookUseCase) List(ctx context.Context) ([]entity.Webhook, error) {
	return u.Webhooks.List(ctx)
}

func (u *WebhookUseCase) Create(ctx context.Context, input WebhookInput) (*entity.Webhook, error) {
	w := &entity.Webhook{
		URL:       input.URL,
		EventType: input.EventType,
		Active:    true,
	}
	if input.Active != nil {
		w.Active = *input.Active
	}
	if err := u.Webhooks.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (u *WebhookUseCase) Update(ctx context.Context, id uint, input WebhookUpdate) (*entity.Webhook, error) {
	w, err := u.Webhooks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWebhookNotFound
	}

	if input.URL != nil {
		w.URL = *input.URL
	}
	if input.EventType != nil {
		w.EventType = *input.EventType
	}
	if input.Active != nil {
		w.Active = *input.Active
	}

	if err := u.Webhooks.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (u *WebhookUseCase) Delete(ctx context.Context, id uint) error {
	deleted, err := u.Webhooks.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrWebhookNotFound
	}
	return nil
}

// TestFire enqueues a one-off test delivery for the given webhook and
// returns the task id the caller can correlate in worker logs.
func (u *WebhookUseCase) TestFire(ctx context.Context, id uint) (string, error) {
	w, err := u.Webhooks.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if w == nil {
		return "", ErrWebhookNotFound
	}

	payload, err := utils.ToRawMessage(map[string]string{
		"event":     "webhook.test",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"message":   "This is a test webhook fired from your product importer app.",
	})
	if err != nil {
		return "", err
	}

	taskID := uuid.New().String()
	msg, err := utils.ToRawMessage(entity.WebhookDeliveryMessage{
		TaskID:    taskID,
		WebhookID: w.ID,
		URL:       w.URL,
		Payload:   payload,
	})
	if err != nil {
		return "", err
	}

	if err := publishWithRetry(ctx, u.Publisher, msg); err != nil {
		return "", err
	}
	return taskID, nil
}
