package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"productimporter/internal/domain/entity"
	"productimporter/internal/domain/usecase"
)

type WebhookUseCase interface {
	List(ctx context.Context) ([]entity.Webhook, error)
	Create(ctx context.Context, input usecase.WebhookInput) (*entity.Webhook, error)
	Update(ctx context.Context, id uint, input usecase.WebhookUpdate) (*entity.Webhook, error)
	Delete(ctx context.Context, id uint) error
	TestFire(ctx context.Context, id uint) (string, error)
}

type WebhookHandler struct {
	UseCase WebhookUseCase
}

func NewWebhookHandler(u WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{UseCase: u}
}

func (h *WebhookHandler) List(c *gin.Context) {
	webhooks, err := h.UseCase.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if webhooks == nil {
		webhooks = []entity.Webhook{}
	}
	c.JSON(http.StatusOK, webhooks)
}

func (h *WebhookHandler) Create(c *gin.Context) {
	var input usecase.WebhookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.URL == "" || input.EventType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url and event_type are required"})
		return
	}

	w, err := h.UseCase.Create(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *WebhookHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook id"})
		return
	}

	var input usecase.WebhookUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.UseCase.Update(c.Request.Context(), id, input)
	if err != nil {
		if errors.Is(err, usecase.ErrWebhookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WebhookHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook id"})
		return
	}

	if err := h.UseCase.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrWebhookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WebhookHandler) TestFire(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook id"})
		return
	}

	taskID, err := h.UseCase.TestFire(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrWebhookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": taskID})
}
