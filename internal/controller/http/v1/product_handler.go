package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"productimporter/internal/domain/entity"
	"productimporter/internal/domain/usecase"
)

type ProductUseCase interface {
	List(ctx context.Context, filter usecase.ProductFilter) ([]entity.Product, int64, int, error)
	Create(ctx context.Context, input usecase.ProductInput) (*entity.Product, error)
	Update(ctx context.Context, id uint, input usecase.ProductUpdate) (*entity.Product, error)
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
}

type ProductHandler struct {
	UseCase ProductUseCase
}

func NewProductHandler(u ProductUseCase) *ProductHandler {
	return &ProductHandler{UseCase: u}
}

func (h *ProductHandler) List(c *gin.Context) {
	filter := usecase.ProductFilter{
		Sku:         c.Query("sku"),
		Name:        c.Query("name"),
		Description: c.Query("description"),
	}

	if raw, ok := c.GetQuery("active"); ok {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid active filter"})
			return
		}
		filter.Active = &active
	}

	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, total, totalPages, err := h.UseCase.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if items == nil {
		items = []entity.Product{}
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total":       total,
		"page":        filter.Page,
		"total_pages": totalPages,
		"limit":       filter.Limit,
	})
}

func (h *ProductHandler) Create(c *gin.Context) {
	var input usecase.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.UseCase.Create(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrSkuRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, usecase.ErrSkuExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var input usecase.ProductUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.UseCase.Update(c.Request.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, usecase.ErrSkuRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, usecase.ErrSkuExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.UseCase.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteAll wipes the catalog. Requires confirm=true to proceed.
func (h *ProductHandler) DeleteAll(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "confirmation required, pass confirm=true to delete all products",
		})
		return
	}

	deleted, err := h.UseCase.DeleteAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
