package v1

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"productimporter/internal/domain/entity"
	"productimporter/internal/domain/usecase"
)

type UploadUseCase interface {
	CreateJob(ctx context.Context, file io.Reader, fileName string) (string, error)
	GetStatus(ctx context.Context, jobID string) (entity.Progress, error)
}

type UploadHandler struct {
	UseCase UploadUseCase
}

func NewUploadHandler(u UploadUseCase) *UploadHandler {
	return &UploadHandler{UseCase: u}
}

// CreateJob accepts a multipart CSV upload and replies 202 with the job id.
func (h *UploadHandler) CreateJob(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	jobID, err := h.UseCase.CreateJob(c.Request.Context(), f, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNotCSV),
			errors.Is(err, usecase.ErrInvalidCSV),
			errors.Is(err, usecase.ErrTooManyRows):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

func (h *UploadHandler) GetStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	progress, err := h.UseCase.GetStatus(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, usecase.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, progress)
}
