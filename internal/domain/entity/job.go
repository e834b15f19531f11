package entity

import (
	"encoding/json"
	"time"
)

type JobStatus string

const (
	StatusPending   JobStatus = "PENDING"
	StatusRunning   JobStatus = "RUNNING"
	StatusCompleted JobStatus = "COMPLETED"
	StatusFailed    JobStatus = "FAILED"
)

// ImportJob is the durable job ledger row. The Redis progress record is the
// authoritative status channel while a job runs; this row backs status
// queries after that record has expired.
type ImportJob struct {
	JobID         string    `gorm:"primaryKey;type:uuid" json:"job_id"`
	FilePath      string    `gorm:"not null" json:"file_path"`
	TotalRows     int       `json:"total_rows"`
	ProcessedRows int       `json:"processed_rows"`
	Status        JobStatus `gorm:"not null;type:text" json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ImportJobMessage is the queue payload handed from the gateway to the worker.
type ImportJobMessage struct {
	JobID     string `json:"job_id"`
	FilePath  string `json:"file_path"`
	TotalRows int    `json:"total_rows"`
}

// WebhookDeliveryMessage is the queue payload for a single outbound
// webhook call.
type WebhookDeliveryMessage struct {
	TaskID    string          `json:"task_id"`
	WebhookID uint            `json:"webhook_id"`
	URL       string          `json:"url"`
	Payload   json.RawMessage `json:"payload"`
}
