package entity

import "math"

type ProgressStatus string

const (
	ProgressQueued     ProgressStatus = "queued"
	ProgressProcessing ProgressStatus = "processing"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressError      ProgressStatus = "error"
)

// Progress is the snapshot polled by clients. One record exists per job at
// any time and is overwritten in place; history is not retained.
type Progress struct {
	Status    ProgressStatus `json:"status"`
	Processed int            `json:"processed"`
	Total     int            `json:"total"`
	Percent   float64        `json:"percent"`
	Message   string         `json:"message"`
	Error     string         `json:"error,omitempty"`
}

// NewProgress computes the percent field from processed/total. Total of
// zero means unknown and yields 0.0.
func NewProgress(status ProgressStatus, processed, total int, message string) Progress {
	return Progress{
		Status:    status,
		Processed: processed,
		Total:     total,
		Percent:   ProgressPercent(processed, total),
		Message:   message,
	}
}

// NewErrorProgress carries the failure text alongside the last known counters.
func NewErrorProgress(processed, total int, message, errText string) Progress {
	p := NewProgress(ProgressError, processed, total, message)
	p.Error = errText
	return p
}

// ProgressPercent rounds to two decimal places, e.g. 1/3 → 33.33.
func ProgressPercent(processed, total int) float64 {
	if total <= 0 {
		return 0.0
	}
	return math.Round(float64(processed)/float64(total)*100*100) / 100
}
