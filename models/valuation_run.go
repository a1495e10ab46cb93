package models

import (
	"time"

	"github.com/google/uuid"
)

// ValuationRun is the audit record for one valuation request.
type ValuationRun struct {
	ID           uuid.UUID              `json:"id"`
	Address      string                 `json:"address"`
	ZipCode      string                 `json:"zip_code,omitempty"`
	Status       ValuationRunStatus     `json:"status"`
	OutputData   map[string]interface{} `json:"output_data,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	DurationMs   int                    `json:"duration_ms"`
	StartedAt    time.Time              `json:"started_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
}

type ValuationRunStatus string

const (
	ValuationRunStatusRunning   ValuationRunStatus = "running"
	ValuationRunStatusCompleted ValuationRunStatus = "completed"
	ValuationRunStatusFailed    ValuationRunStatus = "failed"
)

func NewValuationRun(address, zipCode string) *ValuationRun {
	return &ValuationRun{
		ID:        uuid.New(),
		Address:   address,
		ZipCode:   zipCode,
		Status:    ValuationRunStatusRunning,
		StartedAt: time.Now(),
	}
}

func (r *ValuationRun) Complete(output map[string]interface{}) {
	now := time.Now()
	r.CompletedAt = &now
	r.Status = ValuationRunStatusCompleted
	r.OutputData = output
	r.DurationMs = int(now.Sub(r.StartedAt).Milliseconds())
}

func (r *ValuationRun) Fail(err error) {
	now := time.Now()
	r.CompletedAt = &now
	r.Status = ValuationRunStatusFailed
	r.ErrorMessage = err.Error()
	r.DurationMs = int(now.Sub(r.StartedAt).Milliseconds())
}
