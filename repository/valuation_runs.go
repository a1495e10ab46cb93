package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"comp-machine/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateValuationRun creates a new valuation run record
func (r *Repository) CreateValuationRun(ctx context.Context, run *models.ValuationRun) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO valuation_runs (id, address, zip_code, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.Address, run.ZipCode, run.Status, run.StartedAt)

	if err != nil {
		return fmt.Errorf("failed to create valuation run: %w", err)
	}

	return nil
}

// UpdateValuationRun updates an existing valuation run
func (r *Repository) UpdateValuationRun(ctx context.Context, run *models.ValuationRun) error {
	outputData, _ := json.Marshal(run.OutputData)

	_, err := r.db.Exec(ctx, `
		UPDATE valuation_runs
		SET status = $2, output_data = $3, error_message = $4, duration_ms = $5, completed_at = $6
		WHERE id = $1
	`, run.ID, run.Status, outputData, run.ErrorMessage, run.DurationMs, run.CompletedAt)

	if err != nil {
		return fmt.Errorf("failed to update valuation run: %w", err)
	}

	return nil
}

// GetValuationRun returns a single valuation run by ID
func (r *Repository) GetValuationRun(ctx context.Context, id uuid.UUID) (*models.ValuationRun, error) {
	var run models.ValuationRun
	var outputData []byte
	var errorMessage *string
	var durationMs *int

	err := r.db.QueryRow(ctx, `
		SELECT id, address, zip_code, status, output_data, error_message, duration_ms, started_at, completed_at
		FROM valuation_runs WHERE id = $1
	`, id).Scan(&run.ID, &run.Address, &run.ZipCode, &run.Status, &outputData, &errorMessage, &durationMs, &run.StartedAt, &run.CompletedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query valuation run: %w", err)
	}

	if errorMessage != nil {
		run.ErrorMessage = *errorMessage
	}
	if durationMs != nil {
		run.DurationMs = *durationMs
	}
	if outputData != nil {
		json.Unmarshal(outputData, &run.OutputData)
	}

	return &run, nil
}

// GetValuationRuns returns valuation runs, newest first, with optional zip filtering
func (r *Repository) GetValuationRuns(ctx context.Context, zipCode string, limit int) ([]models.ValuationRun, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows pgx.Rows
	var err error

	if zipCode == "" {
		rows, err = r.db.Query(ctx, `
			SELECT id, address, zip_code, status, output_data, error_message, duration_ms, started_at, completed_at
			FROM valuation_runs
			ORDER BY started_at DESC
			LIMIT $1
		`, limit)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT id, address, zip_code, status, output_data, error_message, duration_ms, started_at, completed_at
			FROM valuation_runs
			WHERE zip_code = $1
			ORDER BY started_at DESC
			LIMIT $2
		`, zipCode, limit)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query valuation runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ValuationRun
	for rows.Next() {
		var run models.ValuationRun
		var outputData []byte
		var errorMessage *string
		var durationMs *int

		err := rows.Scan(&run.ID, &run.Address, &run.ZipCode, &run.Status, &outputData, &errorMessage, &durationMs, &run.StartedAt, &run.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan valuation run: %w", err)
		}

		if errorMessage != nil {
			run.ErrorMessage = *errorMessage
		}
		if durationMs != nil {
			run.DurationMs = *durationMs
		}
		if outputData != nil {
			json.Unmarshal(outputData, &run.OutputData)
		}

		runs = append(runs, run)
	}

	return runs, nil
}
