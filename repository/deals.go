package repository

import (
	"context"
	"fmt"

	"comp-machine/models"

	"github.com/jackc/pgx/v5"
)

// CreateDeal creates a new deal performance record
func (r *Repository) CreateDeal(ctx context.Context, deal *models.DealPerformance) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO deals (id, subject_address, acquisition_price, estimated_arv, estimated_repair_costs,
			estimated_margin, margin_confidence, comp_quality_score, market_condition, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, deal.ID, deal.SubjectAddress, deal.AcquisitionPrice, deal.EstimatedARV, deal.EstimatedRepairCosts,
		deal.EstimatedMargin, deal.MarginConfidence, deal.CompQualityScore, deal.MarketCondition, deal.Status, deal.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}

	return nil
}

// UpdateDeal persists status transitions and settled outcomes
func (r *Repository) UpdateDeal(ctx context.Context, deal *models.DealPerformance) error {
	_, err := r.db.Exec(ctx, `
		UPDATE deals
		SET status = $2, closed_at = $3, actual_arv = $4, actual_repair_costs = $5,
			actual_margin = $6, roi_percentage = $7
		WHERE id = $1
	`, deal.ID, deal.Status, deal.ClosedAt, deal.ActualARV, deal.ActualRepairCosts,
		deal.ActualMargin, deal.ROIPercentage)

	if err != nil {
		return fmt.Errorf("failed to update deal: %w", err)
	}

	return nil
}

// GetDeal returns a single deal by ID
func (r *Repository) GetDeal(ctx context.Context, id string) (*models.DealPerformance, error) {
	var d models.DealPerformance
	err := r.db.QueryRow(ctx, `
		SELECT id, subject_address, acquisition_price, estimated_arv, estimated_repair_costs,
			estimated_margin, margin_confidence, comp_quality_score, market_condition, status,
			created_at, closed_at, actual_arv, actual_repair_costs, actual_margin, roi_percentage
		FROM deals WHERE id = $1
	`, id).Scan(&d.ID, &d.SubjectAddress, &d.AcquisitionPrice, &d.EstimatedARV, &d.EstimatedRepairCosts,
		&d.EstimatedMargin, &d.MarginConfidence, &d.CompQualityScore, &d.MarketCondition, &d.Status,
		&d.CreatedAt, &d.ClosedAt, &d.ActualARV, &d.ActualRepairCosts, &d.ActualMargin, &d.ROIPercentage)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query deal: %w", err)
	}

	return &d, nil
}

// GetDeals returns deals with optional status filtering, newest first. A
// limit <= 0 returns every deal; the portfolio aggregation depends on seeing
// the full history.
func (r *Repository) GetDeals(ctx context.Context, status models.DealStatus, limit int) ([]models.DealPerformance, error) {
	query := `
		SELECT id, subject_address, acquisition_price, estimated_arv, estimated_repair_costs,
			estimated_margin, margin_confidence, comp_quality_score, market_condition, status,
			created_at, closed_at, actual_arv, actual_repair_costs, actual_margin, roi_percentage
		FROM deals`

	args := []any{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer rows.Close()

	var deals []models.DealPerformance
	for rows.Next() {
		var d models.DealPerformance
		err := rows.Scan(&d.ID, &d.SubjectAddress, &d.AcquisitionPrice, &d.EstimatedARV, &d.EstimatedRepairCosts,
			&d.EstimatedMargin, &d.MarginConfidence, &d.CompQualityScore, &d.MarketCondition, &d.Status,
			&d.CreatedAt, &d.ClosedAt, &d.ActualARV, &d.ActualRepairCosts, &d.ActualMargin, &d.ROIPercentage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, d)
	}

	return deals, nil
}
