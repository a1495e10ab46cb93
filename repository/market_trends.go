package repository

import (
	"context"
	"fmt"

	"comp-machine/models"

	"github.com/jackc/pgx/v5"
)

// UpsertMarketTrend stores the latest trend snapshot for a zip code
func (r *Repository) UpsertMarketTrend(ctx context.Context, trend *models.MarketTrend) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO market_trends (zip_code, trend_period_days, price_trend, trend_strength,
			trend_confidence, volatility_index, momentum_score, market_cycle_phase, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (zip_code)
		DO UPDATE SET trend_period_days = EXCLUDED.trend_period_days,
			price_trend = EXCLUDED.price_trend,
			trend_strength = EXCLUDED.trend_strength,
			trend_confidence = EXCLUDED.trend_confidence,
			volatility_index = EXCLUDED.volatility_index,
			momentum_score = EXCLUDED.momentum_score,
			market_cycle_phase = EXCLUDED.market_cycle_phase,
			last_updated = EXCLUDED.last_updated
	`, trend.ZipCode, trend.TrendPeriodDays, trend.PriceTrend, trend.TrendStrength,
		trend.TrendConfidence, trend.VolatilityIndex, trend.MomentumScore, trend.MarketCyclePhase, trend.LastUpdated)

	if err != nil {
		return fmt.Errorf("failed to upsert market trend: %w", err)
	}

	return nil
}

// GetMarketTrend returns the stored trend snapshot for a zip code
func (r *Repository) GetMarketTrend(ctx context.Context, zipCode string) (*models.MarketTrend, error) {
	var t models.MarketTrend
	err := r.db.QueryRow(ctx, `
		SELECT zip_code, trend_period_days, price_trend, trend_strength, trend_confidence,
			volatility_index, momentum_score, market_cycle_phase, last_updated
		FROM market_trends WHERE zip_code = $1
	`, zipCode).Scan(&t.ZipCode, &t.TrendPeriodDays, &t.PriceTrend, &t.TrendStrength, &t.TrendConfidence,
		&t.VolatilityIndex, &t.MomentumScore, &t.MarketCyclePhase, &t.LastUpdated)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query market trend: %w", err)
	}

	return &t, nil
}

// GetMarketTrends returns all stored trend snapshots
func (r *Repository) GetMarketTrends(ctx context.Context, limit int) ([]models.MarketTrend, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx, `
		SELECT zip_code, trend_period_days, price_trend, trend_strength, trend_confidence,
			volatility_index, momentum_score, market_cycle_phase, last_updated
		FROM market_trends
		ORDER BY last_updated DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query market trends: %w", err)
	}
	defer rows.Close()

	var trends []models.MarketTrend
	for rows.Next() {
		var t models.MarketTrend
		err := rows.Scan(&t.ZipCode, &t.TrendPeriodDays, &t.PriceTrend, &t.TrendStrength, &t.TrendConfidence,
			&t.VolatilityIndex, &t.MomentumScore, &t.MarketCyclePhase, &t.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market trend: %w", err)
		}
		trends = append(trends, t)
	}

	return trends, nil
}
