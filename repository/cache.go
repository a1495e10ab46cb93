package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetCachedData retrieves cached data for a zip code and data type
func (r *Repository) GetCachedData(ctx context.Context, zipCode, dataType string) (map[string]interface{}, error) {
	var data []byte

	// Let the database handle expiry check to avoid timezone issues
	err := r.db.QueryRow(ctx, `
		SELECT data FROM market_data_cache
		WHERE zip_code = $1 AND data_type = $2 AND expires_at > NOW()
	`, zipCode, dataType).Scan(&data)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return result, nil
}

// SetCachedData stores data in the cache with a TTL
func (r *Repository) SetCachedData(ctx context.Context, zipCode, dataType string, data map[string]interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO market_data_cache (zip_code, data_type, data, expires_at)
		VALUES ($1, $2, $3, NOW() + $4::interval)
		ON CONFLICT (zip_code, data_type)
		DO UPDATE SET data = EXCLUDED.data, expires_at = NOW() + $4::interval, created_at = NOW()
	`, zipCode, dataType, jsonData, ttl.String())

	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// InvalidateCache removes cached data for a zip code and data type
func (r *Repository) InvalidateCache(ctx context.Context, zipCode, dataType string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM market_data_cache WHERE zip_code = $1 AND data_type = $2
	`, zipCode, dataType)

	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	return nil
}

// InvalidateAllCacheForZip removes all cached data for a zip code
func (r *Repository) InvalidateAllCacheForZip(ctx context.Context, zipCode string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM market_data_cache WHERE zip_code = $1`, zipCode)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// CleanExpiredCache removes all expired cache entries
func (r *Repository) CleanExpiredCache(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM market_data_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired cache: %w", err)
	}
	return result.RowsAffected(), nil
}
