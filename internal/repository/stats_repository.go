package repository

import (
	"database/sql"
	"fmt"
)

// StatsRepository handles the read-only aggregation queries behind GET /stats
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CountCities counts a user's city_visits rows, lighted or not.
func (r *StatsRepository) CountCities(userID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM city_visits WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cities: %w", err)
	}
	return count, nil
}

// CountDistinctProvinces counts the distinct canonical provinces across a
// user's city_visits rows.
func (r *StatsRepository) CountDistinctProvinces(userID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(DISTINCT province_name) FROM city_visits WHERE user_id = ?", userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count provinces: %w", err)
	}
	return count, nil
}

// CountTrackingDays counts the distinct UTC calendar dates across a user's
// stored samples.
func (r *StatsRepository) CountTrackingDays(userID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(DISTINCT date(timestamp_ms / 1000, 'unixepoch')) FROM location_points WHERE user_id = ?",
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tracking days: %w", err)
	}
	return count, nil
}
