package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/citylight/citylight-go/internal/models"
)

// TraceRepository handles database operations for the append-only
// location_points table.
type TraceRepository struct {
	db *sql.DB
}

// NewTraceRepository creates a new trace repository
func NewTraceRepository(db *sql.DB) *TraceRepository {
	return &TraceRepository{db: db}
}

// Append stores a sample and returns its row ID. Samples are never updated
// or deleted afterwards.
func (r *TraceRepository) Append(ctx context.Context, s *models.LocationSample) (int64, error) {
	query := `INSERT INTO location_points
		(user_id, latitude, longitude, timestamp_ms, accuracy, speed_mps, heading_deg, city_name, province_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		s.UserID, s.Latitude, s.Longitude, s.TimestampMs,
		s.Accuracy, s.SpeedMps, s.HeadingDeg,
		s.CityName, s.ProvinceName,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert location point: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// QueryTrajectory retrieves a user's samples ordered by timestamp ascending.
// Bounds are inclusive and only applied when positive.
func (r *TraceRepository) QueryTrajectory(userID string, startMs, endMs int64) ([]models.LocationSample, error) {
	query := `SELECT id, user_id, latitude, longitude, timestamp_ms,
		accuracy, speed_mps, heading_deg, city_name, province_name, created_at
		FROM location_points`

	conditions := []string{"user_id = ?"}
	args := []interface{}{userID}

	if startMs > 0 {
		conditions = append(conditions, "timestamp_ms >= ?")
		args = append(args, startMs)
	}
	if endMs > 0 {
		conditions = append(conditions, "timestamp_ms <= ?")
		args = append(args, endMs)
	}

	query += " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY timestamp_ms ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trajectory: %w", err)
	}
	defer rows.Close()

	var samples []models.LocationSample
	for rows.Next() {
		var s models.LocationSample
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Latitude, &s.Longitude, &s.TimestampMs,
			&s.Accuracy, &s.SpeedMps, &s.HeadingDeg,
			&s.CityName, &s.ProvinceName, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location point: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trajectory rows: %w", err)
	}

	return samples, nil
}

// PriorSampleTime returns the timestamp of the latest same-city sample
// strictly before beforeMs. Equal timestamps do not match, so a duplicate
// upload never pairs with itself.
func (r *TraceRepository) PriorSampleTime(ctx context.Context, q Querier, userID, cityName string, beforeMs int64) (int64, bool, error) {
	query := `SELECT timestamp_ms FROM location_points
		WHERE user_id = ? AND city_name = ? AND timestamp_ms < ?
		ORDER BY timestamp_ms DESC LIMIT 1`

	var ts int64
	err := q.QueryRowContext(ctx, query, userID, cityName, beforeMs).Scan(&ts)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query prior sample: %w", err)
	}
	return ts, true, nil
}
