package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/citylight/citylight-go/internal/models"
)

// VisitRepository handles database operations for the city_visits aggregate
type VisitRepository struct {
	db *sql.DB
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(db *sql.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

const visitColumns = `id, user_id, city_name, province_name,
	first_visit_date, last_visit_date, visit_count, total_stay_hours,
	is_lighted, latitude, longitude`

func scanVisit(row *sql.Row) (*models.CityVisit, error) {
	var v models.CityVisit
	err := row.Scan(
		&v.ID, &v.UserID, &v.CityName, &v.ProvinceName,
		&v.FirstVisitDate, &v.LastVisitDate, &v.VisitCount, &v.TotalStayHours,
		&v.IsLighted, &v.Latitude, &v.Longitude,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan city visit: %w", err)
	}
	return &v, nil
}

// GetByKey retrieves the visit row for a (user, city, province) triple, or
// nil when none exists yet. Runs against q so the visit upsert can read its
// own transaction.
func (r *VisitRepository) GetByKey(ctx context.Context, q Querier, userID, cityName, provinceName string) (*models.CityVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM city_visits
		WHERE user_id = ? AND city_name = ? AND province_name = ?`
	return scanVisit(q.QueryRowContext(ctx, query, userID, cityName, provinceName))
}

// GetByID retrieves a visit row by ID, scoped to the owning user. Returns
// nil when absent or owned by someone else.
func (r *VisitRepository) GetByID(userID string, id int64) (*models.CityVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM city_visits
		WHERE id = ? AND user_id = ?`
	return scanVisit(r.db.QueryRow(query, id, userID))
}

// ListByUser retrieves all of a user's visit rows, most recently visited
// first. lighted filters on the lighting flag when set.
func (r *VisitRepository) ListByUser(userID string, lighted *bool) ([]models.CityVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM city_visits WHERE user_id = ?`
	args := []interface{}{userID}

	if lighted != nil {
		query += " AND is_lighted = ?"
		args = append(args, *lighted)
	}
	query += " ORDER BY last_visit_date DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list city visits: %w", err)
	}
	defer rows.Close()

	var visits []models.CityVisit
	for rows.Next() {
		var v models.CityVisit
		err := rows.Scan(
			&v.ID, &v.UserID, &v.CityName, &v.ProvinceName,
			&v.FirstVisitDate, &v.LastVisitDate, &v.VisitCount, &v.TotalStayHours,
			&v.IsLighted, &v.Latitude, &v.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan city visit: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read city visit rows: %w", err)
	}

	return visits, nil
}

// Insert creates the first visit row for a (user, city, province) triple.
func (r *VisitRepository) Insert(ctx context.Context, q Querier, v *models.CityVisit) error {
	query := `INSERT INTO city_visits
		(user_id, city_name, province_name, first_visit_date, last_visit_date,
		 visit_count, total_stay_hours, is_lighted, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := q.ExecContext(ctx, query,
		v.UserID, v.CityName, v.ProvinceName, v.FirstVisitDate, v.LastVisitDate,
		v.VisitCount, v.TotalStayHours, v.IsLighted, v.Latitude, v.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to insert city visit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	v.ID = id
	return nil
}

// Update overwrites the mutable fields of an existing visit row.
func (r *VisitRepository) Update(ctx context.Context, q Querier, v *models.CityVisit) error {
	query := `UPDATE city_visits
		SET last_visit_date = ?, visit_count = ?, total_stay_hours = ?,
			is_lighted = ?, latitude = ?, longitude = ?
		WHERE id = ?`

	_, err := q.ExecContext(ctx, query,
		v.LastVisitDate, v.VisitCount, v.TotalStayHours,
		v.IsLighted, v.Latitude, v.Longitude, v.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update city visit: %w", err)
	}
	return nil
}
