package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/citylight/citylight-go/internal/database"
	"github.com/citylight/citylight-go/internal/metrics"
	"github.com/citylight/citylight-go/internal/models"
	"github.com/citylight/citylight-go/internal/repository"
)

const (
	// A city becomes lighted when either threshold is reached. The
	// transition is one-way: once lighted, the rule is never re-evaluated.
	lightingVisitCount = 2
	lightingStayHours  = 48.0

	millisPerHour = 3600000.0

	maxUpsertAttempts = 3
)

// VisitService maintains the per-(user, city, province) city_visits
// aggregate.
type VisitService struct {
	db        *sql.DB
	visitRepo *repository.VisitRepository
	traceRepo *repository.TraceRepository
	locks     keyedMutex
}

// NewVisitService creates a new visit service
func NewVisitService(db *sql.DB, visitRepo *repository.VisitRepository, traceRepo *repository.TraceRepository) *VisitService {
	return &VisitService{
		db:        db,
		visitRepo: visitRepo,
		traceRepo: traceRepo,
	}
}

// Upsert folds one sample into the visit row for (userID, cityName,
// provinceName). City and province names must already be canonical.
//
// The stay delta is the gap to the latest same-city sample strictly older
// than timestampMs, so replays and out-of-order arrivals are deterministic:
// the pairing follows sample timestamps, not arrival order.
//
// Known quirk, kept for compatibility: the prior-sample lookup has no time
// window, so returning to a city after a long absence counts the whole gap
// as stay hours.
func (s *VisitService) Upsert(ctx context.Context, userID, cityName, provinceName string, lat, lon float64, timestampMs int64) (*models.CityVisit, error) {
	key := userID + "\x00" + cityName + "\x00" + provinceName
	mu := s.locks.lock(key)
	defer mu.Unlock()

	var visit *models.CityVisit
	var lighted bool
	err := s.withConflictRetry(func() error {
		lighted = false
		return database.Transaction(ctx, s.db, func(tx *sql.Tx) error {
			existing, err := s.visitRepo.GetByKey(ctx, tx, userID, cityName, provinceName)
			if err != nil {
				return err
			}

			now := time.Now().UTC().Format(time.RFC3339)

			if existing == nil {
				v := &models.CityVisit{
					UserID:         userID,
					CityName:       cityName,
					ProvinceName:   provinceName,
					FirstVisitDate: now,
					LastVisitDate:  now,
					VisitCount:     1,
					TotalStayHours: 0,
					IsLighted:      false,
					Latitude:       lat,
					Longitude:      lon,
				}
				if err := s.visitRepo.Insert(ctx, tx, v); err != nil {
					return err
				}
				visit = v
				return nil
			}

			priorMs, found, err := s.traceRepo.PriorSampleTime(ctx, tx, userID, cityName, timestampMs)
			if err != nil {
				return err
			}
			if found {
				existing.TotalStayHours += float64(timestampMs-priorMs) / millisPerHour
			}

			existing.VisitCount++
			existing.LastVisitDate = now
			existing.Latitude = lat
			existing.Longitude = lon

			if !existing.IsLighted &&
				(existing.VisitCount >= lightingVisitCount || existing.TotalStayHours >= lightingStayHours) {
				existing.IsLighted = true
				lighted = true
			}

			if err := s.visitRepo.Update(ctx, tx, existing); err != nil {
				return err
			}
			visit = existing
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert city visit: %w", err)
	}
	// counted after commit so a retried transaction is not double-counted
	if lighted {
		metrics.CitiesLighted.Inc()
	}
	return visit, nil
}

// ListVisits returns a user's visit rows, most recently visited first.
func (s *VisitService) ListVisits(userID string, lighted *bool) ([]models.CityVisit, error) {
	visits, err := s.visitRepo.ListByUser(userID, lighted)
	if err != nil {
		return nil, fmt.Errorf("failed to list city visits: %w", err)
	}
	return visits, nil
}

// GetVisit returns a single visit row, or nil when absent or not owned by
// the caller.
func (s *VisitService) GetVisit(userID string, id int64) (*models.CityVisit, error) {
	visit, err := s.visitRepo.GetByID(userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get city visit: %w", err)
	}
	return visit, nil
}

// withConflictRetry re-runs the transaction a bounded number of times when
// SQLite reports write contention.
func (s *VisitService) withConflictRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !isBusy(err) {
			return err
		}
		metrics.VisitConflictRetries.Inc()
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
