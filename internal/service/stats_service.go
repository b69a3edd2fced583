package service

import (
	"fmt"

	"github.com/citylight/citylight-go/internal/models"
	"github.com/citylight/citylight-go/internal/repository"
)

// StatsService handles business logic for statistics
type StatsService struct {
	statsRepo *repository.StatsRepository
}

// NewStatsService creates a new stats service
func NewStatsService(statsRepo *repository.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

// GetStats aggregates a user's visit and trace history.
func (s *StatsService) GetStats(userID string) (*models.VisitStats, error) {
	cities, err := s.statsRepo.CountCities(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	provinces, err := s.statsRepo.CountDistinctProvinces(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	days, err := s.statsRepo.CountTrackingDays(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &models.VisitStats{
		TotalCities:    cities,
		TotalProvinces: provinces,
		TotalDistance:  0, // route distance is not computed
		TrackingDays:   days,
	}, nil
}
