package service

import (
	"errors"
	"fmt"

	"github.com/citylight/citylight-go/internal/models"
	"github.com/citylight/citylight-go/internal/repository"
)

// ErrInvalidTimeRange reports a query window whose start lies after its end.
// Handlers map it to a client error.
var ErrInvalidTimeRange = errors.New("start time must be before end time")

// TraceService handles trajectory reads
type TraceService struct {
	traceRepo *repository.TraceRepository
}

// NewTraceService creates a new trace service
func NewTraceService(traceRepo *repository.TraceRepository) *TraceService {
	return &TraceService{traceRepo: traceRepo}
}

// GetTrajectory returns a user's samples ordered by timestamp. Bounds are
// inclusive; zero means unbounded.
func (s *TraceService) GetTrajectory(userID string, startMs, endMs int64) ([]models.LocationSample, error) {
	if startMs > 0 && endMs > 0 && startMs > endMs {
		return nil, ErrInvalidTimeRange
	}

	samples, err := s.traceRepo.QueryTrajectory(userID, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("failed to get trajectory: %w", err)
	}
	return samples, nil
}
