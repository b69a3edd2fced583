package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/citylight/citylight-go/internal/geocoder"
	"github.com/citylight/citylight-go/internal/metrics"
	"github.com/citylight/citylight-go/internal/models"
	"github.com/citylight/citylight-go/internal/normalizer"
	"github.com/citylight/citylight-go/internal/repository"
)

// IngestService orchestrates one sample: resolve place names, store the
// sample, then fold it into the city visit aggregate.
type IngestService struct {
	resolver  *geocoder.Resolver
	traceRepo *repository.TraceRepository
	visits    *VisitService
	timeout   time.Duration
}

// NewIngestService creates a new ingest service
func NewIngestService(resolver *geocoder.Resolver, traceRepo *repository.TraceRepository, visits *VisitService, timeout time.Duration) *IngestService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IngestService{
		resolver:  resolver,
		traceRepo: traceRepo,
		visits:    visits,
		timeout:   timeout,
	}
}

// IngestResult is the POST /location response payload: the stored,
// normalized sample plus the visit row it updated.
type IngestResult struct {
	Sample *models.LocationSample `json:"sample"`
	Visit  *models.CityVisit      `json:"visit"`
}

// Ingest processes one validated upload for the given user. Geocoding
// failures are invisible to the caller: the sample is stored with sentinel
// place names. Only storage failures surface as errors.
func (s *IngestService) Ingest(ctx context.Context, userID string, up *models.LocationUpload) (*IngestResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// clients may pre-resolve; resolve server-side when either name is missing
	city := up.CityName
	province := up.ProvinceName
	if strings.TrimSpace(city) == "" || strings.TrimSpace(province) == "" {
		city, province = s.resolver.Resolve(ctx, *up.Latitude, *up.Longitude)
	}
	city = normalizer.NormalizeCity(city)
	province = normalizer.NormalizeProvince(province)

	sample := up.ToSample(userID)
	sample.CityName = city
	sample.ProvinceName = province

	id, err := s.traceRepo.Append(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("failed to store sample: %w", err)
	}
	sample.ID = id

	visit, err := s.visits.Upsert(ctx, userID, city, province, sample.Latitude, sample.Longitude, sample.TimestampMs)
	if err != nil {
		return nil, err
	}

	metrics.IngestTotal.Inc()
	return &IngestResult{Sample: sample, Visit: visit}, nil
}
