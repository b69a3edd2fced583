// Package geocoder resolves coordinates to raw place names through an
// external reverse-geocoding provider, with a bounded cache in front.
package geocoder

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/citylight/citylight-go/internal/metrics"
	"github.com/citylight/citylight-go/internal/normalizer"
)

// Provider is the external reverse-geocoding collaborator.
type Provider interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (city, province string, err error)
}

// Resolver resolves coordinates to raw place names. It fails soft: provider
// errors, timeouts and a missing credential all degrade to the unknown-place
// sentinels so that ingestion never blocks on geocoding.
type Resolver struct {
	provider Provider
	cache    PlaceCache
	timeout  time.Duration
}

// NewResolver creates a resolver. provider may be nil when no API credential
// is configured; every Resolve call then returns the sentinels.
func NewResolver(provider Provider, cache PlaceCache, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Resolver{provider: provider, cache: cache, timeout: timeout}
}

// QuantizeKey rounds a coordinate pair to 5 decimal places (~1.1 m), so that
// repeated samples at nearly the same spot share one cache entry.
func QuantizeKey(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', 5, 64) + "," + strconv.FormatFloat(lon, 'f', 5, 64)
}

// Resolve maps a coordinate to raw (city, province) names. It never returns
// an error.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) (string, string) {
	key := QuantizeKey(lat, lon)
	if p, ok := r.cache.Get(ctx, key); ok {
		metrics.GeocodeCacheHits.Inc()
		return p.City, p.Province
	}
	metrics.GeocodeCacheMisses.Inc()

	if r.provider == nil {
		return normalizer.UnknownCity, normalizer.UnknownProvince
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	metrics.GeocodeRequests.Inc()
	start := time.Now()
	city, province, err := r.provider.ReverseGeocode(cctx, lat, lon)
	metrics.GeocodeDuration.Observe(time.Since(start).Seconds())

	if err != nil || city == "" || province == "" {
		metrics.GeocodeFailures.Inc()
		log.Printf("reverse geocode failed for %s: %v", key, err)
		return normalizer.UnknownCity, normalizer.UnknownProvince
	}

	// sentinel results are never cached, so a provider outage does not stick
	r.cache.Set(ctx, key, Place{City: city, Province: province})
	return city, province
}
