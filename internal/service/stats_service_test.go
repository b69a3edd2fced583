package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citylight/citylight-go/internal/repository"
)

const dayMs = 24 * hourMs

// Three same-day Chengdu samples plus one Beijing sample a day later:
// two cities, two provinces, two tracking days, distance fixed at zero.
func TestStatsScenario(t *testing.T) {
	f := newVisitFixture(t)
	stats := NewStatsService(repository.NewStatsRepository(f.db))

	day1 := int64(1704067200000) // 2024-01-01T00:00:00Z
	f.ingestSample(t, "user-1", "成都市", "四川省", day1)
	f.ingestSample(t, "user-1", "成都市", "四川省", day1+2*hourMs)
	f.ingestSample(t, "user-1", "成都市", "四川省", day1+5*hourMs)
	f.ingestSample(t, "user-1", "北京", "北京", day1+dayMs)

	result, err := stats.GetStats("user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCities)
	assert.Equal(t, 2, result.TotalProvinces)
	assert.Equal(t, 0.0, result.TotalDistance)
	assert.Equal(t, 2, result.TrackingDays)
}

func TestStatsDistinctProvinces(t *testing.T) {
	f := newVisitFixture(t)
	stats := NewStatsService(repository.NewStatsRepository(f.db))

	// two cities in one province collapse to a single province
	f.ingestSample(t, "user-1", "成都市", "四川省", hourMs)
	f.ingestSample(t, "user-1", "绵阳市", "四川省", 2*hourMs)

	result, err := stats.GetStats("user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCities)
	assert.Equal(t, 1, result.TotalProvinces)
}

func TestStatsEmptyUser(t *testing.T) {
	f := newVisitFixture(t)
	stats := NewStatsService(repository.NewStatsRepository(f.db))

	result, err := stats.GetStats("nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalCities)
	assert.Equal(t, 0, result.TotalProvinces)
	assert.Equal(t, 0, result.TrackingDays)
}

func TestStatsCountsUnlightedCities(t *testing.T) {
	f := newVisitFixture(t)
	stats := NewStatsService(repository.NewStatsRepository(f.db))

	visit := f.ingestSample(t, "user-1", "成都市", "四川省", hourMs)
	require.False(t, visit.IsLighted)

	result, err := stats.GetStats("user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCities)
}
