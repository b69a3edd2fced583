package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citylight/citylight-go/internal/database"
	"github.com/citylight/citylight-go/internal/metrics"
	"github.com/citylight/citylight-go/internal/models"
	"github.com/citylight/citylight-go/internal/repository"
)

const hourMs = int64(3600000)

type visitFixture struct {
	db        *sql.DB
	traceRepo *repository.TraceRepository
	visits    *VisitService
}

func newVisitFixture(t *testing.T) *visitFixture {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	traceRepo := repository.NewTraceRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	return &visitFixture{
		db:        db,
		traceRepo: traceRepo,
		visits:    NewVisitService(db, visitRepo, traceRepo),
	}
}

// ingestSample mirrors the ingestion order: store the sample first, then
// fold it into the visit aggregate.
func (f *visitFixture) ingestSample(t *testing.T, userID, city, province string, ts int64) *models.CityVisit {
	t.Helper()
	_, err := f.traceRepo.Append(context.Background(), &models.LocationSample{
		UserID:       userID,
		Latitude:     30.5728,
		Longitude:    104.0668,
		TimestampMs:  ts,
		CityName:     city,
		ProvinceName: province,
	})
	require.NoError(t, err)

	visit, err := f.visits.Upsert(context.Background(), userID, city, province, 30.5728, 104.0668, ts)
	require.NoError(t, err)
	return visit
}

func TestUpsertFirstSample(t *testing.T) {
	f := newVisitFixture(t)

	visit := f.ingestSample(t, "user-1", "成都市", "四川省", hourMs)
	assert.Equal(t, 1, visit.VisitCount)
	assert.Equal(t, 0.0, visit.TotalStayHours)
	assert.False(t, visit.IsLighted)
	assert.Equal(t, visit.FirstVisitDate, visit.LastVisitDate)
}

func TestVisitCountMonotonicity(t *testing.T) {
	f := newVisitFixture(t)

	var visit *models.CityVisit
	for i := 1; i <= 5; i++ {
		visit = f.ingestSample(t, "user-1", "成都市", "四川省", int64(i)*hourMs)
		assert.Equal(t, i, visit.VisitCount)
	}
	assert.Equal(t, 5, visit.VisitCount)
}

func TestStayHoursAccumulation(t *testing.T) {
	f := newVisitFixture(t)

	f.ingestSample(t, "user-1", "成都市", "四川省", 0)
	visit := f.ingestSample(t, "user-1", "成都市", "四川省", 2*hourMs)
	assert.InDelta(t, 2.0, visit.TotalStayHours, 1e-9)

	visit = f.ingestSample(t, "user-1", "成都市", "四川省", 5*hourMs)
	assert.InDelta(t, 5.0, visit.TotalStayHours, 1e-9)
}

// The lighting threshold is reached exactly at the second sample, never at
// the first.
func TestLightingThreshold(t *testing.T) {
	f := newVisitFixture(t)

	visit := f.ingestSample(t, "user-1", "成都市", "四川省", hourMs)
	assert.False(t, visit.IsLighted)

	visit = f.ingestSample(t, "user-1", "成都市", "四川省", 2*hourMs)
	assert.True(t, visit.IsLighted)
}

func TestLightingMonotonicity(t *testing.T) {
	f := newVisitFixture(t)

	for i := 1; i <= 4; i++ {
		f.ingestSample(t, "user-1", "成都市", "四川省", int64(i)*hourMs)
	}
	visit := f.ingestSample(t, "user-1", "成都市", "四川省", 5*hourMs)
	assert.True(t, visit.IsLighted)
}

// The lighting counter moves exactly once per transition, when the row has
// actually been committed.
func TestLightingCountedOncePerTransition(t *testing.T) {
	f := newVisitFixture(t)

	before := testutil.ToFloat64(metrics.CitiesLighted)

	f.ingestSample(t, "user-1", "成都市", "四川省", hourMs)
	assert.Equal(t, before, testutil.ToFloat64(metrics.CitiesLighted))

	f.ingestSample(t, "user-1", "成都市", "四川省", 2*hourMs)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CitiesLighted))

	// already lighted, no further transitions
	f.ingestSample(t, "user-1", "成都市", "四川省", 3*hourMs)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CitiesLighted))
}

// A late sample with an already-seen timestamp must not pair with itself:
// the stay delta is zero.
func TestDuplicateTimestampNoSelfMatch(t *testing.T) {
	f := newVisitFixture(t)

	f.ingestSample(t, "user-1", "成都市", "四川省", hourMs)
	visit := f.ingestSample(t, "user-1", "成都市", "四川省", hourMs)
	assert.Equal(t, 2, visit.VisitCount)
	assert.Equal(t, 0.0, visit.TotalStayHours)
}

// Stay pairing follows sample timestamps, not arrival order.
func TestOutOfOrderArrival(t *testing.T) {
	f := newVisitFixture(t)

	f.ingestSample(t, "user-1", "成都市", "四川省", 1*hourMs)
	f.ingestSample(t, "user-1", "成都市", "四川省", 4*hourMs)
	// arrives late: its prior sample by timestamp is the 1h one
	visit := f.ingestSample(t, "user-1", "成都市", "四川省", 2*hourMs)

	// (4h-1h) + (2h-1h)
	assert.InDelta(t, 4.0, visit.TotalStayHours, 1e-9)
	assert.Equal(t, 3, visit.VisitCount)
}

func TestUpsertKeysAreIndependent(t *testing.T) {
	f := newVisitFixture(t)

	f.ingestSample(t, "user-1", "成都市", "四川省", hourMs)
	visit := f.ingestSample(t, "user-1", "北京", "北京", 2*hourMs)
	assert.Equal(t, 1, visit.VisitCount)

	other := f.ingestSample(t, "user-2", "成都市", "四川省", 3*hourMs)
	assert.Equal(t, 1, other.VisitCount)
}

// N concurrent upserts to the same key must not lose updates.
func TestConcurrentUpsertSafety(t *testing.T) {
	f := newVisitFixture(t)

	const n = 16
	for i := 1; i <= n; i++ {
		_, err := f.traceRepo.Append(context.Background(), &models.LocationSample{
			UserID:       "user-1",
			Latitude:     30.5728,
			Longitude:    104.0668,
			TimestampMs:  int64(i) * hourMs,
			CityName:     "成都市",
			ProvinceName: "四川省",
		})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(ts int64) {
			defer wg.Done()
			_, err := f.visits.Upsert(context.Background(), "user-1", "成都市", "四川省", 30.5728, 104.0668, ts)
			errs <- err
		}(int64(i) * hourMs)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	visit, err := f.visits.GetVisit("user-1", 1)
	require.NoError(t, err)
	require.NotNil(t, visit)
	assert.Equal(t, n, visit.VisitCount)
	// each sample pairs with its timestamp predecessor, so the deltas
	// telescope to the full span
	assert.InDelta(t, float64(n-1), visit.TotalStayHours, 1e-9)
	assert.True(t, visit.IsLighted)
}

func TestListVisitsOrderAndFilter(t *testing.T) {
	f := newVisitFixture(t)

	f.ingestSample(t, "user-1", "成都市", "四川省", hourMs)
	f.ingestSample(t, "user-1", "成都市", "四川省", 2*hourMs) // lighted
	f.ingestSample(t, "user-1", "北京", "北京", 3*hourMs)       // not lighted

	visits, err := f.visits.ListVisits("user-1", nil)
	require.NoError(t, err)
	require.Len(t, visits, 2)
	// most recently visited first
	assert.Equal(t, "北京", visits[0].CityName)

	lighted := true
	visits, err = f.visits.ListVisits("user-1", &lighted)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "成都市", visits[0].CityName)
}

func TestGetVisitScopedToOwner(t *testing.T) {
	f := newVisitFixture(t)

	created := f.ingestSample(t, "user-1", "成都市", "四川省", hourMs)

	visit, err := f.visits.GetVisit("user-1", created.ID)
	require.NoError(t, err)
	require.NotNil(t, visit)

	visit, err = f.visits.GetVisit("user-2", created.ID)
	require.NoError(t, err)
	assert.Nil(t, visit)
}
