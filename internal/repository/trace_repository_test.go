package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citylight/citylight-go/internal/database"
	"github.com/citylight/citylight-go/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func sample(userID string, ts int64, city, province string) *models.LocationSample {
	return &models.LocationSample{
		UserID:       userID,
		Latitude:     30.5728,
		Longitude:    104.0668,
		TimestampMs:  ts,
		CityName:     city,
		ProvinceName: province,
	}
}

func TestAppendAndQueryTrajectory(t *testing.T) {
	db := newTestDB(t)
	repo := NewTraceRepository(db)

	// append out of timestamp order
	for _, ts := range []int64{3000, 1000, 2000} {
		id, err := repo.Append(context.Background(), sample("user-1", ts, "成都市", "四川省"))
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))
	}
	_, err := repo.Append(context.Background(), sample("user-2", 1500, "成都市", "四川省"))
	require.NoError(t, err)

	points, err := repo.QueryTrajectory("user-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, []int64{1000, 2000, 3000},
		[]int64{points[0].TimestampMs, points[1].TimestampMs, points[2].TimestampMs})
}

func TestQueryTrajectoryInclusiveBounds(t *testing.T) {
	db := newTestDB(t)
	repo := NewTraceRepository(db)

	for _, ts := range []int64{1000, 2000, 3000, 4000} {
		_, err := repo.Append(context.Background(), sample("user-1", ts, "成都市", "四川省"))
		require.NoError(t, err)
	}

	points, err := repo.QueryTrajectory("user-1", 2000, 3000)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, int64(2000), points[0].TimestampMs)
	assert.Equal(t, int64(3000), points[1].TimestampMs)

	points, err = repo.QueryTrajectory("user-1", 3000, 0)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestAppendNullableFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewTraceRepository(db)

	speed := 4.2
	s := sample("user-1", 1000, "成都市", "四川省")
	s.SpeedMps = &speed

	_, err := repo.Append(context.Background(), s)
	require.NoError(t, err)

	points, err := repo.QueryTrajectory("user-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, points, 1)

	require.NotNil(t, points[0].SpeedMps)
	assert.Equal(t, 4.2, *points[0].SpeedMps)
	assert.Nil(t, points[0].HeadingDeg)
	assert.Nil(t, points[0].Accuracy)
}

func TestAppendHonorsContext(t *testing.T) {
	db := newTestDB(t)
	repo := NewTraceRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Append(ctx, sample("user-1", 1000, "成都市", "四川省"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	points, err := repo.QueryTrajectory("user-1", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestPriorSampleTimeStrictlyBefore(t *testing.T) {
	db := newTestDB(t)
	repo := NewTraceRepository(db)

	_, err := repo.Append(context.Background(), sample("user-1", 1000, "成都市", "四川省"))
	require.NoError(t, err)

	// equal timestamps never match
	_, found, err := repo.PriorSampleTime(context.Background(), db, "user-1", "成都市", 1000)
	require.NoError(t, err)
	assert.False(t, found)

	ts, found, err := repo.PriorSampleTime(context.Background(), db, "user-1", "成都市", 2000)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1000), ts)

	// other cities and other users do not match
	_, found, err = repo.PriorSampleTime(context.Background(), db, "user-1", "北京市", 2000)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = repo.PriorSampleTime(context.Background(), db, "user-2", "成都市", 2000)
	require.NoError(t, err)
	assert.False(t, found)
}
