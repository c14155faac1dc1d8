package rundb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordAndListRuns(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := db.RecordRun(Run{
			Pipeline:   "classifier",
			Recorded:   base.Add(time.Duration(i) * time.Minute),
			Iterations: 1000,
			Digest:     "d1",
			MinLatency: 10 * time.Microsecond,
			MaxLatency: 40 * time.Microsecond,
		})
		require.NoError(t, err)
	}
	require.NoError(t, db.RecordRun(Run{Pipeline: "other", Digest: "d2"}))

	runs, err := db.Runs("classifier")
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Recording order survives the round trip.
	for i := 1; i < len(runs); i++ {
		require.True(t, runs[i-1].Recorded.Before(runs[i].Recorded))
	}

	other, err := db.Runs("other")
	require.NoError(t, err)
	require.Len(t, other, 1)
	require.Equal(t, "d2", other[0].Digest)
}

func TestRunsEmpty(t *testing.T) {
	db := openTestDB(t)

	runs, err := db.Runs("nonexistent")
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestBaseline(t *testing.T) {
	db := openTestDB(t)

	_, found, err := db.Baseline("classifier")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, db.SetBaseline("classifier", "abc123"))

	digest, found, err := db.Baseline("classifier")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "abc123", digest)

	// Overwrite replaces, not appends.
	require.NoError(t, db.SetBaseline("classifier", "def456"))
	digest, found, err = db.Baseline("classifier")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "def456", digest)
}

func TestRecordRunDefaultsTimestamp(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.RecordRun(Run{Pipeline: "p", Digest: "d"}))
	runs, err := db.Runs("p")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.False(t, runs[0].Recorded.IsZero())
}
