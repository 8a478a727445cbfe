package importer

import (
	"context"
	"testing"
	"time"

	"maintainops/services/testutil"

	"github.com/stretchr/testify/require"
)

func newJobRepo(t *testing.T) JobRepository {
	t.Helper()
	db := testutil.NewTestDB(t, &ImportJob{})
	return NewJobRepository(db)
}

func seedPending(t *testing.T, repo JobRepository, id, tenantID string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &ImportJob{
		ID:        id,
		TenantID:  tenantID,
		Type:      KindLocations,
		Status:    StatusPending,
		FileName:  "locations.csv",
		Errors:    marshalRowErrors(nil),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}))
}

func TestClaimIsExclusive(t *testing.T) {
	repo := newJobRepo(t)
	ctx := context.Background()
	seedPending(t, repo, "j1", "tenant-1", time.Now().UTC())

	first, err := repo.Claim(ctx, "j1")
	require.NoError(t, err)
	require.True(t, first)

	second, err := repo.Claim(ctx, "j1")
	require.NoError(t, err)
	require.False(t, second)

	got, err := repo.GetByID(ctx, "tenant-1", "j1")
	require.NoError(t, err)
	require.Equal(t, StatusProcessing, got.Status)
}

func TestClaimUnknownJob(t *testing.T) {
	repo := newJobRepo(t)

	claimed, err := repo.Claim(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestGetByIDScopedToTenant(t *testing.T) {
	repo := newJobRepo(t)
	ctx := context.Background()
	seedPending(t, repo, "j1", "tenant-1", time.Now().UTC())

	got, err := repo.GetByID(ctx, "tenant-2", "j1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestListNewestFirst(t *testing.T) {
	repo := newJobRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	seedPending(t, repo, "old", "tenant-1", base)
	seedPending(t, repo, "new", "tenant-1", base.Add(time.Minute))
	seedPending(t, repo, "other", "tenant-2", base.Add(2*time.Minute))

	jobs, err := repo.List(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, "new", jobs[0].ID)
	require.Equal(t, "old", jobs[1].ID)
}

func TestOldestPendingOrderAndLimit(t *testing.T) {
	repo := newJobRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	seedPending(t, repo, "j3", "tenant-1", base.Add(2*time.Minute))
	seedPending(t, repo, "j1", "tenant-1", base)
	seedPending(t, repo, "j2", "tenant-2", base.Add(time.Minute))

	claimed, err := repo.Claim(ctx, "j3")
	require.NoError(t, err)
	require.True(t, claimed)

	pool, err := repo.OldestPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	require.Equal(t, "j1", pool[0].ID)
	require.Equal(t, "j2", pool[1].ID)

	pool, err = repo.OldestPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	require.Equal(t, "j1", pool[0].ID)
}

func TestCheckpointPersistsCountersAndErrors(t *testing.T) {
	repo := newJobRepo(t)
	ctx := context.Background()
	seedPending(t, repo, "j1", "tenant-1", time.Now().UTC())

	rowErrs := []RowError{{Row: 3, Field: "year", Value: "abc", Message: "year must be a number"}}
	require.NoError(t, repo.SetTotalRows(ctx, "j1", 20))
	require.NoError(t, repo.Checkpoint(ctx, "j1", 10, 9, 1, rowErrs))

	got, err := repo.GetByID(ctx, "tenant-1", "j1")
	require.NoError(t, err)
	require.Equal(t, 20, got.TotalRows)
	require.Equal(t, 10, got.ProcessedRows)
	require.Equal(t, 9, got.SuccessRows)
	require.Equal(t, 1, got.ErrorRows)

	decoded, err := got.RowErrors()
	require.NoError(t, err)
	require.Equal(t, rowErrs, decoded)

	// Checkpoint updates counters only, never status.
	require.Equal(t, StatusPending, got.Status)
}

func TestFinishSetsCompletedAt(t *testing.T) {
	repo := newJobRepo(t)
	ctx := context.Background()
	seedPending(t, repo, "j1", "tenant-1", time.Now().UTC())

	require.NoError(t, repo.Finish(ctx, "j1", StatusCompleted, 4, 4, 0, nil))

	got, err := repo.GetByID(ctx, "tenant-1", "j1")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)
	require.Equal(t, 4, got.ProcessedRows)
	require.NotNil(t, got.CompletedAt)

	decoded, err := got.RowErrors()
	require.NoError(t, err)
	require.Empty(t, decoded)
}

func TestResetStaleCutoffBoundary(t *testing.T) {
	repo := newJobRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	seedPending(t, repo, "j1", "tenant-1", now.Add(-time.Hour))
	claimed, err := repo.Claim(ctx, "j1")
	require.NoError(t, err)
	require.True(t, claimed)

	// Freshly claimed, updated_at is now: a cutoff in the past must not touch it.
	reset, err := repo.ResetStale(ctx, "", now.Add(-10*time.Minute))
	require.NoError(t, err)
	require.Zero(t, reset)

	// A future cutoff sweeps it back to pending.
	reset, err = repo.ResetStale(ctx, "", now.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, reset)

	got, err := repo.GetByID(ctx, "tenant-1", "j1")
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)
}
