package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/furrygarden/core"
	"github.com/poiesic/furrygarden/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func safeRows() []core.RawRow {
	return []core.RawRow{
		{core.KeyCommonName: "Basil", core.KeyLatinName: "Ocimum basilicum"},
		{core.KeyCommonName: "Spider Plant", core.KeyAdditionalNames: "Airplane Plant, Ribbon Plant"},
		{core.KeyCommonName: "Rose", core.KeyLatinName: "Rosa spp."},
	}
}

func TestPlantRepository_ReplaceAndRead(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, repo.ReplaceRows(ctx, core.PartitionSafe, safeRows()))

	rows, err := repo.Rows(ctx, core.PartitionSafe)
	require.NoError(t, err)
	assert.Equal(t, safeRows(), rows)

	count, err := repo.CountRows(ctx, core.PartitionSafe)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	info, err := repo.Snapshot(ctx, core.PartitionSafe)
	require.NoError(t, err)
	assert.Equal(t, core.PartitionSafe, info.Partition)
	assert.Equal(t, 3, info.Rows)
	assert.Equal(t, storage.ChecksumRows(safeRows()), info.Checksum)
	assert.True(t, info.WrittenAt.After(before))
}

func TestPlantRepository_NeverWritten(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	rows, err := repo.Rows(ctx, core.PartitionToxic)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	count, err := repo.CountRows(ctx, core.PartitionToxic)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.Snapshot(ctx, core.PartitionToxic)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPlantRepository_ReplaceShrinks(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, repo.ReplaceRows(ctx, core.PartitionSafe, safeRows()))

	replacement := []core.RawRow{{core.KeyCommonName: "Fern"}}
	require.NoError(t, repo.ReplaceRows(ctx, core.PartitionSafe, replacement))

	rows, err := repo.Rows(ctx, core.PartitionSafe)
	require.NoError(t, err)
	assert.Equal(t, replacement, rows)

	info, err := repo.Snapshot(ctx, core.PartitionSafe)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Rows)
}

func TestPlantRepository_PartitionsAreIsolated(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	toxic := []core.RawRow{{core.KeyCommonName: "Peace Lily", core.KeyPolishName: "Skrzydłokwiat"}}
	require.NoError(t, repo.ReplaceRows(ctx, core.PartitionSafe, safeRows()))
	require.NoError(t, repo.ReplaceRows(ctx, core.PartitionToxic, toxic))

	rows, err := repo.Rows(ctx, core.PartitionToxic)
	require.NoError(t, err)
	assert.Equal(t, toxic, rows)

	count, err := repo.CountRows(ctx, core.PartitionSafe)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestPlantRepository_PreservesOrderBeyondOneByte(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	rows := make([]core.RawRow, 300)
	for i := range rows {
		rows[i] = core.RawRow{core.KeyCommonName: time.Duration(i).String()}
	}

	ctx := context.Background()
	require.NoError(t, repo.ReplaceRows(ctx, core.PartitionSafe, rows))

	got, err := repo.Rows(ctx, core.PartitionSafe)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestPlantRepository_InvalidPartition(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	err = repo.ReplaceRows(ctx, core.Partition(0), safeRows())
	assert.ErrorIs(t, err, core.ErrInvalidPartition)

	_, err = repo.Rows(ctx, core.Partition(9))
	assert.ErrorIs(t, err, core.ErrInvalidPartition)
}

func TestPlantRepository_ClosedBackend(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = repo.Rows(context.Background(), core.PartitionSafe)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
