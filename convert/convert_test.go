package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/furrygarden/core"
	"github.com/poiesic/furrygarden/source"
	"github.com/poiesic/furrygarden/storage"
	badgerstore "github.com/poiesic/furrygarden/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const safeCSV = `common_name,additional_names,latin_name,family,polish_name
Spider Plant,"Airplane Plant, Ribbon Plant",Chlorophytum comosum,Liliaceae,Zielistka
Broken,row
,,,Lamiaceae,
Basil,,Ocimum basilicum,Lamiaceae,Bazylia
`

const toxicCSV = `common_name,additional_names,latin_name,family,polish_name
Peace Lily,Mauna Loa,Spathiphyllum spp.,Araceae,Skrzydłokwiat
`

func writeCSVDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "safe.csv"), []byte(safeCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toxic.csv"), []byte(toxicCSV), 0o644))
	return dir
}

func TestConvertDir(t *testing.T) {
	inDir := writeCSVDir(t)
	outDir := filepath.Join(t.TempDir(), "json")

	c, err := NewConverter()
	require.NoError(t, err)
	defer c.Release()

	report, err := c.ConvertDir(context.Background(), inDir, outDir)
	require.NoError(t, err)
	require.Len(t, report.Partitions, 2)

	safe := report.Partitions[0]
	assert.Equal(t, core.PartitionSafe, safe.Partition)
	assert.Equal(t, 3, safe.Rows)
	assert.Equal(t, 1, safe.Skipped)
	assert.Equal(t, 1, safe.Invalid)
	assert.Equal(t, filepath.Join(outDir, "safe.json"), safe.Path)
	assert.Equal(t, 4, report.Rows())

	// The JSON output reads back through the JSON source.
	src, err := source.NewJSONDir(outDir)
	require.NoError(t, err)
	rows, err := src.Fetch(context.Background(), core.PartitionToxic)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Skrzydłokwiat", rows[0][core.KeyPolishName])

	// No temporary files are left behind.
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestConvertDir_MissingInput(t *testing.T) {
	inDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "safe.csv"), []byte(safeCSV), 0o644))

	c, err := NewConverter(WithPoolSize(1))
	require.NoError(t, err)
	defer c.Release()

	_, err = c.ConvertDir(context.Background(), inDir, t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImport(t *testing.T) {
	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	src, err := source.NewCSVDir(writeCSVDir(t))
	require.NoError(t, err)

	var progress bytes.Buffer
	c, err := NewConverter(WithProgress(&progress, 1))
	require.NoError(t, err)
	defer c.Release()

	report, err := c.Import(context.Background(), src, repo)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Rows())
	assert.Contains(t, progress.String(), "4/4 rows")

	ctx := context.Background()
	count, err := repo.CountRows(ctx, core.PartitionSafe)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	info, err := repo.Snapshot(ctx, core.PartitionToxic)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Rows)
}

type brokenSource struct{}

func (brokenSource) Fetch(_ context.Context, p core.Partition) ([]core.RawRow, error) {
	if p == core.PartitionToxic {
		return nil, errors.New("gone")
	}
	return []core.RawRow{{core.KeyCommonName: "Basil"}}, nil
}

func TestImport_FetchFailureWritesNothing(t *testing.T) {
	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	c, err := NewConverter()
	require.NoError(t, err)
	defer c.Release()

	_, err = c.Import(context.Background(), brokenSource{}, repo)
	require.Error(t, err)

	_, err = repo.Snapshot(context.Background(), core.PartitionSafe)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestImport_RequiresArguments(t *testing.T) {
	c, err := NewConverter()
	require.NoError(t, err)
	defer c.Release()

	_, err = c.Import(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrSourceRequired)

	_, err = c.Import(context.Background(), brokenSource{}, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}
