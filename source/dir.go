package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/furrygarden/core"
)

// Dir reads partition files from a local directory.
type Dir struct {
	dir    string
	format Format
	logger *slog.Logger
}

var _ Source = (*Dir)(nil)

// NewJSONDir reads <dir>/safe.json and <dir>/toxic.json.
func NewJSONDir(dir string, opts ...Option) (*Dir, error) {
	return newDir(dir, FormatJSON, opts)
}

// NewCSVDir reads <dir>/safe.csv and <dir>/toxic.csv.
func NewCSVDir(dir string, opts ...Option) (*Dir, error) {
	return newDir(dir, FormatCSV, opts)
}

func newDir(dir string, format Format, opts []Option) (*Dir, error) {
	o, err := newOptions(format, opts)
	if err != nil {
		return nil, err
	}
	return &Dir{dir: dir, format: o.format, logger: o.logger}, nil
}

// Path returns the file read for a partition.
func (d *Dir) Path(partition core.Partition) string {
	return filepath.Join(d.dir, d.format.FileName(partition))
}

// Fetch implements Source.
func (d *Dir) Fetch(ctx context.Context, partition core.Partition) ([]core.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := core.ValidatePartition(partition); err != nil {
		return nil, err
	}

	path := d.Path(partition)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrUnavailable, filepath.Base(path), err)
	}
	defer f.Close()

	decoded, err := Decode(d.format, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if decoded.Skipped > 0 {
		d.logger.Warn("skipped malformed lines", "file", path, "skipped", decoded.Skipped)
	}
	d.logger.Debug("read partition file", "file", path, "rows", len(decoded.Rows))
	return decoded.Rows, nil
}
