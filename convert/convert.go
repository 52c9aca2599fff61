// Package convert prepares plant data offline: it turns the curated CSV
// exports into the JSON files read by the JSON source, and imports either
// format into a BadgerDB snapshot.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/furrygarden/core"
	"github.com/poiesic/furrygarden/source"
	"github.com/poiesic/furrygarden/storage"
)

// PartitionReport summarizes the conversion of one partition.
type PartitionReport struct {
	Partition core.Partition
	Path      string // file written, empty for imports
	Rows      int    // rows written
	Skipped   int    // malformed input lines
	Invalid   int    // rows the loader will reject for having no name
}

// Report summarizes a conversion or import.
type Report struct {
	Partitions []PartitionReport // in core.Partitions order
}

// Rows returns the total number of rows written.
func (r *Report) Rows() int {
	total := 0
	for _, p := range r.Partitions {
		total += p.Rows
	}
	return total
}

// Converter runs conversions and imports.
type Converter struct {
	pool           *ants.Pool
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter) error

// WithPoolSize sets how many partitions are processed concurrently.
// Default is one worker per partition.
func WithPoolSize(size int) Option {
	return func(c *Converter) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if c.pool != nil {
			c.pool.Release()
		}
		c.pool = pool
		return nil
	}
}

// WithProgress reports import progress to w every interval rows.
func WithProgress(w io.Writer, interval int) Option {
	return func(c *Converter) error {
		c.progress = w
		c.reportInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewConverter creates a Converter.
func NewConverter(opts ...Option) (*Converter, error) {
	pool, err := ants.NewPool(len(core.Partitions))
	if err != nil {
		return nil, err
	}

	c := &Converter{
		pool:           pool,
		progress:       io.Discard,
		reportInterval: 100,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}
	return c, nil
}

// Release releases the worker pool.
func (c *Converter) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// ConvertDir reads <inDir>/safe.csv and <inDir>/toxic.csv and writes
// <outDir>/safe.json and <outDir>/toxic.json. Lines whose column count does
// not match the header are skipped and counted. Each output file is replaced
// atomically.
func (c *Converter) ConvertDir(ctx context.Context, inDir, outDir string) (*Report, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	reports, err := c.forEachPartition(ctx, func(ctx context.Context, partition core.Partition) (PartitionReport, error) {
		return c.convertFile(ctx, partition, inDir, outDir)
	})
	if err != nil {
		return nil, err
	}
	return &Report{Partitions: reports}, nil
}

func (c *Converter) convertFile(ctx context.Context, partition core.Partition, inDir, outDir string) (PartitionReport, error) {
	report := PartitionReport{Partition: partition}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	inPath := filepath.Join(inDir, source.FormatCSV.FileName(partition))
	in, err := os.Open(inPath)
	if err != nil {
		return report, err
	}
	defer in.Close()

	decoded, err := source.DecodeCSV(in)
	if err != nil {
		return report, fmt.Errorf("read %s: %w", filepath.Base(inPath), err)
	}

	outPath := filepath.Join(outDir, source.FormatJSON.FileName(partition))
	if err := writeJSON(outPath, decoded.Rows); err != nil {
		return report, err
	}

	report.Path = outPath
	report.Rows = len(decoded.Rows)
	report.Skipped = decoded.Skipped
	report.Invalid = countInvalid(decoded.Rows, partition)
	c.logger.Info("converted partition",
		"partition", partition,
		"in", inPath,
		"out", outPath,
		"rows", report.Rows,
		"skipped", report.Skipped,
		"invalid", report.Invalid)
	return report, nil
}

// Import copies every partition of src into repo. All partitions are fetched
// before anything is written, so a fetch failure leaves repo untouched.
func (c *Converter) Import(ctx context.Context, src source.Source, repo storage.PlantRepository) (*Report, error) {
	if src == nil {
		return nil, ErrSourceRequired
	}
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	fetched := make(map[core.Partition][]core.RawRow, len(core.Partitions))
	var mu sync.Mutex
	reports, err := c.forEachPartition(ctx, func(ctx context.Context, partition core.Partition) (PartitionReport, error) {
		rows, err := src.Fetch(ctx, partition)
		if err != nil {
			return PartitionReport{Partition: partition}, fmt.Errorf("fetch %s: %w", partition, err)
		}
		mu.Lock()
		fetched[partition] = rows
		mu.Unlock()
		return PartitionReport{
			Partition: partition,
			Rows:      len(rows),
			Invalid:   countInvalid(rows, partition),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	report := &Report{Partitions: reports}
	tracker := NewProgressTracker(c.progress, report.Rows(), c.reportInterval)
	tracker.Start()
	for _, partition := range core.Partitions {
		rows := fetched[partition]
		if err := repo.ReplaceRows(ctx, partition, rows); err != nil {
			return nil, fmt.Errorf("write %s: %w", partition, err)
		}
		tracker.Increment(len(rows))
		c.logger.Info("imported partition", "partition", partition, "rows", len(rows))
	}
	tracker.Finish()

	return report, nil
}

// forEachPartition runs fn for every partition on the worker pool and
// returns the reports in partition order. Errors from all partitions are
// joined.
func (c *Converter) forEachPartition(ctx context.Context, fn func(context.Context, core.Partition) (PartitionReport, error)) ([]PartitionReport, error) {
	reports := make([]PartitionReport, len(core.Partitions))
	errs := make([]error, len(core.Partitions))

	var wg sync.WaitGroup
	for i, partition := range core.Partitions {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			reports[i], errs[i] = fn(ctx, partition)
		}
		if err := c.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reports, nil
}

func writeJSON(path string, rows []core.RawRow) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := source.EncodeJSON(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func countInvalid(rows []core.RawRow, partition core.Partition) int {
	invalid := 0
	for _, row := range rows {
		plant := core.Normalize(row, partition.IsSafe())
		if !core.IsValid(&plant) {
			invalid++
		}
	}
	return invalid
}
