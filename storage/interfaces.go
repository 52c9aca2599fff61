package storage

import (
	"context"

	"github.com/poiesic/furrygarden/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close closes the storage backend and releases resources.
	Close() error
}

// PlantRepository stores prepared partition snapshots: the raw rows emitted
// by the converter, kept in their original order.
type PlantRepository interface {
	Repository

	// ReplaceRows atomically replaces every row stored for a partition.
	// Rows are stored in the order given.
	ReplaceRows(ctx context.Context, partition core.Partition, rows []core.RawRow) error

	// Rows returns the rows of a partition in stored order.
	// Returns an empty slice if the partition has never been written.
	Rows(ctx context.Context, partition core.Partition) ([]core.RawRow, error)

	// CountRows returns the number of rows stored for a partition.
	CountRows(ctx context.Context, partition core.Partition) (int, error)

	// Snapshot returns metadata about the last write of a partition.
	// Returns ErrNotFound if the partition has never been written.
	Snapshot(ctx context.Context, partition core.Partition) (*SnapshotInfo, error)
}
