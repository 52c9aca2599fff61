package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/furrygarden/core"
	"github.com/poiesic/furrygarden/storage"
)

// PlantRepository implements storage.PlantRepository for BadgerDB.
type PlantRepository struct {
	backend *Backend
}

var _ storage.PlantRepository = (*PlantRepository)(nil)

// NewPlantRepository creates a new PlantRepository.
func NewPlantRepository(backend *Backend) (*PlantRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &PlantRepository{backend: backend}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *PlantRepository) Close() error {
	return nil
}

// ReplaceRows removes every stored row of the partition and writes rows in
// their place, together with fresh snapshot metadata, in one transaction.
func (r *PlantRepository) ReplaceRows(ctx context.Context, partition core.Partition, rows []core.RawRow) error {
	if err := core.ValidatePartition(partition); err != nil {
		return err
	}

	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		for _, key := range collectKeys(tx, makePartialRowKey(partition)) {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		for i, row := range rows {
			if err := tx.Set(makeRowKey(partition, i), storage.MarshalRawRow(row)); err != nil {
				return err
			}
		}

		info := &storage.SnapshotInfo{
			Partition: partition,
			Rows:      len(rows),
			Checksum:  storage.ChecksumRows(rows),
			WrittenAt: time.Now().UTC(),
		}
		return tx.Set(makeSnapshotKey(partition), storage.MarshalSnapshotInfo(info))
	})
	if err != nil {
		return err
	}

	r.backend.logger.Debug("replaced partition rows", "partition", partition, "rows", len(rows))
	return nil
}

// Rows returns the stored rows of a partition in insertion order.
func (r *PlantRepository) Rows(ctx context.Context, partition core.Partition) ([]core.RawRow, error) {
	if err := core.ValidatePartition(partition); err != nil {
		return nil, err
	}

	rows := make([]core.RawRow, 0)
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := makePartialRowKey(partition)
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var row core.RawRow
			err := iter.Item().Value(func(val []byte) error {
				var err error
				row, err = storage.UnmarshalRawRow(val)
				return err
			})
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountRows counts the stored rows of a partition without decoding them.
func (r *PlantRepository) CountRows(ctx context.Context, partition core.Partition) (int, error) {
	if err := core.ValidatePartition(partition); err != nil {
		return 0, err
	}

	count := 0
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := makePartialRowKey(partition)
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Snapshot returns the metadata written by the last ReplaceRows call.
func (r *PlantRepository) Snapshot(ctx context.Context, partition core.Partition) (*storage.SnapshotInfo, error) {
	if err := core.ValidatePartition(partition); err != nil {
		return nil, err
	}

	var info *storage.SnapshotInfo
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		item, err := tx.Get(makeSnapshotKey(partition))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			info, err = storage.UnmarshalSnapshotInfo(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// collectKeys returns copies of every key under prefix.
// Keys are gathered before any mutation so the iterator is closed first.
func collectKeys(tx *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	return keys
}
