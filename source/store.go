package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/furrygarden/core"
	"github.com/poiesic/furrygarden/storage"
)

// Store reads partitions from an imported snapshot.
type Store struct {
	repo storage.PlantRepository
}

var _ Source = (*Store)(nil)

// NewStore creates a source over repo. The caller keeps ownership of repo.
func NewStore(repo storage.PlantRepository) (*Store, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	return &Store{repo: repo}, nil
}

// Fetch implements Source. A partition that was never imported is
// reported as unavailable rather than empty.
func (s *Store) Fetch(ctx context.Context, partition core.Partition) ([]core.RawRow, error) {
	if _, err := s.repo.Snapshot(ctx, partition); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: no %s snapshot", ErrUnavailable, partition)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	rows, err := s.repo.Rows(ctx, partition)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return rows, nil
}
