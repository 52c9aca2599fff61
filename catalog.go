// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package furrygarden

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/poiesic/furrygarden/core"
	"github.com/poiesic/furrygarden/corpus"
	"github.com/poiesic/furrygarden/metrics"
	"github.com/poiesic/furrygarden/search"
	"github.com/poiesic/furrygarden/source"
)

// ErrNotInitialized is returned by queries made before Initialize completes.
var ErrNotInitialized = errors.New("catalog not initialized")

// Status describes the loaded corpus, so callers can tell an empty result
// from a failed load.
type Status struct {
	State    corpus.State
	Degraded bool
	Causes   map[core.Partition]error
	Size     int
	Dropped  int
}

// Catalog is the query façade over the plant corpus.
type Catalog struct {
	loader    *corpus.Loader
	indexOpts []search.IndexOption
	closers   []func() error
	logger    *slog.Logger

	buildOnce sync.Once
	buildErr  error
	index     atomic.Pointer[search.Index]
	result    atomic.Pointer[corpus.LoadResult]
}

type catalogOptions struct {
	logger     *slog.Logger
	loaderOpts []corpus.Option
	indexOpts  []search.IndexOption
	closers    []func() error
}

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogOptions) error

// WithLogger sets the logger used by the catalog, its loader and its index.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) CatalogOption {
	return func(o *catalogOptions) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithLoaderOptions passes options to the corpus loader.
func WithLoaderOptions(opts ...corpus.Option) CatalogOption {
	return func(o *catalogOptions) error {
		o.loaderOpts = append(o.loaderOpts, opts...)
		return nil
	}
}

// WithIndexOptions passes options to the search index.
func WithIndexOptions(opts ...search.IndexOption) CatalogOption {
	return func(o *catalogOptions) error {
		o.indexOpts = append(o.indexOpts, opts...)
		return nil
	}
}

// WithMetrics reports loading and search activity to m.
func WithMetrics(m *metrics.Metrics) CatalogOption {
	return func(o *catalogOptions) error {
		if m == nil {
			return nil
		}
		o.loaderOpts = append(o.loaderOpts, corpus.WithMonitor(m))
		o.indexOpts = append(o.indexOpts, search.WithMonitor(m))
		return nil
	}
}

// withCloser registers a resource released by Close.
func withCloser(fn func() error) CatalogOption {
	return func(o *catalogOptions) error {
		o.closers = append(o.closers, fn)
		return nil
	}
}

// NewCatalog creates a Catalog reading from src. Nothing is loaded until
// Initialize is called.
func NewCatalog(src source.Source, opts ...CatalogOption) (*Catalog, error) {
	options := &catalogOptions{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			runClosers(options.closers, options.logger)
			return nil, err
		}
	}

	loaderOpts := append([]corpus.Option{corpus.WithLogger(options.logger)}, options.loaderOpts...)
	indexOpts := append([]search.IndexOption{search.WithLogger(options.logger)}, options.indexOpts...)

	// Reject bad index options now rather than at Initialize.
	if _, err := search.Build(nil, indexOpts...); err != nil {
		runClosers(options.closers, options.logger)
		return nil, err
	}

	loader, err := corpus.NewLoader(src, loaderOpts...)
	if err != nil {
		runClosers(options.closers, options.logger)
		return nil, err
	}

	return &Catalog{
		loader:    loader,
		indexOpts: indexOpts,
		closers:   options.closers,
		logger:    options.logger,
	}, nil
}

// Initialize loads the corpus and builds the search index.
//
// It is idempotent and safe to call concurrently: every caller waits for the
// same load and the index is built once. Partition failures do not fail
// Initialize; they are reported by Status. The only error is ctx ending
// before the load completes.
func (c *Catalog) Initialize(ctx context.Context) error {
	result, err := c.loader.Load(ctx)
	if err != nil {
		return err
	}

	c.buildOnce.Do(func() {
		idx, err := search.Build(result.Corpus, c.indexOpts...)
		if err != nil {
			c.buildErr = err
			return
		}
		c.result.Store(result)
		c.index.Store(idx)
		if result.Degraded {
			c.logger.Warn("catalog ready with missing partitions", "records", idx.Len(), "failed", len(result.Causes))
		} else {
			c.logger.Debug("catalog ready", "records", idx.Len())
		}
	})
	return c.buildErr
}

// Search returns the records matching query, best first. A blank query
// returns the whole corpus in order.
func (c *Catalog) Search(query string) ([]core.SearchResult, error) {
	idx := c.index.Load()
	if idx == nil {
		return nil, ErrNotInitialized
	}
	return idx.Query(query)
}

// FilterBySafety keeps plants whose IsSafe equals *isSafe, in order.
// A nil isSafe returns plants unchanged.
func (c *Catalog) FilterBySafety(plants []core.Plant, isSafe *bool) []core.Plant {
	return core.FilterBySafety(plants, isSafe)
}

// All returns a copy of the corpus: safe plants first, then toxic.
func (c *Catalog) All() ([]core.Plant, error) {
	idx := c.index.Load()
	if idx == nil {
		return nil, ErrNotInitialized
	}
	return idx.Corpus(), nil
}

// Safe returns the pet-safe plants.
func (c *Catalog) Safe() ([]core.Plant, error) {
	return c.partition(true)
}

// Toxic returns the pet-toxic plants.
func (c *Catalog) Toxic() ([]core.Plant, error) {
	return c.partition(false)
}

func (c *Catalog) partition(isSafe bool) ([]core.Plant, error) {
	all, err := c.All()
	if err != nil {
		return nil, err
	}
	return core.FilterBySafety(all, &isSafe), nil
}

// Status reports the lifecycle stage and, once ready, what was loaded.
func (c *Catalog) Status() Status {
	result := c.result.Load()
	if result == nil {
		state := c.loader.State()
		if state == corpus.StateReady {
			// Loaded but the index is still being built.
			state = corpus.StateLoading
		}
		return Status{State: state, Causes: map[core.Partition]error{}}
	}

	return Status{
		State:    corpus.StateReady,
		Degraded: result.Degraded,
		Causes:   maps.Clone(result.Causes),
		Size:     len(result.Corpus),
		Dropped:  result.Dropped,
	}
}

// Close releases the loader's worker pool and any storage opened for the
// catalog. Queries keep working on the loaded corpus.
func (c *Catalog) Close() error {
	c.loader.Release()
	return runClosers(c.closers, c.logger)
}

func runClosers(closers []func() error, logger *slog.Logger) error {
	var errs []error
	for _, fn := range closers {
		if err := fn(); err != nil {
			logger.Error("error releasing catalog resource", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
