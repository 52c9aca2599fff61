package furrygarden

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/furrygarden/config"
	"github.com/poiesic/furrygarden/core"
	"github.com/poiesic/furrygarden/search"
	"github.com/poiesic/furrygarden/source"
	"github.com/poiesic/furrygarden/storage/badger"
)

// NewCatalogFromConfig creates a Catalog whose source and search settings
// come from cfg. Options given here are applied after those derived from
// cfg. A store source opens its BadgerDB read-only and Close releases it.
func NewCatalogFromConfig(cfg *config.Config, opts ...CatalogOption) (*Catalog, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	probe := &catalogOptions{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(probe); err != nil {
			return nil, err
		}
	}
	logger := probe.logger

	indexOpts, err := indexOptionsFromConfig(&cfg.Search)
	if err != nil {
		return nil, err
	}

	src, closer, err := sourceFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	all := []CatalogOption{WithIndexOptions(indexOpts...)}
	if closer != nil {
		all = append(all, withCloser(closer))
	}
	all = append(all, opts...)
	return NewCatalog(src, all...)
}

func sourceFromConfig(root *config.Config, logger *slog.Logger) (source.Source, func() error, error) {
	cfg := &root.Source
	switch cfg.Kind {
	case config.SourceCSV:
		src, err := source.NewCSVDir(cfg.Dir, source.WithLogger(logger))
		return src, nil, err
	case config.SourceJSON:
		src, err := source.NewJSONDir(cfg.Dir, source.WithLogger(logger))
		return src, nil, err
	case config.SourceHTTP:
		src, err := source.NewHTTP(cfg.URL,
			source.WithFormat(source.Format(cfg.Format)),
			source.WithTimeout(root.Timeout()),
			source.WithRetry(cfg.Attempts, root.RetryDelay()),
			source.WithLogger(logger))
		return src, nil, err
	case config.SourceStore:
		backend, err := badger.OpenReadOnlyBackend(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open snapshot %s: %w", cfg.DBPath, err)
		}
		repo, err := badger.NewPlantRepository(backend)
		if err != nil {
			backend.Close()
			return nil, nil, err
		}
		src, err := source.NewStore(repo)
		if err != nil {
			backend.Close()
			return nil, nil, err
		}
		return src, backend.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown source kind %q", config.ErrInvalidConfig, cfg.Kind)
	}
}

func indexOptionsFromConfig(cfg *config.SearchConfig) ([]search.IndexOption, error) {
	var opts []search.IndexOption
	switch cfg.Matcher {
	case config.MatcherSubsequence:
		matcher, err := search.NewSubsequenceMatcher(cfg.Tolerance)
		if err != nil {
			return nil, err
		}
		opts = append(opts, search.WithMatcher(matcher))
	default:
		opts = append(opts, search.WithTolerance(cfg.Tolerance))
	}

	if len(cfg.Weights) > 0 {
		weights := make(map[core.Field]float64, len(cfg.Weights))
		for field, w := range cfg.Weights {
			weights[core.Field(field)] = w
		}
		opts = append(opts, search.WithFieldWeights(weights))
	}
	return opts, nil
}
