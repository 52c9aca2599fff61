package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/furrygarden/core"
	"github.com/poiesic/furrygarden/source"
)

// State is the lifecycle stage of a Loader.
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// LoadResult is the outcome of a completed load.
// It is shared by every caller and must not be modified.
type LoadResult struct {
	// Corpus holds the safe partition followed by the toxic partition,
	// each in source order.
	Corpus []core.Plant

	// Degraded is true when at least one partition failed to load.
	Degraded bool

	// Causes maps each failed partition to its error.
	Causes map[core.Partition]error

	// Dropped counts rows rejected by the validity gate.
	Dropped int
}

// Loader loads the corpus once and shares the result.
type Loader struct {
	src     source.Source
	pool    *ants.Pool
	monitor Monitor
	logger  *slog.Logger

	mu     sync.Mutex
	state  State
	done   chan struct{} // closed when the in-flight load completes
	result *LoadResult
}

// Option configures a Loader.
type Option func(*Loader) error

// WithPoolSize sets the number of partitions fetched concurrently.
// Default is one worker per partition.
func WithPoolSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if l.pool != nil {
			l.pool.Release()
		}
		l.pool = pool
		return nil
	}
}

// WithMonitor attaches a Monitor to the load.
func WithMonitor(monitor Monitor) Option {
	return func(l *Loader) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		l.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a Loader reading from src.
func NewLoader(src source.Source, opts ...Option) (*Loader, error) {
	if src == nil {
		return nil, ErrSourceRequired
	}

	pool, err := ants.NewPool(len(core.Partitions))
	if err != nil {
		return nil, err
	}

	l := &Loader{
		src:     src,
		pool:    pool,
		monitor: &noopMonitor{},
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(l); optErr != nil {
			l.Release()
			return nil, optErr
		}
	}
	return l, nil
}

// State returns the current lifecycle stage.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Load returns the corpus, starting the load on first use.
//
// Concurrent callers share a single load and every caller sees the same
// LoadResult. The load runs detached from ctx; ctx only bounds how long this
// caller waits, and its error is the only error Load returns. Source
// failures are reported through LoadResult instead.
func (l *Loader) Load(ctx context.Context) (*LoadResult, error) {
	l.mu.Lock()
	switch l.state {
	case StateReady:
		result := l.result
		l.mu.Unlock()
		return result, nil
	case StateUninitialized:
		l.state = StateLoading
		l.done = make(chan struct{})
		go l.run(context.WithoutCancel(ctx))
	}
	done := l.done
	l.mu.Unlock()

	select {
	case <-done:
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release releases the worker pool. The cached result stays readable.
func (l *Loader) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}

type partitionOutcome struct {
	plants  []core.Plant
	dropped int
	err     error
}

func (l *Loader) run(ctx context.Context) {
	start := time.Now()
	l.monitor.LoadStarted()
	l.logger.Debug("loading corpus")

	outcomes := make([]partitionOutcome, len(core.Partitions))
	var wg sync.WaitGroup
	for i, partition := range core.Partitions {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			outcomes[i] = l.loadPartition(ctx, partition)
		}
		if err := l.pool.Submit(task); err != nil {
			l.logger.Warn("worker pool unavailable, loading inline", "partition", partition, "err", err)
			task()
		}
	}
	wg.Wait()

	result := &LoadResult{
		Corpus: make([]core.Plant, 0),
		Causes: make(map[core.Partition]error),
	}
	for i, partition := range core.Partitions {
		outcome := outcomes[i]
		if outcome.err != nil {
			result.Degraded = true
			result.Causes[partition] = outcome.err
			continue
		}
		result.Corpus = append(result.Corpus, outcome.plants...)
		result.Dropped += outcome.dropped
	}

	elapsed := time.Since(start)
	l.logger.Info("corpus loaded",
		"records", len(result.Corpus),
		"dropped", result.Dropped,
		"degraded", result.Degraded,
		"elapsed", elapsed)

	l.monitor.LoadFinished(result, elapsed)

	l.mu.Lock()
	l.result = result
	l.state = StateReady
	close(l.done)
	l.mu.Unlock()
}

func (l *Loader) loadPartition(ctx context.Context, partition core.Partition) (outcome partitionOutcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = partitionOutcome{err: fmt.Errorf("%w: %v", ErrFetchPanicked, r)}
		}
		if outcome.err != nil {
			l.logger.Error("partition unavailable, continuing without it", "partition", partition, "err", outcome.err)
			l.monitor.PartitionFailed(partition, outcome.err)
		}
	}()

	rows, err := l.src.Fetch(ctx, partition)
	if err != nil {
		return partitionOutcome{err: fmt.Errorf("fetch %s: %w", partition, err)}
	}

	plants, dropped := core.NormalizeRows(rows, partition.IsSafe())
	if dropped > 0 {
		l.logger.Debug("dropped invalid rows", "partition", partition, "dropped", dropped)
	}
	l.monitor.PartitionLoaded(partition, len(plants), dropped, time.Since(start))
	return partitionOutcome{plants: plants, dropped: dropped}
}
