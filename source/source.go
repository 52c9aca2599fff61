package source

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/poiesic/furrygarden/core"
)

// Source provides the raw rows of a partition.
// Implementations must be safe for concurrent use.
type Source interface {
	Fetch(ctx context.Context, partition core.Partition) ([]core.RawRow, error)
}

// Static serves rows held in memory.
type Static struct {
	Safe  []core.RawRow
	Toxic []core.RawRow
}

var _ Source = (*Static)(nil)

// Fetch returns a copy of the partition's rows.
func (s *Static) Fetch(ctx context.Context, partition core.Partition) ([]core.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := core.ValidatePartition(partition); err != nil {
		return nil, err
	}

	rows := s.Safe
	if partition == core.PartitionToxic {
		rows = s.Toxic
	}
	out := make([]core.RawRow, len(rows))
	for i, row := range rows {
		out[i] = maps.Clone(row)
	}
	return out, nil
}

type options struct {
	format    Format
	logger    *slog.Logger
	client    *http.Client
	attempts  int
	baseDelay time.Duration
}

// Option configures a Dir or HTTP source.
type Option func(*options) error

// WithFormat selects the file format. Default is FormatCSV for HTTP sources;
// directory sources are fixed by their constructor unless overridden.
func WithFormat(format Format) Option {
	return func(o *options) error {
		if err := format.Validate(); err != nil {
			return err
		}
		o.format = format
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithClient sets the HTTP client used by HTTP sources.
func WithClient(client *http.Client) Option {
	return func(o *options) error {
		if client != nil {
			o.client = client
		}
		return nil
	}
}

// WithTimeout sets the per-request timeout of HTTP sources.
// Default is 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		o.client = &http.Client{Timeout: timeout}
		return nil
	}
}

// WithRetry sets how many times an HTTP fetch is attempted and the base delay
// between attempts, which doubles after each failure. Default is 1 attempt.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(o *options) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		o.attempts = attempts
		o.baseDelay = baseDelay
		return nil
	}
}

func newOptions(format Format, opts []Option) (*options, error) {
	o := &options{
		format:    format,
		logger:    slog.Default(),
		client:    &http.Client{Timeout: 30 * time.Second},
		attempts:  1,
		baseDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}
