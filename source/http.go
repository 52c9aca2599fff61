package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/furrygarden/core"
)

// HTTP fetches partition files from a base URL, e.g.
// https://example.org/furry-garden/data/safe.csv.
type HTTP struct {
	baseURL   string
	format    Format
	client    *http.Client
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
}

var _ Source = (*HTTP)(nil)

// NewHTTP creates an HTTP source. CSV is fetched unless WithFormat says
// otherwise.
func NewHTTP(baseURL string, opts ...Option) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	o, err := newOptions(FormatCSV, opts)
	if err != nil {
		return nil, err
	}
	return &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		format:    o.format,
		client:    o.client,
		attempts:  o.attempts,
		baseDelay: o.baseDelay,
		logger:    o.logger,
	}, nil
}

// URL returns the address fetched for a partition.
func (h *HTTP) URL(partition core.Partition) string {
	return h.baseURL + "/" + h.format.FileName(partition)
}

// Fetch implements Source. Transport failures and non-2xx responses are
// retried; a body that fails to parse is not.
func (h *HTTP) Fetch(ctx context.Context, partition core.Partition) ([]core.RawRow, error) {
	if err := core.ValidatePartition(partition); err != nil {
		return nil, err
	}

	target := h.URL(partition)
	var body []byte
	err := RetryWithBackoff(ctx, h.logger, func() error {
		var err error
		body, err = h.get(ctx, target)
		return err
	}, h.attempts, h.baseDelay)
	if err != nil {
		return nil, err
	}

	decoded, err := Decode(h.format, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	if decoded.Skipped > 0 {
		h.logger.Warn("skipped malformed lines", "url", target, "skipped", decoded.Skipped)
	}
	h.logger.Debug("fetched partition", "url", target, "rows", len(decoded.Rows))
	return decoded.Rows, nil
}

func (h *HTTP) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrUnavailable, target, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrUnavailable, err)
	}
	return body, nil
}
