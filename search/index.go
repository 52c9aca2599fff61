package search

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/furrygarden/core"
)

// entry is one indexed field value of one corpus record.
type entry struct {
	field      core.Field
	valueIndex int
	value      string
	folded     foldedText
	weight     float64
}

// Index is an immutable fuzzy index over a plant corpus.
// It is safe for concurrent queries once built.
type Index struct {
	corpus  []core.Plant
	entries [][]entry // entries[i] belongs to corpus[i]
	matcher Matcher
	monitor SearchMonitor
	logger  *slog.Logger
}

type indexOptions struct {
	matcher   Matcher
	tolerance float64
	weights   map[core.Field]float64
	monitor   SearchMonitor
	logger    *slog.Logger
}

// IndexOption configures an Index.
type IndexOption func(*indexOptions) error

// WithMatcher replaces the default EditMatcher.
func WithMatcher(matcher Matcher) IndexOption {
	return func(o *indexOptions) error {
		if matcher == nil {
			return ErrMatcherRequired
		}
		o.matcher = matcher
		return nil
	}
}

// WithTolerance sets the tolerance of the default matcher.
// Default is DefaultTolerance. Ignored when WithMatcher is used.
func WithTolerance(tolerance float64) IndexOption {
	return func(o *indexOptions) error {
		if err := validateTolerance(tolerance); err != nil {
			return err
		}
		o.tolerance = tolerance
		return nil
	}
}

// WithFieldWeights overrides per-field weights. Fields default to 1.0.
// A weight of zero removes the field from text matching.
func WithFieldWeights(weights map[core.Field]float64) IndexOption {
	return func(o *indexOptions) error {
		for field, w := range weights {
			if w < 0 {
				return ErrInvalidWeight
			}
			o.weights[field] = w
		}
		return nil
	}
}

// WithMonitor attaches a SearchMonitor to every query.
func WithMonitor(monitor SearchMonitor) IndexOption {
	return func(o *indexOptions) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		o.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) IndexOption {
	return func(o *indexOptions) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// Build indexes commonName, additionalNames, latinName and localizedName of
// every plant in corpus. The corpus is copied; later changes to the caller's
// slice are not observed.
func Build(corpus []core.Plant, opts ...IndexOption) (*Index, error) {
	options := &indexOptions{
		tolerance: DefaultTolerance,
		weights:   make(map[core.Field]float64, len(core.IndexedFields)),
		monitor:   &noopMonitor{},
		logger:    slog.Default(),
	}
	for _, field := range core.IndexedFields {
		options.weights[field] = 1.0
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	matcher := options.matcher
	if matcher == nil {
		var err error
		matcher, err = NewEditMatcher(options.tolerance)
		if err != nil {
			return nil, err
		}
	}

	idx := &Index{
		corpus:  make([]core.Plant, len(corpus)),
		entries: make([][]entry, len(corpus)),
		matcher: matcher,
		monitor: options.monitor,
		logger:  options.logger,
	}

	values := 0
	for i := range corpus {
		plant := clonePlant(&corpus[i])
		plant.Matches = nil
		idx.corpus[i] = plant

		for _, field := range core.IndexedFields {
			weight := options.weights[field]
			if weight == 0 {
				continue
			}
			for vi, value := range plant.Values(field) {
				if isBlank(value) {
					continue
				}
				idx.entries[i] = append(idx.entries[i], entry{
					field:      field,
					valueIndex: vi,
					value:      value,
					folded:     foldText(value),
					weight:     weight,
				})
				values++
			}
		}
	}

	idx.logger.Debug("built search index", "records", len(idx.corpus), "values", values)
	return idx, nil
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.corpus)
}

// Corpus returns a copy of the indexed records in corpus order.
func (idx *Index) Corpus() []core.Plant {
	if idx == nil {
		return nil
	}
	out := make([]core.Plant, len(idx.corpus))
	for i := range idx.corpus {
		out[i] = clonePlant(&idx.corpus[i])
	}
	return out
}

// Query returns records matching text, best match first.
//
// A blank query bypasses the matcher and returns every record in corpus
// order without match metadata. Otherwise a record's score is its best
// weighted field score; records without an accepted field are omitted and
// equal scores keep corpus order. Each result holds a copy of the record
// whose Matches lists the accepted fields, best first.
func (idx *Index) Query(text string) ([]core.SearchResult, error) {
	if idx == nil || idx.matcher == nil {
		return nil, ErrIndexNotBuilt
	}

	start := time.Now()
	idx.monitor.Start(text)

	if isBlank(text) {
		idx.monitor.EmptyQuery()
		results := make([]core.SearchResult, len(idx.corpus))
		for i := range idx.corpus {
			results[i] = core.SearchResult{
				Plant:    clonePlant(&idx.corpus[i]),
				Position: i,
			}
		}
		idx.monitor.Finish(text, results, time.Since(start))
		return results, nil
	}

	pattern := foldText(strings.TrimSpace(text)).runes
	results := make([]core.SearchResult, 0)
	for i := range idx.corpus {
		var matches []core.FieldMatch
		best := -1.0
		for _, e := range idx.entries[i] {
			score, spans, ok := idx.matcher.Match(pattern, e.folded.runes)
			if !ok {
				continue
			}
			weighted := score / e.weight
			if weighted > 1 {
				weighted = 1
			}
			match := core.FieldMatch{
				Field:      e.field,
				Value:      e.value,
				ValueIndex: e.valueIndex,
				Spans:      e.folded.toOriginal(spans),
				Score:      weighted,
			}
			matches = append(matches, match)
			idx.monitor.FieldHit(&idx.corpus[i], match)
			if best < 0 || weighted < best {
				best = weighted
			}
		}
		if matches == nil {
			continue
		}

		slices.SortStableFunc(matches, func(a, b core.FieldMatch) int {
			return compareScores(a.Score, b.Score)
		})
		plant := clonePlant(&idx.corpus[i])
		plant.Matches = matches
		results = append(results, core.SearchResult{
			Plant:    plant,
			Position: i,
			Score:    best,
		})
	}

	slices.SortStableFunc(results, func(a, b core.SearchResult) int {
		return compareScores(a.Score, b.Score)
	})

	elapsed := time.Since(start)
	idx.logger.Debug("search query", "query", text, "hits", len(results), "elapsed", elapsed)
	idx.monitor.Finish(text, results, elapsed)
	return results, nil
}

// toOriginal maps spans over folded runes back to rune offsets of the
// original value.
func (f foldedText) toOriginal(spans []core.Span) []core.Span {
	out := make([]core.Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 || s.End >= len(f.origin) || s.Start > s.End {
			continue
		}
		mapped := core.Span{Start: f.origin[s.Start], End: f.origin[s.End]}
		if n := len(out); n > 0 && out[n-1].End >= mapped.Start-1 {
			if mapped.End > out[n-1].End {
				out[n-1].End = mapped.End
			}
			continue
		}
		out = append(out, mapped)
	}
	return out
}

func compareScores(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// clonePlant copies a plant so results never share slices with the corpus.
func clonePlant(p *core.Plant) core.Plant {
	out := *p
	out.AdditionalNames = slices.Clone(p.AdditionalNames)
	out.Matches = slices.Clone(p.Matches)
	return out
}
