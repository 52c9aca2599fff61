// Package metrics provides Prometheus metrics for plant loading and search.
package metrics

import (
	"time"

	"github.com/poiesic/furrygarden/core"
	"github.com/poiesic/furrygarden/corpus"
	"github.com/poiesic/furrygarden/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "furrygarden"

// Metrics holds all Prometheus metrics. It implements both the search and
// corpus monitor hooks, so one value can be handed to each.
type Metrics struct {
	// Search metrics
	QueriesTotal      prometheus.Counter
	EmptyQueriesTotal prometheus.Counter
	NoResultQueries   prometheus.Counter
	FieldHitsTotal    *prometheus.CounterVec
	QueryDuration     prometheus.Histogram
	ResultsPerQuery   prometheus.Histogram

	// Corpus metrics
	LoadsTotal             prometheus.Counter
	LoadDuration           prometheus.Histogram
	PartitionRecords       *prometheus.GaugeVec
	PartitionDropped       *prometheus.GaugeVec
	PartitionFailuresTotal *prometheus.CounterVec
	CorpusRecords          prometheus.Gauge
	CorpusDegraded         prometheus.Gauge
}

var (
	_ search.SearchMonitor = (*Metrics)(nil)
	_ corpus.Monitor       = (*Metrics)(nil)
)

// NewMetrics creates all metrics and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	m := &Metrics{}

	// Search metrics
	m.QueriesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Total number of search queries",
		},
	)

	m.EmptyQueriesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_empty_queries_total",
			Help:      "Total number of blank queries answered with the whole corpus",
		},
	)

	m.NoResultQueries = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_no_result_queries_total",
			Help:      "Total number of queries that matched nothing",
		},
	)

	m.FieldHitsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_field_hits_total",
			Help:      "Total number of accepted field matches by field",
		},
		[]string{"field"},
	)

	m.QueryDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_query_duration_seconds",
			Help:      "Duration of search queries in seconds",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
	)

	m.ResultsPerQuery = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_per_query",
			Help:      "Number of results returned per query",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// Corpus metrics
	m.LoadsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corpus_loads_total",
			Help:      "Total number of corpus loads started",
		},
	)

	m.LoadDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "corpus_load_duration_seconds",
			Help:      "Duration of corpus loads in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	m.PartitionRecords = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_partition_records",
			Help:      "Number of records loaded per partition",
		},
		[]string{"partition"},
	)

	m.PartitionDropped = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_partition_dropped_rows",
			Help:      "Number of rows rejected by the validity gate per partition",
		},
		[]string{"partition"},
	)

	m.PartitionFailuresTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corpus_partition_failures_total",
			Help:      "Total number of partition fetch failures",
		},
		[]string{"partition"},
	)

	m.CorpusRecords = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_records",
			Help:      "Number of records in the loaded corpus",
		},
	)

	m.CorpusDegraded = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_degraded",
			Help:      "1 if the loaded corpus is missing a partition, 0 otherwise",
		},
	)

	return m
}

// Start implements search.SearchMonitor.
func (m *Metrics) Start(_ string) {
	m.QueriesTotal.Inc()
}

// EmptyQuery implements search.SearchMonitor.
func (m *Metrics) EmptyQuery() {
	m.EmptyQueriesTotal.Inc()
}

// FieldHit implements search.SearchMonitor.
func (m *Metrics) FieldHit(_ *core.Plant, match core.FieldMatch) {
	m.FieldHitsTotal.WithLabelValues(string(match.Field)).Inc()
}

// Finish implements search.SearchMonitor.
func (m *Metrics) Finish(_ string, results []core.SearchResult, elapsed time.Duration) {
	m.QueryDuration.Observe(elapsed.Seconds())
	m.ResultsPerQuery.Observe(float64(len(results)))
	if len(results) == 0 {
		m.NoResultQueries.Inc()
	}
}

// LoadStarted implements corpus.Monitor.
func (m *Metrics) LoadStarted() {
	m.LoadsTotal.Inc()
}

// PartitionLoaded implements corpus.Monitor.
func (m *Metrics) PartitionLoaded(partition core.Partition, records, dropped int, _ time.Duration) {
	m.PartitionRecords.WithLabelValues(partition.String()).Set(float64(records))
	m.PartitionDropped.WithLabelValues(partition.String()).Set(float64(dropped))
}

// PartitionFailed implements corpus.Monitor.
func (m *Metrics) PartitionFailed(partition core.Partition, _ error) {
	m.PartitionFailuresTotal.WithLabelValues(partition.String()).Inc()
	m.PartitionRecords.WithLabelValues(partition.String()).Set(0)
}

// LoadFinished implements corpus.Monitor.
func (m *Metrics) LoadFinished(result *corpus.LoadResult, elapsed time.Duration) {
	m.LoadDuration.Observe(elapsed.Seconds())
	m.CorpusRecords.Set(float64(len(result.Corpus)))
	if result.Degraded {
		m.CorpusDegraded.Set(1)
	} else {
		m.CorpusDegraded.Set(0)
	}
}
