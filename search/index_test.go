package search

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/furrygarden/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basilAndLily() []core.Plant {
	return []core.Plant{
		{CommonName: "Basil", AdditionalNames: []string{}, LatinName: "Ocimum basilicum", Family: "Lamiaceae", IsSafe: true},
		{CommonName: "Lily", AdditionalNames: []string{}, LatinName: "Lilium", Family: "Liliaceae", IsSafe: false},
	}
}

func gardenCorpus() []core.Plant {
	return []core.Plant{
		{
			CommonName:      "Spider Plant",
			AdditionalNames: []string{"Ribbon Plant", "Airplane Plant"},
			LatinName:       "Chlorophytum comosum",
			Family:          "Asparagaceae",
			LocalizedName:   "Zielistka Sternberga",
			IsSafe:          true,
		},
		{
			CommonName:      "Moss Rise",
			AdditionalNames: []string{},
			LatinName:       "Bryum",
			IsSafe:          true,
		},
		{
			CommonName:      "Rose",
			AdditionalNames: []string{},
			LatinName:       "Rosa",
			Family:          "Rosaceae",
			IsSafe:          true,
		},
		{
			CommonName:      "Peace Lily",
			AdditionalNames: []string{},
			LatinName:       "Spathiphyllum",
			LocalizedName:   "Skrzydłokwiat",
			IsSafe:          false,
		},
	}
}

func TestBuild(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		idx, err := Build(basilAndLily())
		require.NoError(t, err)
		assert.Equal(t, 2, idx.Len())
	})

	t.Run("empty corpus", func(t *testing.T) {
		idx, err := Build(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, idx.Len())

		results, err := idx.Query("basil")
		require.NoError(t, err)
		assert.Empty(t, results)

		results, err = idx.Query("")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("invalid tolerance", func(t *testing.T) {
		_, err := Build(basilAndLily(), WithTolerance(1.2))
		assert.Equal(t, ErrInvalidTolerance, err)
	})

	t.Run("nil matcher", func(t *testing.T) {
		_, err := Build(basilAndLily(), WithMatcher(nil))
		assert.Equal(t, ErrMatcherRequired, err)
	})

	t.Run("negative weight", func(t *testing.T) {
		_, err := Build(basilAndLily(), WithFieldWeights(map[core.Field]float64{core.FieldLatinName: -1}))
		assert.Equal(t, ErrInvalidWeight, err)
	})

	t.Run("nil logger and monitor fall back to defaults", func(t *testing.T) {
		idx, err := Build(basilAndLily(), WithLogger(nil), WithMonitor(nil))
		require.NoError(t, err)
		assert.NotNil(t, idx)
	})

	t.Run("corpus is copied", func(t *testing.T) {
		corpus := basilAndLily()
		idx, err := Build(corpus)
		require.NoError(t, err)

		corpus[0].CommonName = "Changed"
		assert.Equal(t, "Basil", idx.Corpus()[0].CommonName)
	})
}

func TestQuery_NotBuilt(t *testing.T) {
	var idx *Index
	_, err := idx.Query("basil")
	assert.Equal(t, ErrIndexNotBuilt, err)
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Corpus())
}

func TestQuery_BasilAndLily(t *testing.T) {
	idx, err := Build(basilAndLily())
	require.NoError(t, err)

	t.Run("basi", func(t *testing.T) {
		results, err := idx.Query("basi")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Basil", results[0].Plant.CommonName)
		assert.Equal(t, 0, results[0].Position)
		assert.InDelta(t, 0, results[0].Score, 1e-9)

		require.NotEmpty(t, results[0].Plant.Matches)
		first := results[0].Plant.Matches[0]
		assert.Equal(t, core.FieldCommonName, first.Field)
		assert.Equal(t, "Basil", first.Value)
		assert.Equal(t, []core.Span{{Start: 0, End: 3}}, first.Spans)
	})

	t.Run("lily", func(t *testing.T) {
		results, err := idx.Query("lily")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Lily", results[0].Plant.CommonName)
		assert.Equal(t, 1, results[0].Position)
		assert.False(t, results[0].Plant.IsSafe)
	})

	t.Run("zzz", func(t *testing.T) {
		results, err := idx.Query("zzz")
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("case and surrounding whitespace", func(t *testing.T) {
		results, err := idx.Query("  LILY ")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Lily", results[0].Plant.CommonName)
	})

	t.Run("typo tolerated", func(t *testing.T) {
		results, err := idx.Query("bazil")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Basil", results[0].Plant.CommonName)
		assert.InDelta(t, 0.2, results[0].Score, 1e-9)
	})

	t.Run("family is not indexed", func(t *testing.T) {
		results, err := idx.Query("lamiaceae")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestQuery_EmptyQueryReturnsCorpus(t *testing.T) {
	corpus := gardenCorpus()
	idx, err := Build(corpus)
	require.NoError(t, err)

	for _, q := range []string{"", "   ", "\t\n"} {
		results, err := idx.Query(q)
		require.NoError(t, err)
		require.Len(t, results, len(corpus))
		for i, r := range results {
			assert.Equal(t, i, r.Position)
			assert.Equal(t, corpus[i].CommonName, r.Plant.CommonName)
			assert.Nil(t, r.Plant.Matches)
			assert.Zero(t, r.Score)
		}
	}
}

func TestQuery_EmptyQueryBypassesMatcher(t *testing.T) {
	matcher := &countingMatcher{}
	idx, err := Build(gardenCorpus(), WithMatcher(matcher))
	require.NoError(t, err)

	_, err = idx.Query("   ")
	require.NoError(t, err)
	assert.Equal(t, int64(0), matcher.calls.Load())

	_, err = idx.Query("rose")
	require.NoError(t, err)
	assert.Positive(t, matcher.calls.Load())
}

func TestQuery_RankingByDistance(t *testing.T) {
	idx, err := Build(gardenCorpus())
	require.NoError(t, err)

	results, err := idx.Query("rose")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Exact match outranks the earlier, one-edit match.
	assert.Equal(t, "Rose", results[0].Plant.CommonName)
	assert.Equal(t, "Moss Rise", results[1].Plant.CommonName)
	assert.Less(t, results[0].Score, results[1].Score)
	assert.InDelta(t, 0.25, results[1].Score, 1e-9)
}

func TestQuery_StableUnderTies(t *testing.T) {
	corpus := []core.Plant{
		{CommonName: "Fern Zeta", IsSafe: true},
		{CommonName: "Fern Alpha", IsSafe: false},
		{CommonName: "Fern Mid", IsSafe: true},
	}
	idx, err := Build(corpus)
	require.NoError(t, err)

	results, err := idx.Query("fern")
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.Position)
		assert.Equal(t, corpus[i].CommonName, r.Plant.CommonName)
	}
}

func TestQuery_AdditionalNamesMatchIndividually(t *testing.T) {
	idx, err := Build(gardenCorpus())
	require.NoError(t, err)

	results, err := idx.Query("airplane")
	require.NoError(t, err)
	require.Len(t, results, 1)

	matches := results[0].Plant.Matches
	require.Len(t, matches, 1)
	assert.Equal(t, core.FieldAdditionalNames, matches[0].Field)
	assert.Equal(t, 1, matches[0].ValueIndex)
	assert.Equal(t, "Airplane Plant", matches[0].Value)
	assert.Equal(t, []core.Span{{Start: 0, End: 7}}, matches[0].Spans)
}

func TestQuery_LocalizedNameWithoutDiacritics(t *testing.T) {
	idx, err := Build(gardenCorpus())
	require.NoError(t, err)

	results, err := idx.Query("skrzydlokwiat")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Peace Lily", results[0].Plant.CommonName)

	match := results[0].Plant.Matches[0]
	assert.Equal(t, core.FieldLocalizedName, match.Field)
	assert.Equal(t, []core.Span{{Start: 0, End: 12}}, match.Spans)
}

func TestQuery_FieldWeights(t *testing.T) {
	t.Run("zero weight removes field", func(t *testing.T) {
		idx, err := Build(basilAndLily(), WithFieldWeights(map[core.Field]float64{core.FieldLatinName: 0}))
		require.NoError(t, err)

		results, err := idx.Query("ocimum")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("heavier field ranks first", func(t *testing.T) {
		corpus := []core.Plant{
			{CommonName: "Bazil", LatinName: "Unrelated"},
			{CommonName: "Unrelated", LatinName: "Bazil"},
		}
		idx, err := Build(corpus, WithFieldWeights(map[core.Field]float64{core.FieldLatinName: 2}))
		require.NoError(t, err)

		results, err := idx.Query("basil")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, 1, results[0].Position)
		assert.InDelta(t, 0.1, results[0].Score, 1e-9)
		assert.InDelta(t, 0.2, results[1].Score, 1e-9)
	})
}

func TestQuery_ResultsDoNotAliasCorpus(t *testing.T) {
	idx, err := Build(gardenCorpus())
	require.NoError(t, err)

	results, err := idx.Query("ribbon")
	require.NoError(t, err)
	require.Len(t, results, 1)

	results[0].Plant.AdditionalNames[0] = "Mutated"
	results[0].Plant.CommonName = "Mutated"

	corpus := idx.Corpus()
	assert.Equal(t, "Ribbon Plant", corpus[0].AdditionalNames[0])
	assert.Equal(t, "Spider Plant", corpus[0].CommonName)
	assert.Nil(t, corpus[0].Matches)
}

func TestQuery_SubsequenceMatcher(t *testing.T) {
	matcher, err := NewSubsequenceMatcher(DefaultTolerance)
	require.NoError(t, err)
	idx, err := Build(basilAndLily(), WithMatcher(matcher))
	require.NoError(t, err)

	results, err := idx.Query("basi")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Basil", results[0].Plant.CommonName)
}

func TestQuery_Concurrent(t *testing.T) {
	idx, err := Build(gardenCorpus())
	require.NoError(t, err)

	queries := []string{"rose", "plant", "lily", "", "skrzydlokwiat", "zzz"}
	expected := make(map[string][]core.SearchResult, len(queries))
	for _, q := range queries {
		results, err := idx.Query(q)
		require.NoError(t, err)
		expected[q] = results
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := queries[i%len(queries)]
			results, err := idx.Query(q)
			assert.NoError(t, err)
			assert.Equal(t, expected[q], results)
		}(i)
	}
	wg.Wait()
}

func TestQuery_Monitor(t *testing.T) {
	monitor := &recordingMonitor{}
	idx, err := Build(basilAndLily(), WithMonitor(monitor))
	require.NoError(t, err)

	_, err = idx.Query("basi")
	require.NoError(t, err)
	_, err = idx.Query("")
	require.NoError(t, err)

	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	assert.Equal(t, []string{"basi", ""}, monitor.started)
	assert.Equal(t, 1, monitor.empty)
	assert.Equal(t, 2, monitor.hits) // common name and latin name
	assert.Equal(t, []int{1, 2}, monitor.finished)
}

type countingMatcher struct {
	calls atomic.Int64
}

func (m *countingMatcher) Match(pattern, text []rune) (float64, []core.Span, bool) {
	m.calls.Add(1)
	return 1, nil, false
}

type recordingMonitor struct {
	mu       sync.Mutex
	started  []string
	empty    int
	hits     int
	finished []int
}

func (m *recordingMonitor) Start(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, query)
}

func (m *recordingMonitor) EmptyQuery() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.empty++
}

func (m *recordingMonitor) FieldHit(_ *core.Plant, _ core.FieldMatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *recordingMonitor) Finish(_ string, results []core.SearchResult, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = append(m.finished, len(results))
}
