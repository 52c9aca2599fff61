package search

import (
	"github.com/poiesic/furrygarden/core"
	"github.com/sahilm/fuzzy"
)

// DefaultTolerance is the highest accepted match distance.
// It admits roughly three edits per ten pattern characters.
const DefaultTolerance = 0.3

// Matcher scores a folded pattern against a folded field value.
// Implementations must be safe for concurrent use.
type Matcher interface {
	// Match returns the match distance in [0, 1] (lower is better), the rune
	// spans of text that produced it, and whether the distance is within
	// the matcher's tolerance.
	Match(pattern, text []rune) (score float64, spans []core.Span, ok bool)
}

// EditMatcher performs approximate substring matching: the score is the
// minimum number of edits turning the pattern into any substring of the
// text, divided by the pattern length. Where the substring sits in the text
// does not affect the score.
type EditMatcher struct {
	tolerance float64
}

var _ Matcher = (*EditMatcher)(nil)

// NewEditMatcher creates an EditMatcher accepting scores up to tolerance.
func NewEditMatcher(tolerance float64) (*EditMatcher, error) {
	if err := validateTolerance(tolerance); err != nil {
		return nil, err
	}
	return &EditMatcher{tolerance: tolerance}, nil
}

// Match implements Matcher.
func (m *EditMatcher) Match(pattern, text []rune) (float64, []core.Span, bool) {
	plen, tlen := len(pattern), len(text)
	if plen == 0 || tlen == 0 {
		return 1, nil, false
	}

	// prev/curr hold edit distances for pattern[:i] ending at text[:j];
	// the start columns track where each alignment began in text.
	prev := make([]int, tlen+1)
	curr := make([]int, tlen+1)
	prevStart := make([]int, tlen+1)
	currStart := make([]int, tlen+1)
	for j := 0; j <= tlen; j++ {
		prev[j] = 0
		prevStart[j] = j
	}

	for i := 1; i <= plen; i++ {
		curr[0] = i
		currStart[0] = 0
		for j := 1; j <= tlen; j++ {
			cost := 1
			if pattern[i-1] == text[j-1] {
				cost = 0
			}
			// Prefer the diagonal so spans cover aligned characters.
			best, start := prev[j-1]+cost, prevStart[j-1]
			if d := prev[j] + 1; d < best {
				best, start = d, prevStart[j]
			}
			if d := curr[j-1] + 1; d < best {
				best, start = d, currStart[j-1]
			}
			curr[j] = best
			currStart[j] = start
		}
		prev, curr = curr, prev
		prevStart, currStart = currStart, prevStart
	}

	bestEnd := -1
	for j := 1; j <= tlen; j++ {
		if prevStart[j] >= j {
			continue // empty substring
		}
		if bestEnd < 0 || prev[j] < prev[bestEnd] {
			bestEnd = j
		}
	}
	if bestEnd < 0 {
		return 1, nil, false
	}

	score := float64(prev[bestEnd]) / float64(plen)
	if score > 1 {
		score = 1
	}
	if score > m.tolerance {
		return score, nil, false
	}
	return score, []core.Span{{Start: prevStart[bestEnd], End: bestEnd - 1}}, true
}

// SubsequenceMatcher matches when every pattern character appears in order
// in the text. The score is the fraction of gap characters inside the
// matched window, so contiguous matches score 0.
type SubsequenceMatcher struct {
	tolerance float64
}

var _ Matcher = (*SubsequenceMatcher)(nil)

// NewSubsequenceMatcher creates a SubsequenceMatcher accepting scores up to tolerance.
func NewSubsequenceMatcher(tolerance float64) (*SubsequenceMatcher, error) {
	if err := validateTolerance(tolerance); err != nil {
		return nil, err
	}
	return &SubsequenceMatcher{tolerance: tolerance}, nil
}

// Match implements Matcher.
func (m *SubsequenceMatcher) Match(pattern, text []rune) (float64, []core.Span, bool) {
	if len(pattern) == 0 || len(text) == 0 {
		return 1, nil, false
	}

	str := string(text)
	matches := fuzzy.Find(string(pattern), []string{str})
	if len(matches) == 0 || len(matches[0].MatchedIndexes) == 0 {
		return 1, nil, false
	}

	// MatchedIndexes are byte offsets; convert them to rune offsets.
	runeAt := make(map[int]int, len(text))
	ri := 0
	for bi := range str {
		runeAt[bi] = ri
		ri++
	}

	indexes := matches[0].MatchedIndexes
	first := runeAt[indexes[0]]
	last := runeAt[indexes[len(indexes)-1]]
	window := last - first + 1
	score := float64(window-len(indexes)) / float64(window)
	if score > m.tolerance {
		return score, nil, false
	}

	spans := make([]core.Span, 0, 1)
	for _, bi := range indexes {
		r := runeAt[bi]
		if n := len(spans); n > 0 && spans[n-1].End == r-1 {
			spans[n-1].End = r
			continue
		}
		spans = append(spans, core.Span{Start: r, End: r})
	}
	return score, spans, true
}

func validateTolerance(tolerance float64) error {
	if tolerance < 0 || tolerance > 1 {
		return ErrInvalidTolerance
	}
	return nil
}
