package search

import (
	"time"

	"github.com/poiesic/furrygarden/core"
)

// SearchMonitor provides hooks to observe queries against an Index.
// Implementations must be safe for concurrent use.
type SearchMonitor interface {
	Start(query string)
	EmptyQuery()
	FieldHit(plant *core.Plant, match core.FieldMatch)
	Finish(query string, results []core.SearchResult, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                          {}
func (n *noopMonitor) EmptyQuery()                                             {}
func (n *noopMonitor) FieldHit(_ *core.Plant, _ core.FieldMatch)               {}
func (n *noopMonitor) Finish(_ string, _ []core.SearchResult, _ time.Duration) {}
