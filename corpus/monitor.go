package corpus

import (
	"time"

	"github.com/poiesic/furrygarden/core"
)

// Monitor provides hooks to observe corpus loading.
// Implementations must be safe for concurrent use.
type Monitor interface {
	LoadStarted()
	PartitionLoaded(partition core.Partition, records, dropped int, elapsed time.Duration)
	PartitionFailed(partition core.Partition, err error)
	LoadFinished(result *LoadResult, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) LoadStarted()                                                {}
func (n *noopMonitor) PartitionLoaded(_ core.Partition, _, _ int, _ time.Duration) {}
func (n *noopMonitor) PartitionFailed(_ core.Partition, _ error)                   {}
func (n *noopMonitor) LoadFinished(_ *LoadResult, _ time.Duration)                 {}
