package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/furrygarden/core"
)

// Key prefixes for different data types
const (
	plantRowPrefix   = "plrow"
	snapshotPrefix   = "plsnap"
	rowSequenceWidth = 4 // bytes for the big-endian row position
)

// makePartialRowKey generates the prefix shared by all rows of a partition.
// Format: prefix:partition:
func makePartialRowKey(partition core.Partition) []byte {
	return []byte(fmt.Sprintf("%s:%d:", plantRowPrefix, partition))
}

// makeRowKey generates a key for a row at a position within a partition.
// Format: prefix:partition:position
func makeRowKey(partition core.Partition, position int) []byte {
	prefix := makePartialRowKey(partition)
	buf := make([]byte, len(prefix)+rowSequenceWidth)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort matches row order
	binary.BigEndian.PutUint32(buf[offset:], uint32(position))
	return buf
}

// makeSnapshotKey generates a key for partition snapshot metadata.
func makeSnapshotKey(partition core.Partition) []byte {
	return []byte(fmt.Sprintf("%s:%d", snapshotPrefix, partition))
}
