package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/furrygarden/core"
)

// SnapshotInfo describes the last write of a partition.
type SnapshotInfo struct {
	Partition core.Partition
	Rows      int
	Checksum  core.ID // Content hash over the encoded rows, in order
	WrittenAt time.Time
}

// MarshalRawRow serializes a row to bytes.
// Keys are written in sorted order so equal rows encode identically.
func MarshalRawRow(row core.RawRow) []byte {
	keys := sortedKeys(row)
	size := varint.Int.Size(len(keys))
	for _, k := range keys {
		size += ord.String.Size(k) + ord.String.Size(row[k])
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(len(keys), buf)
	for _, k := range keys {
		n += ord.String.Marshal(k, buf[n:])
		n += ord.String.Marshal(row[k], buf[n:])
	}
	return buf
}

// UnmarshalRawRow deserializes a row from bytes.
func UnmarshalRawRow(data []byte) (core.RawRow, error) {
	count, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if count < 0 || count > len(data) {
		return nil, fmt.Errorf("%w: invalid field count %d", ErrSerializationFailed, count)
	}

	row := make(core.RawRow, count)
	for i := 0; i < count; i++ {
		if n >= len(data) {
			return nil, ErrTruncatedData
		}
		key, kn, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		n += kn
		if n >= len(data) {
			return nil, ErrTruncatedData
		}
		value, vn, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		n += vn
		row[key] = value
	}
	return row, nil
}

// MarshalSnapshotInfo serializes a SnapshotInfo to bytes.
func MarshalSnapshotInfo(info *SnapshotInfo) []byte {
	written := info.WrittenAt.UnixMicro()
	size := varint.Int.Size(int(info.Partition)) +
		varint.Int.Size(info.Rows) +
		varint.Uint64.Size(uint64(info.Checksum)) +
		varint.Int64.Size(written)

	buf := make([]byte, size)
	n := varint.Int.Marshal(int(info.Partition), buf)
	n += varint.Int.Marshal(info.Rows, buf[n:])
	n += varint.Uint64.Marshal(uint64(info.Checksum), buf[n:])
	varint.Int64.Marshal(written, buf[n:])
	return buf
}

// UnmarshalSnapshotInfo deserializes a SnapshotInfo from bytes.
func UnmarshalSnapshotInfo(data []byte) (*SnapshotInfo, error) {
	partition, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	rows, rn, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += rn
	checksum, cn, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += cn
	written, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	return &SnapshotInfo{
		Partition: core.Partition(partition),
		Rows:      rows,
		Checksum:  core.ID(checksum),
		WrittenAt: time.UnixMicro(written).UTC(),
	}, nil
}

// ChecksumRows computes the content hash of an ordered set of rows.
func ChecksumRows(rows []core.RawRow) core.ID {
	var encoded []byte
	for _, row := range rows {
		encoded = append(encoded, MarshalRawRow(row)...)
	}
	return core.IDFromContent(string(encoded))
}

func sortedKeys(row core.RawRow) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
