// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the storage abstraction for prepared plant snapshots.
//
// A snapshot is the converter's output for one partition: the raw rows of the
// safe or toxic list, in source order. Snapshots are written ahead of time by
// the import tooling and only read at startup; the search corpus itself is
// never persisted.
//
// # Architecture
//
//   - PlantRepository: replace and read partition rows
//   - SnapshotInfo: row count, content checksum and write time of a partition
//   - MarshalRawRow / UnmarshalRawRow: binary row encoding (mus-go)
//
// The storage/badger sub-package implements PlantRepository on BadgerDB.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
