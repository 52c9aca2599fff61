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

// Package source fetches the raw rows of each partition from wherever the
// prepared data lives.
//
// A Source returns the rows of one partition exactly as stored, without
// normalization. Implementations cover:
//
//   - Static: rows held in memory, for tests and embedding
//   - Dir: safe.json/toxic.json or safe.csv/toxic.csv in a local directory
//   - HTTP: the same files served from a base URL, with retry and backoff
//   - Store: a snapshot previously imported into BadgerDB
//
// Errors are wrapped with ErrUnavailable when the data could not be reached
// and ErrMalformed when it could not be parsed.
package source
