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

package source

import "errors"

var (
	// ErrUnavailable is returned when a partition's data cannot be reached.
	ErrUnavailable = errors.New("partition data unavailable")

	// ErrMalformed is returned when a partition's data cannot be parsed.
	ErrMalformed = errors.New("partition data malformed")

	// ErrUnknownFormat is returned for an unsupported file format.
	ErrUnknownFormat = errors.New("unknown data format")

	// ErrInvalidMaxAttempts is returned when retry attempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrRepositoryRequired is returned when a store source has no repository.
	ErrRepositoryRequired = errors.New("plant repository is required")
)
