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


package search

import "errors"

var (
	// ErrIndexNotBuilt is returned when querying an index that was never built.
	ErrIndexNotBuilt = errors.New("search index not built")

	// ErrInvalidTolerance is returned when a match tolerance is outside [0, 1].
	ErrInvalidTolerance = errors.New("tolerance must be between 0 and 1")

	// ErrInvalidWeight is returned when a field weight is negative.
	ErrInvalidWeight = errors.New("field weight cannot be negative")

	// ErrMatcherRequired is returned when a nil matcher is supplied.
	ErrMatcherRequired = errors.New("matcher required")
)
