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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidPlant indicates a Plant failed validation.
	ErrInvalidPlant = errors.New("invalid plant")

	// ErrMissingNames indicates both the common and latin names are empty.
	ErrMissingNames = errors.New("common name and latin name are both empty")

	// ErrInvalidPartition indicates an unknown Partition value.
	ErrInvalidPartition = errors.New("invalid partition")
)
