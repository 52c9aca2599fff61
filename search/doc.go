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


// Package search provides typo-tolerant, multi-field search over a plant corpus.
//
// An Index is built once from a corpus and queried concurrently. Four fields
// are indexed per plant:
//   - common name
//   - each additional name, individually
//   - latin name
//   - localized name
//
// Queries and field values are folded (lower-cased, diacritics removed)
// before matching. Matching itself sits behind the Matcher interface:
// EditMatcher scores approximate substrings by edit distance and is the
// default, SubsequenceMatcher accepts in-order character subsequences.
//
// Results are ranked by ascending match distance with ties kept in corpus
// order, and carry per-field match spans for highlighting.
package search
