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

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for plant records.
// It is derived from record content so the same row always hashes the same.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Partition identifies one of the two curated input lists.
type Partition int

const (
	// PartitionSafe holds plants that are safe for pets.
	PartitionSafe Partition = iota + 1
	// PartitionToxic holds plants that are toxic to pets.
	PartitionToxic
)

// Partitions lists every partition in corpus order.
var Partitions = []Partition{PartitionSafe, PartitionToxic}

// IsSafe returns the safety tag assigned to rows loaded from this partition.
func (p Partition) IsSafe() bool {
	return p == PartitionSafe
}

func (p Partition) String() string {
	switch p {
	case PartitionSafe:
		return "safe"
	case PartitionToxic:
		return "toxic"
	default:
		return "unknown"
	}
}

// Raw row keys as written by the CSV converter.
const (
	KeyCommonName      = "common_name"
	KeyAdditionalNames = "additional_names"
	KeyLatinName       = "latin_name"
	KeyFamily          = "family"
	KeyPolishName      = "polish_name"
	KeyLocalizedName   = "localized_name"
	KeyLink            = "link"
)

// RawRow is a single untyped input row keyed by column name.
type RawRow map[string]string

// Plant is the canonical plant record.
// Values are never mutated once they are part of a corpus.
type Plant struct {
	CommonName      string
	AdditionalNames []string
	LatinName       string
	Family          string
	LocalizedName   string
	Link            string
	IsSafe          bool
	Matches         []FieldMatch // Populated on search results only
}

// ID returns the content-derived identity of the plant.
// Match metadata does not take part in identity.
func (p *Plant) ID() ID {
	partition := PartitionToxic
	if p.IsSafe {
		partition = PartitionSafe
	}
	return IDFromContent(partition.String() + "\x00" + p.LatinName + "\x00" + p.CommonName)
}

// Field names an indexed text field of a Plant.
type Field string

const (
	FieldCommonName      Field = "common_name"
	FieldAdditionalNames Field = "additional_names"
	FieldLatinName       Field = "latin_name"
	FieldLocalizedName   Field = "localized_name"
)

// IndexedFields lists the fields searched by text queries.
var IndexedFields = []Field{FieldCommonName, FieldAdditionalNames, FieldLatinName, FieldLocalizedName}

// Values returns the text values a plant exposes for the given field.
// AdditionalNames yields one value per synonym.
func (p *Plant) Values(field Field) []string {
	switch field {
	case FieldCommonName:
		return []string{p.CommonName}
	case FieldAdditionalNames:
		return p.AdditionalNames
	case FieldLatinName:
		return []string{p.LatinName}
	case FieldLocalizedName:
		return []string{p.LocalizedName}
	default:
		return nil
	}
}

// Span is an inclusive rune range within a matched value.
type Span struct {
	Start int
	End   int
}

// FieldMatch records which field value matched a query and where.
type FieldMatch struct {
	Field      Field
	Value      string
	ValueIndex int // Synonym position for additional_names, 0 otherwise
	Spans      []Span
	Score      float64
}

// SearchResult pairs a plant with its corpus position and relevance.
// Score is a match distance: 0 is a perfect match, 1 the worst.
type SearchResult struct {
	Plant    Plant
	Position int
	Score    float64
}
