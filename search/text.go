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

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/unicode/norm"
)

// Letters that carry no combining mark under NFD but still need an ASCII
// base for accent-insensitive matching.
var baseLetters = map[rune]rune{
	'ł': 'l', 'Ł': 'l',
	'ø': 'o', 'Ø': 'o',
	'đ': 'd', 'Đ': 'd',
	'ı': 'i',
}

var combiningMarks = runes.In(unicode.Mn)

// foldedText is a case- and accent-folded rendering of a value.
// origin[i] is the rune offset in the original value that produced runes[i].
type foldedText struct {
	runes  []rune
	origin []int
}

// foldText lowercases s and strips diacritics one rune at a time so that
// match positions can be mapped back onto the original value.
func foldText(s string) foldedText {
	src := []rune(s)
	out := foldedText{
		runes:  make([]rune, 0, len(src)),
		origin: make([]int, 0, len(src)),
	}
	for i, r := range src {
		if base, ok := baseLetters[r]; ok {
			out.runes = append(out.runes, base)
			out.origin = append(out.origin, i)
			continue
		}
		for _, d := range norm.NFD.String(string(r)) {
			if combiningMarks.Contains(d) {
				continue
			}
			out.runes = append(out.runes, unicode.ToLower(d))
			out.origin = append(out.origin, i)
		}
	}
	return out
}

// Fold returns the case- and accent-insensitive form of s used for matching.
func Fold(s string) string {
	return string(foldText(s).runes)
}

// isBlank reports whether a query has no searchable content.
func isBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}
