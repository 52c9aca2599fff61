package core

import "strings"

// Normalize converts a raw input row into a canonical Plant.
//
// Missing keys become empty strings, key lookup ignores case and surrounding
// whitespace, and additional_names is split on commas with each entry trimmed
// and empty entries dropped. The result is not validated; callers filter with
// IsValid.
func Normalize(raw RawRow, isSafe bool) Plant {
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, exists := fields[key]; exists && k != key {
			// An exact snake-case key wins over a differently-cased duplicate
			continue
		}
		fields[key] = v
	}

	localized := cleanValue(fields[KeyPolishName])
	if localized == "" {
		localized = cleanValue(fields[KeyLocalizedName])
	}

	return Plant{
		CommonName:      cleanValue(fields[KeyCommonName]),
		AdditionalNames: SplitNames(fields[KeyAdditionalNames]),
		LatinName:       cleanValue(fields[KeyLatinName]),
		Family:          cleanValue(fields[KeyFamily]),
		LocalizedName:   localized,
		Link:            cleanValue(fields[KeyLink]),
		IsSafe:          isSafe,
	}
}

// SplitNames splits a comma-joined list of names, trimming each entry and
// discarding empty ones. Order is preserved. Never returns nil.
func SplitNames(joined string) []string {
	names := []string{}
	joined = cleanValue(joined)
	if joined == "" {
		return names
	}
	for _, part := range strings.Split(joined, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// cleanValue trims whitespace and one level of enclosing double quotes left
// behind by naive CSV exports.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = strings.TrimSpace(v[1 : len(v)-1])
	}
	return v
}

// NormalizeRows normalizes a partition of rows and applies the validity gate.
// It returns the retained plants and the number of rows dropped.
func NormalizeRows(rows []RawRow, isSafe bool) ([]Plant, int) {
	plants := make([]Plant, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		plant := Normalize(row, isSafe)
		if !IsValid(&plant) {
			dropped++
			continue
		}
		plants = append(plants, plant)
	}
	return plants, dropped
}
