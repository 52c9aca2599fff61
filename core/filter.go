package core

// FilterBySafety keeps plants whose IsSafe equals *isSafe.
// A nil flag returns the input unchanged. Order is preserved and the input
// slice is never modified.
func FilterBySafety(plants []Plant, isSafe *bool) []Plant {
	if isSafe == nil {
		return plants
	}
	filtered := make([]Plant, 0, len(plants))
	for _, plant := range plants {
		if plant.IsSafe == *isSafe {
			filtered = append(filtered, plant)
		}
	}
	return filtered
}

// Bool returns a pointer to b, for use as a FilterBySafety flag.
func Bool(b bool) *bool {
	return &b
}
