package core

import "fmt"

// ValidatePlant validates a Plant according to domain rules.
//
// Validation rules:
//   - At least one of CommonName or LatinName must be non-empty
//
// NOT validated:
//   - Family, LocalizedName, Link (free text, may be empty)
//   - IsSafe (assigned by provenance, never inferred)
func ValidatePlant(plant *Plant) error {
	if plant == nil {
		return fmt.Errorf("%w: plant is nil", ErrInvalidPlant)
	}

	if plant.CommonName == "" && plant.LatinName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPlant, ErrMissingNames)
	}

	return nil
}

// IsValid reports whether a plant passes the corpus validity gate.
func IsValid(plant *Plant) bool {
	return ValidatePlant(plant) == nil
}

// ValidatePartition validates that a Partition has a known value.
func ValidatePartition(p Partition) error {
	if p != PartitionSafe && p != PartitionToxic {
		return fmt.Errorf("%w: value %d", ErrInvalidPartition, p)
	}
	return nil
}
