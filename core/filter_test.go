package core

import (
	"reflect"
	"testing"
)

func testPlants() []Plant {
	return []Plant{
		{CommonName: "Basil", IsSafe: true},
		{CommonName: "Lily", IsSafe: false},
		{CommonName: "Calathea", IsSafe: true},
		{CommonName: "Aloe", IsSafe: false},
		{CommonName: "Spider Plant", IsSafe: true},
	}
}

func TestFilterBySafety_Identity(t *testing.T) {
	plants := testPlants()
	got := FilterBySafety(plants, nil)
	if !reflect.DeepEqual(got, plants) {
		t.Errorf("FilterBySafety(nil) = %+v, want input unchanged", got)
	}

	if got := FilterBySafety(nil, nil); got != nil {
		t.Errorf("FilterBySafety(nil, nil) = %+v, want nil", got)
	}
}

func TestFilterBySafety_Partition(t *testing.T) {
	plants := testPlants()

	safe := FilterBySafety(plants, Bool(true))
	toxic := FilterBySafety(plants, Bool(false))

	for _, p := range safe {
		if !p.IsSafe {
			t.Errorf("safe filter returned toxic plant %q", p.CommonName)
		}
	}
	for _, p := range toxic {
		if p.IsSafe {
			t.Errorf("toxic filter returned safe plant %q", p.CommonName)
		}
	}
	if len(safe)+len(toxic) != len(plants) {
		t.Fatalf("partitions lose elements: %d + %d != %d", len(safe), len(toxic), len(plants))
	}

	// Merging the two filtered views by original position rebuilds the input.
	merged := make([]Plant, 0, len(plants))
	si, ti := 0, 0
	for _, p := range plants {
		if p.IsSafe {
			merged = append(merged, safe[si])
			si++
		} else {
			merged = append(merged, toxic[ti])
			ti++
		}
	}
	if !reflect.DeepEqual(merged, plants) {
		t.Errorf("merged partitions = %+v, want %+v", merged, plants)
	}
}

func TestFilterBySafety_DoesNotMutateInput(t *testing.T) {
	plants := testPlants()
	before := testPlants()
	_ = FilterBySafety(plants, Bool(false))
	if !reflect.DeepEqual(plants, before) {
		t.Error("FilterBySafety modified its input")
	}
}
