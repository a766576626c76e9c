package environment

import (
	"testing"
)

// TestToMap tests ToMap.
func TestToMap(t *testing.T) {
	// Set test parameters.
	input := []string{
		"KEY=VALUE",
		"KEY=duplicate",
		"OTHER=2",
		"IGNORED",
	}
	expected := map[string]string{
		"KEY":   "duplicate",
		"OTHER": "2",
	}

	// Perform conversion.
	output := ToMap(input)

	// Validate results.
	if len(output) != len(expected) {
		t.Fatal("output length does not match expected:", len(output), "!=", len(expected))
	}
	for key, value := range output {
		if expectedValue, ok := expected[key]; !ok {
			t.Errorf("output key \"%s\" not expected", key)
		} else if value != expectedValue {
			t.Error("output value does not match expected:", value, "!=", expectedValue)
		}
	}
}

// TestFromMap tests FromMap.
func TestFromMap(t *testing.T) {
	// Set test parameters.
	input := map[string]string{
		"KEY":   "duplicate",
		"OTHER": "2",
		"HEY":   "THERE",
	}

	// Perform conversion to a slice and then back to a map so that we can
	// compare based on map contents.
	output := ToMap(FromMap(input))

	// Validate results.
	if len(output) != len(input) {
		t.Fatal("output length does not match expected:", len(output), "!=", len(input))
	}
	for key, value := range output {
		if expectedValue, ok := input[key]; !ok {
			t.Errorf("output key \"%s\" not expected", key)
		} else if value != expectedValue {
			t.Error("output value does not match expected:", value, "!=", expectedValue)
		}
	}
}

// TestFromMapSorted tests that FromMap output is ordered by key.
func TestFromMapSorted(t *testing.T) {
	output := FromMap(map[string]string{"B": "2", "A": "1", "C": "3"})
	expected := []string{"A=1", "B=2", "C=3"}
	if len(output) != len(expected) {
		t.Fatal("output length does not match expected:", len(output), "!=", len(expected))
	}
	for i, e := range expected {
		if output[i] != e {
			t.Error("output entry does not match expected:", output[i], "!=", e)
		}
	}
}

// TestMerge tests Merge.
func TestMerge(t *testing.T) {
	// Set test parameters.
	base := map[string]string{"KEY": "base", "BASE": "1"}
	overrides := map[string]string{"KEY": "override", "OVERRIDE": "2"}
	expected := map[string]string{"KEY": "override", "BASE": "1", "OVERRIDE": "2"}

	// Perform the merge.
	output := Merge(base, overrides)

	// Validate results.
	if len(output) != len(expected) {
		t.Fatal("output length does not match expected:", len(output), "!=", len(expected))
	}
	for key, value := range expected {
		if output[key] != value {
			t.Error("output value does not match expected:", output[key], "!=", value)
		}
	}
	if base["KEY"] != "base" || len(base) != 2 {
		t.Error("base environment modified")
	}
}
