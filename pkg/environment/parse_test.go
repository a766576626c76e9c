package environment

import (
	"testing"
)

// TestParseNil tests parsing of a nil environment.
func TestParseNil(t *testing.T) {
	if parsed, err := Parse(nil); err != nil {
		t.Fatal("unable to parse nil environment:", err)
	} else if len(parsed) != 0 {
		t.Error("parsed environment not empty when parsing from nil")
	}
}

// TestParseEmpty tests parsing of an empty environment.
func TestParseEmpty(t *testing.T) {
	if parsed, err := Parse([]string{}); err != nil {
		t.Fatal("unable to parse empty environment:", err)
	} else if len(parsed) != 0 {
		t.Error("parsed environment not empty when parsing from empty environment")
	}
}

// TestParseInvalid tests that specifications without separators are
// rejected.
func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]string{""}); err == nil {
		t.Fatal("parsing didn't fail for invalid environment")
	}
}

// TestParse tests parsing of a representative environment.
func TestParse(t *testing.T) {
	// Create a faux environment to test.
	native := []string{
		"=",
		"=something",
		"=something2=other",
		"a=b",
		"WASHINGTON=george",
		"WASHINGTON=george2",
		"Lincoln=abraham",
		"ADAMS=JOHN=QUINCY",
		"JEFFERSON=tHoMaS!\n",
	}
	expected := map[string]string{
		"a":          "b",
		"WASHINGTON": "george2",
		"Lincoln":    "abraham",
		"ADAMS":      "JOHN=QUINCY",
		"JEFFERSON":  "tHoMaS!\n",
	}

	// Parse it.
	parsed, err := Parse(native)
	if err != nil {
		t.Fatal("unable to parse environment:", err)
	}

	// Ensure the length is as expected.
	if len(parsed) != len(expected) {
		t.Error("parsed environment does not match expected length")
	}

	// Ensure values are as expected.
	for k, ev := range expected {
		if pv, ok := parsed[k]; !ok {
			t.Error("parsed environment missing key:", k)
		} else if pv != ev {
			t.Error("parsed environment value doesn't match expected:", pv, "!=", ev)
		}
	}
}
