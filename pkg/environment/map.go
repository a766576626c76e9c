package environment

import (
	"sort"
	"strings"
)

// ToMap converts an environment variable specification from a slice of
// "KEY=value" strings to a map with equivalent contents. Any entries not
// adhering to the specified format are ignored. Entries are processed in order,
// meaning that the last entry seen for a key will be what populates the map.
func ToMap(environment []string) map[string]string {
	// Allocate result storage.
	result := make(map[string]string, len(environment))

	// Convert variables.
	for _, specification := range environment {
		keyValue := strings.SplitN(specification, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		result[keyValue[0]] = keyValue[1]
	}

	// Done.
	return result
}

// FromMap converts a map of environment variables into a slice of "KEY=value"
// strings, sorted by key.
func FromMap(environment map[string]string) []string {
	// Sort keys.
	keys := make([]string, 0, len(environment))
	for key := range environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Convert entries.
	result := make([]string, 0, len(environment))
	for _, key := range keys {
		result = append(result, key+"="+environment[key])
	}

	// Done.
	return result
}

// Merge combines a base environment with overrides, returning a new map. Keys
// present in overrides take precedence. Neither input is modified.
func Merge(base, overrides map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range overrides {
		result[k] = v
	}
	return result
}
