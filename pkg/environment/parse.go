package environment

import (
	"strings"

	"github.com/pkg/errors"
)

// Parse converts a slice of "KEY=value" specifications into a map. Later
// entries for a key override earlier ones. Specifications with empty names
// (which Windows uses for per-drive working directories, e.g. "=C:=C:\") are
// ignored. Specifications without an equals sign are an error.
func Parse(environment []string) (map[string]string, error) {
	result := make(map[string]string, len(environment))
	for _, specification := range environment {
		keyValue := strings.SplitN(specification, "=", 2)
		if len(keyValue) != 2 {
			return nil, errors.Errorf("invalid environment variable specification: %s", specification)
		} else if keyValue[0] == "" {
			continue
		}
		result[keyValue[0]] = keyValue[1]
	}
	return result, nil
}
