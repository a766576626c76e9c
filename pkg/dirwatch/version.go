package dirwatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// VersionMajor represents the current major version of dirwatch.
	VersionMajor = 0
	// VersionMinor represents the current minor version of dirwatch.
	VersionMinor = 3
	// VersionPatch represents the current patch version of dirwatch.
	VersionPatch = 0
	// VersionTag represents a tag to be appended to the dirwatch version
	// string. It must not contain spaces. If empty, no tag is appended to the
	// version string.
	VersionTag = "dev"
)

// Version provides a stringified version of the current dirwatch version.
var Version string

func init() {
	// Compute the stringified version.
	if VersionTag != "" {
		Version = fmt.Sprintf("%d.%d.%d-%s", VersionMajor, VersionMinor, VersionPatch, VersionTag)
	} else {
		Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	}
}

// ParseVersion parses a version string of the form major.minor.patch[-tag] and
// returns its numeric components. Any tag is ignored.
func ParseVersion(version string) (uint64, uint64, uint64, error) {
	// Strip any tag.
	if index := strings.IndexByte(version, '-'); index >= 0 {
		version = version[:index]
	}

	// Split the numeric components.
	components := strings.Split(version, ".")
	if len(components) != 3 {
		return 0, 0, 0, errors.New("invalid version format")
	}

	// Parse each component.
	var parsed [3]uint64
	for i, component := range components {
		value, err := strconv.ParseUint(component, 10, 32)
		if err != nil {
			return 0, 0, 0, errors.Wrap(err, "invalid version component")
		}
		parsed[i] = value
	}

	// Success.
	return parsed[0], parsed[1], parsed[2], nil
}
