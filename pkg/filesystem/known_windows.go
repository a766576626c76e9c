package filesystem

import (
	"github.com/pkg/errors"

	"golang.org/x/sys/windows"
)

// KnownDirectoryPath computes the path to a well-known directory using the
// shell's known folder database. It does not verify that the directory exists.
func KnownDirectoryPath(directory KnownDirectory) (string, error) {
	// Map the directory to a known folder identifier.
	var folder *windows.KNOWNFOLDERID
	switch directory {
	case KnownDirectoryHome:
		folder = windows.FOLDERID_Profile
	case KnownDirectoryDesktop:
		folder = windows.FOLDERID_Desktop
	case KnownDirectoryDownloads:
		folder = windows.FOLDERID_Downloads
	case KnownDirectoryUserApplicationData:
		folder = windows.FOLDERID_LocalAppData
	case KnownDirectoryCommonApplicationData:
		folder = windows.FOLDERID_ProgramData
	default:
		return "", errors.New("unknown directory")
	}

	// Perform the lookup.
	path, err := windows.KnownFolderPath(folder, windows.KF_FLAG_DEFAULT)
	if err != nil {
		return "", errors.Wrapf(err, "unable to query %s directory", directory)
	}

	// Success.
	return path, nil
}
