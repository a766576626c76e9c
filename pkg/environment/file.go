package environment

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// LoadFile reads a dotenv-style environment file. Non-existence errors are
// passed through unwrapped.
func LoadFile(path string) (map[string]string, error) {
	result, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "unable to load environment file (%s)", path)
	}
	return result, nil
}
