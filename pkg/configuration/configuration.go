// Package configuration provides loading, validation, and saving of the
// dirwatch YAML configuration file.
package configuration

import (
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/mutagen-io/dirwatch/pkg/dirwatch"
	"github.com/mutagen-io/dirwatch/pkg/encoding"
	"github.com/mutagen-io/dirwatch/pkg/logging"
)

const (
	// DefaultUpdateInterval is the default interval between watcher updates.
	DefaultUpdateInterval = 50 * time.Millisecond
)

// Watch is the configuration for a single watch.
type Watch struct {
	// Path is the directory to watch. It may be relative (to the working
	// directory) or begin with a tilde.
	Path string `yaml:"path"`
	// Recursive indicates whether or not subdirectories should be watched.
	Recursive bool `yaml:"recursive"`
	// Exec is an optional command to run for each event delivered for the
	// watch. It overrides any command specified on the command line.
	Exec string `yaml:"exec,omitempty"`
}

// Configuration is the YAML configuration object type.
type Configuration struct {
	// Version is the dirwatch version that wrote the configuration. It's
	// recorded by Save and checked for compatibility on load.
	Version string `yaml:"version,omitempty"`
	// Watches are the configured watches.
	Watches []Watch `yaml:"watches"`
	// Update is the update loop configuration.
	Update struct {
		// Interval is the interval between watcher updates.
		Interval time.Duration `yaml:"interval"`
		// MaximumReads is the maximum number of native reads per update. A
		// value of 0 selects the watcher's default.
		MaximumReads int `yaml:"maximumReads"`
	} `yaml:"update"`
	// Logging is the logging configuration.
	Logging struct {
		// Level is the log level.
		Level logging.Level `yaml:"level"`
	} `yaml:"logging"`
	// Ignore are doublestar patterns for paths (relative to the watch root)
	// whose events should be discarded.
	Ignore []string `yaml:"ignore,omitempty"`
	// EnvironmentFile is an optional dotenv-style file providing additional
	// environment variables for executed commands.
	EnvironmentFile string `yaml:"environmentFile,omitempty"`
}

// Default returns a configuration with default values and no watches.
func Default() *Configuration {
	result := &Configuration{}
	result.Update.Interval = DefaultUpdateInterval
	result.Logging.Level = logging.LevelInfo
	return result
}

// Load attempts to load a configuration from the specified path. Fields that
// aren't specified retain their default values. If the file doesn't exist,
// then the default configuration is returned.
func Load(path string) (*Configuration, error) {
	// Create the target configuration object.
	result := Default()

	// Attempt to load, treating non-existence as an empty configuration.
	if err := encoding.LoadAndUnmarshalYAML(path, result); err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, err
	}

	// Ensure that the configuration is valid.
	if err := result.EnsureValid(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	// Success.
	return result, nil
}

// Save writes the configuration atomically to the specified path.
func (c *Configuration) Save(path string, logger *logging.Logger) error {
	if err := c.EnsureValid(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	saved := *c
	saved.Version = dirwatch.Version
	return encoding.MarshalAndSaveYAML(path, logger, &saved)
}

// EnsureValid ensures that the configuration is valid.
func (c *Configuration) EnsureValid() error {
	// Validate the version. Files written by a newer major version may use
	// semantics that we don't understand.
	if c.Version != "" {
		major, _, _, err := dirwatch.ParseVersion(c.Version)
		if err != nil {
			return errors.Wrap(err, "invalid configuration version")
		} else if major > dirwatch.VersionMajor {
			return errors.Errorf("configuration written by newer dirwatch version (%s)", c.Version)
		}
	}

	// Validate watches.
	for i, w := range c.Watches {
		if w.Path == "" {
			return errors.Errorf("watch %d has empty path", i)
		}
	}

	// Validate update parameters.
	if c.Update.Interval <= 0 {
		return errors.New("update interval must be positive")
	} else if c.Update.MaximumReads < 0 {
		return errors.New("maximum reads must be non-negative")
	}

	// Validate the log level.
	if c.Logging.Level > logging.LevelTrace {
		return errors.New("unknown log level")
	}

	// Validate ignore patterns.
	for _, pattern := range c.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern: %s", pattern)
		}
	}

	// Success.
	return nil
}
