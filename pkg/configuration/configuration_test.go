package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mutagen-io/dirwatch/pkg/dirwatch"
	"github.com/mutagen-io/dirwatch/pkg/logging"
)

const (
	// testConfigurationGibberish is an invalid YAML document.
	testConfigurationGibberish = "[a+1a4"
	// testConfigurationValid is a valid configuration.
	testConfigurationValid = `watches:
  - path: "~/projects"
    recursive: true
  - path: "/var/log"
    exec: "echo changed"
update:
  interval: "250ms"
  maximumReads: 8
logging:
  level: "debug"
ignore:
  - "**/.git/**"
  - "*.swp"
environmentFile: ".env"
`
)

// writeConfiguration writes configuration contents to a temporary file and
// returns its path.
func writeConfiguration(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dirwatch.yml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatal("unable to write configuration:", err)
	}
	return path
}

// TestLoadNonExistent tests that loading a non-existent file yields the
// default configuration.
func TestLoadNonExistent(t *testing.T) {
	if c, err := Load("/this/does/not/exist"); err != nil {
		t.Error("load from non-existent path failed:", err)
	} else if c == nil {
		t.Error("load from non-existent path returned nil configuration")
	} else if c.Update.Interval != DefaultUpdateInterval {
		t.Error("default interval not set:", c.Update.Interval)
	}
}

// TestLoadEmpty tests that loading an empty file yields the default
// configuration.
func TestLoadEmpty(t *testing.T) {
	if c, err := Load(writeConfiguration(t, "")); err != nil {
		t.Error("load from empty file failed:", err)
	} else if c == nil {
		t.Error("load from empty file returned nil configuration")
	} else if c.Logging.Level != logging.LevelInfo {
		t.Error("default log level not set:", c.Logging.Level)
	}
}

// TestLoadGibberish tests that loading an invalid document fails.
func TestLoadGibberish(t *testing.T) {
	if _, err := Load(writeConfiguration(t, testConfigurationGibberish)); err == nil {
		t.Error("load did not fail on gibberish configuration")
	}
}

// TestLoadUnknownField tests that unknown fields are rejected.
func TestLoadUnknownField(t *testing.T) {
	if _, err := Load(writeConfiguration(t, "frobnicate: true\n")); err == nil {
		t.Error("load did not fail on unknown field")
	}
}

// TestLoadDirectory tests that loading a directory fails.
func TestLoadDirectory(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("load did not fail on directory")
	}
}

// TestLoadValid tests that a valid configuration is decoded correctly.
func TestLoadValid(t *testing.T) {
	// Load the configuration.
	c, err := Load(writeConfiguration(t, testConfigurationValid))
	if err != nil {
		t.Fatal("load from valid configuration failed:", err)
	}

	// Verify watches.
	if len(c.Watches) != 2 {
		t.Fatal("unexpected number of watches:", len(c.Watches))
	}
	if c.Watches[0].Path != "~/projects" || !c.Watches[0].Recursive || c.Watches[0].Exec != "" {
		t.Error("first watch does not match expected:", c.Watches[0])
	}
	if c.Watches[1].Path != "/var/log" || c.Watches[1].Recursive || c.Watches[1].Exec != "echo changed" {
		t.Error("second watch does not match expected:", c.Watches[1])
	}

	// Verify other settings.
	if c.Update.Interval != 250*time.Millisecond {
		t.Error("interval does not match expected:", c.Update.Interval)
	}
	if c.Update.MaximumReads != 8 {
		t.Error("maximum reads do not match expected:", c.Update.MaximumReads)
	}
	if c.Logging.Level != logging.LevelDebug {
		t.Error("log level does not match expected:", c.Logging.Level)
	}
	if len(c.Ignore) != 2 || c.Ignore[0] != "**/.git/**" || c.Ignore[1] != "*.swp" {
		t.Error("ignore patterns do not match expected:", c.Ignore)
	}
	if c.EnvironmentFile != ".env" {
		t.Error("environment file does not match expected:", c.EnvironmentFile)
	}
}

// TestLoadInvalid tests that semantically invalid configurations are
// rejected.
func TestLoadInvalid(t *testing.T) {
	// Set up test cases.
	testCases := []string{
		"watches:\n  - recursive: true\n",
		"update:\n  interval: \"-1s\"\n",
		"update:\n  maximumReads: -1\n",
		"logging:\n  level: \"verbose\"\n",
		"ignore:\n  - \"[unterminated\"\n",
		"version: \"bogus\"\n",
		"version: \"999.0.0\"\n",
	}

	// Process test cases.
	for _, contents := range testCases {
		if _, err := Load(writeConfiguration(t, contents)); err == nil {
			t.Errorf("invalid configuration accepted:\n%s", contents)
		}
	}
}

// TestSaveAndLoad tests that saved configurations can be loaded.
func TestSaveAndLoad(t *testing.T) {
	// Create and save a configuration.
	original := Default()
	original.Watches = []Watch{{Path: "/tmp", Recursive: true, Exec: "true"}}
	original.Update.Interval = time.Second
	original.Logging.Level = logging.LevelTrace
	original.Ignore = []string{"**/*.tmp"}
	path := filepath.Join(t.TempDir(), "dirwatch.yml")
	if err := original.Save(path, nil); err != nil {
		t.Fatal("unable to save configuration:", err)
	}

	// Load the configuration and compare.
	loaded, err := Load(path)
	if err != nil {
		t.Fatal("unable to load saved configuration:", err)
	}
	if len(loaded.Watches) != 1 || loaded.Watches[0] != original.Watches[0] {
		t.Error("watches do not match original:", loaded.Watches)
	}
	if loaded.Update.Interval != time.Second {
		t.Error("interval does not match original:", loaded.Update.Interval)
	}
	if loaded.Logging.Level != logging.LevelTrace {
		t.Error("log level does not match original:", loaded.Logging.Level)
	}
	if len(loaded.Ignore) != 1 || loaded.Ignore[0] != "**/*.tmp" {
		t.Error("ignore patterns do not match original:", loaded.Ignore)
	}
	if loaded.Version != dirwatch.Version {
		t.Error("recorded version does not match current:", loaded.Version)
	} else if original.Version != "" {
		t.Error("saving modified the original configuration")
	}
}

// TestSaveInvalid tests that invalid configurations aren't saved.
func TestSaveInvalid(t *testing.T) {
	c := Default()
	c.Update.Interval = 0
	path := filepath.Join(t.TempDir(), "dirwatch.yml")
	if c.Save(path, nil) == nil {
		t.Error("invalid configuration saved")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid configuration written to disk")
	}
}

// TestDefaultPath tests that the default configuration path is absolute.
func TestDefaultPath(t *testing.T) {
	if path, err := DefaultPath(); err != nil {
		t.Fatal("unable to compute default path:", err)
	} else if !filepath.IsAbs(path) {
		t.Error("default path is not absolute:", path)
	} else if filepath.Base(path) != fileName {
		t.Error("default path has unexpected file name:", path)
	}
}
