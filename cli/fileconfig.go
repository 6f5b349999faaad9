package cli

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// envConfigPathKey is the environment variable key for overriding
	// the config file path.
	envConfigPathKey = "FIREWAY_CONFIG_PATH"

	// defaultConfigName is the config file looked up under the user's
	// home directory.
	defaultConfigName = ".fireway.toml"
)

type ConfigError struct {
	Opt string
	Err error
}

func (e *ConfigError) Error() string {
	return "config: " + strings.Join([]string{e.Opt, e.Err.Error()}, ":")
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FileConfig represents the full structure of the configuration file.
//
//nolint:tagalign
type FileConfig struct {
	Fireway FirewayConfig `toml:"fireway" json:"fireway"`

	path string // path to the loaded config file. Empty if no config file was used.
}

// FirewayConfig holds migration engine defaults; command-line flags take
// precedence over every field.
//
//nolint:tagalign,tagliatelle
type FirewayConfig struct {
	Path        string `toml:"path,commented" comment:"Migrations directory (default: './migrations' if not set)" json:"path,omitempty"`
	Project     string `toml:"project,commented" comment:"Google Cloud project ID hosting the Firestore database" json:"project,omitempty"`
	Credentials string `toml:"credentials,commented" comment:"Service account key file (default: application-default credentials)" json:"credentials,omitempty"`
	Collection  string `toml:"collection,commented" comment:"Ledger collection name (default: 'fireway' if not set)" json:"collection,omitempty"`
	ForceWait   *bool  `toml:"force_wait,commented" comment:"Wait for each migration's outstanding operations to settle (default: false)" json:"force_wait,omitempty"`
}

// LoadFileConfig loads the config from the given or default path.
func LoadFileConfig(path string) (*FileConfig, error) {
	defaultPath, err := defaultConfigPath()
	if err != nil {
		return nil, err
	}

	configPath := cmp.Or(path, defaultPath)

	c, err := parseFileConfig(configPath)
	if err != nil {
		// config file not found at default location; fallback to empty config
		if len(path) == 0 && errors.Is(err, fs.ErrNotExist) { //nolint:revive // clearer with explicit fallback logic
			c = &FileConfig{}
		} else {
			return nil, err
		}
	} else {
		c.path = configPath
	}

	return c, c.validate()
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("user home dir: %w", err)
	}

	return filepath.Join(home, defaultConfigName), nil
}

func parseFileConfig(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	c := &FileConfig{}
	if err := toml.Unmarshal(raw, c); err != nil {
		return nil, &ConfigError{Opt: path, Err: err}
	}

	return c, nil
}

// Path returns the path the config was loaded from, if any.
func (c *FileConfig) Path() string { return c.path }

func (c *FileConfig) validate() error {
	if len(c.Fireway.Credentials) == 0 {
		return nil
	}

	if _, err := os.Stat(c.Fireway.Credentials); err != nil {
		return &ConfigError{Opt: "credentials", Err: err}
	}

	return nil
}

// Template renders a commented example configuration file.
func Template() (string, error) {
	c := &FileConfig{}

	out, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config template: %w", err)
	}

	return string(out), nil
}
