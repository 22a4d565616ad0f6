package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/quanta-dev/quanta/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "quanta.json"

	// DefaultInspectPort is the default inspector port.
	DefaultInspectPort = 7477

	// DefaultInspectHost is the default inspector host.
	DefaultInspectHost = "localhost"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "quanta"

	// DefaultPersistPrefix is the default snapshot key prefix.
	DefaultPersistPrefix = "state/"
)

// Config represents the complete quanta.json configuration.
type Config struct {
	// Name is the project name, used in telemetry labels.
	Name string `json:"name,omitempty"`

	// Inspect contains inspector server configuration.
	Inspect InspectConfig `json:"inspect,omitempty"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Persist contains snapshot store configuration.
	Persist PersistConfig `json:"persist,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InspectConfig contains inspector server settings.
type InspectConfig struct {
	// Enabled turns the inspector on.
	Enabled bool `json:"enabled,omitempty"`

	// Host is the host to bind to (default: "localhost").
	Host string `json:"host,omitempty"`

	// Port is the port to serve on (default: 7477).
	Port int `json:"port,omitempty"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "quanta").
	Namespace string `json:"namespace,omitempty"`

	// Subsystem is the metrics subsystem.
	Subsystem string `json:"subsystem,omitempty"`
}

// PersistConfig contains snapshot store settings.
type PersistConfig struct {
	// Backend selects the store: "memory" or "s3" (default: "memory").
	Backend string `json:"backend,omitempty"`

	// Bucket is the S3 bucket name (s3 backend only).
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the snapshot key prefix (default: "state/").
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region (s3 backend only).
	Region string `json:"region,omitempty"`
}

// New returns a Config with defaults applied.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Inspect.Host == "" {
		c.Inspect.Host = DefaultInspectHost
	}
	if c.Inspect.Port == 0 {
		c.Inspect.Port = DefaultInspectPort
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Persist.Backend == "" {
		c.Persist.Backend = "memory"
	}
	if c.Persist.Prefix == "" {
		c.Persist.Prefix = DefaultPersistPrefix
	}
}

// Load reads configuration from quanta.json in the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("Q040").
				WithDetail("No quanta.json found in " + filepath.Dir(path)).
				WithSuggestion("Create quanta.json in the project root")
		}
		return nil, errors.New("Q041").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("Q041").
			WithDetail("Failed to parse quanta.json: " + err.Error()).
			WithSuggestion("Check that quanta.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("Q041").Wrap(err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// Validate checks configuration values against their allowed ranges.
func (c *Config) Validate() error {
	if c.Inspect.Port < 0 || c.Inspect.Port > 65535 {
		return errors.New("Q042").
			WithDetail("Inspector port must be between 0 and 65535")
	}
	switch c.Persist.Backend {
	case "memory", "s3":
	default:
		return errors.New("Q042").
			WithDetail("Persist backend must be \"memory\" or \"s3\", got " + strconv.Quote(c.Persist.Backend))
	}
	if c.Persist.Backend == "s3" && c.Persist.Bucket == "" {
		return errors.New("Q042").
			WithDetail("Persist backend \"s3\" requires a bucket").
			WithSuggestion("Set persist.bucket in quanta.json")
	}
	return nil
}

// Dir returns the directory the config was loaded from.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// InspectAddress returns the host:port string for the inspector.
func (c *Config) InspectAddress() string {
	return c.Inspect.Host + ":" + strconv.Itoa(c.Inspect.Port)
}

// Exists reports whether a quanta.json exists in the directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir until it finds a quanta.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("Q040").
				WithDetail("No quanta.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the nearest project root.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
