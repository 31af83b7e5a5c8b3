package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/catclean/pkg/data"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	FileName = "config.yaml"
	dirMode  = 0700
	fileMode = 0600

	ThresholdDefault = 3
	SampleDefault    = 10
)

// Config holds the defaults a run falls back to when flags are not set.
type Config struct {
	Papers    string `yaml:"papers"`
	Labels    string `yaml:"labels"`
	Metadata  string `yaml:"metadata"`
	Output    string `yaml:"output"`
	Threshold int    `yaml:"threshold"`
	Workers   int    `yaml:"workers"`
	Sample    int    `yaml:"sample"`
	Lexicon   string `yaml:"lexicon,omitempty"`
	AuditDB   string `yaml:"audit_db,omitempty"`
	Format    string `yaml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Papers:    "papers_export.json",
		Labels:    filepath.Join("production", "graph_db", "cached_embeddings", "labels.json"),
		Metadata:  filepath.Join("production", "graph_db", "cached_embeddings", "graph_metadata.json"),
		Output:    filepath.Join("production", "graph_db", "cached_embeddings"),
		Threshold: ThresholdDefault,
		Sample:    SampleDefault,
		Format:    data.FormatJSON,
	}
}

// Validate checks values that can not be corrected silently.
func Validate(c *Config) error {
	if c == nil {
		return data.NewConfigError("config", "config is nil")
	}
	if c.Workers < 0 {
		return data.NewConfigError("workers", "must be >= 0, got %d", c.Workers)
	}
	if c.Sample < 0 {
		return data.NewConfigError("sample", "must be >= 0, got %d", c.Sample)
	}
	switch strings.ToLower(c.Format) {
	case data.FormatJSON, data.FormatYAML, "yml":
	default:
		return data.NewConfigError("format", "unsupported format %q (json, yaml)", c.Format)
	}
	return nil
}

// Save writes the config into dirPath.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(dirPath, FileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", path)
	}
	return nil
}

// Load reads the config file at path. Unset values keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
	}
	return c, nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, Default()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	return Load(path)
}

// GetOrCreateHomeDir returns the app directory in the current user home.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
