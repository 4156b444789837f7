// Package config holds the settings shared by the generator, the runner and
// the mock API.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// FileName is looked up in the working directory and its parents.
const FileName = "makemove.yaml"

type Config struct {
	// Endpoint is the JSON-RPC URL fixtures are sent to.
	Endpoint string `yaml:"endpoint"`
	// Timeout bounds each API call. Zero waits indefinitely.
	Timeout time.Duration `yaml:"timeout"`

	// RootDir anchors the relative directories below and the entries of
	// test list files.
	RootDir   string `yaml:"root_dir"`
	PassDir   string `yaml:"pass_dir"`
	FailDir   string `yaml:"fail_dir"`
	BoardDir  string `yaml:"board_dir"`
	ReportDir string `yaml:"report_dir"`

	Strict         bool   `yaml:"strict"`
	ResultsParquet string `yaml:"results_parquet"`

	Listen      string   `yaml:"listen"`
	CORSOrigins []string `yaml:"cors_origins"`

	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Endpoint:    "http://localhost:3000/json-rpc",
		RootDir:     ".",
		PassDir:     "expPassTestDir",
		FailDir:     "expFailTestDir",
		BoardDir:    "Test_Boards",
		ReportDir:   ".",
		Listen:      ":3000",
		CORSOrigins: []string{"http://localhost:5173"},
		LogLevel:    "info",
	}
}

// Load reads path on top of the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.RootDir == "" || cfg.RootDir == "." {
		cfg.RootDir = filepath.Dir(path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or the file FindConfigPath locates when path is
// empty, and falls back to defaults when there is none.
func LoadOrDefault(path string) (Config, error) {
	if path != "" {
		return Load(path)
	}
	found, err := FindConfigPath()
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	return Load(found)
}

// FindConfigPath walks up from the working directory looking for FileName.
func FindConfigPath() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return findFrom(dir)
}

func findFrom(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s: %w", FileName, os.ErrNotExist)
		}
		dir = parent
	}
}

func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Path resolves a configured directory against RootDir.
func (c Config) Path(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.RootDir, dir)
}

// Logger builds the console logger used by the commands.
func (c Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
