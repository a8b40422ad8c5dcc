package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the project configuration file looked up by LoadConfig
const FileName = "tdg.toml"

// Defaults applied when tdg.toml leaves a setting empty
const (
	DefaultOutputDir   = "tdg-output"
	DefaultHistoryPath = ".tdg/history.db"
	DefaultLogFile     = ".tdg/tdg.log"
	DefaultFormat      = "json"
	DefaultLogLevel    = "info"
	DefaultPreviewRows = 10
)

// DataSourceConfig describes a saved data source in tdg.toml.
// Passwords and auth tokens never live here; see ReadSecrets.
type DataSourceConfig struct {
	Name        string `toml:"name"`
	Type        string `toml:"type"`
	Host        string `toml:"host,omitempty"`
	Port        int    `toml:"port,omitempty"`
	Database    string `toml:"database,omitempty"`
	User        string `toml:"user,omitempty"`
	FilePath    string `toml:"file_path,omitempty"`
	URL         string `toml:"url,omitempty"`
	Charset     string `toml:"charset,omitempty"`
	Description string `toml:"description,omitempty"`
}

type Config struct {
	OutputDir     string                      `toml:"output_dir,omitempty"`
	HistoryPath   string                      `toml:"history_path,omitempty"`
	DefaultFormat string                      `toml:"default_format,omitempty"`
	LogLevel      string                      `toml:"log_level,omitempty"`
	LogFile       string                      `toml:"log_file,omitempty"`
	PreviewRows   int                         `toml:"preview_rows,omitempty"`
	DataSources   map[string]DataSourceConfig `toml:"data_sources,omitempty"`

	ConfigFilePath string `toml:"-"`
}

// LoadConfig finds tdg.toml by walking up from the working directory until a
// project root is reached. A missing file yields a default configuration
// rooted at the working directory.
func LoadConfig() (*Config, error) {
	startDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(startDir)
}

// LoadConfigFrom behaves like LoadConfig starting at startDir.
func LoadConfigFrom(startDir string) (*Config, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return LoadFile(configPath)
		}

		// Check if we've reached a project boundary
		if isProjectRoot(dir) {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	cfg := &Config{ConfigFilePath: filepath.Join(startDir, FileName)}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile reads a specific configuration file.
func LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = abs
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// Save writes the configuration back to ConfigFilePath.
func (c *Config) Save() error {
	if c.ConfigFilePath == "" {
		return fmt.Errorf("config has no file path")
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	header := "# tdg configuration\n# Credentials are stored in .env.<data source> files, never here.\n\n"
	return os.WriteFile(c.ConfigFilePath, append([]byte(header), data...), 0o644)
}

// ConfigDir returns the directory containing the configuration file.
func (c *Config) ConfigDir() string {
	return filepath.Dir(c.ConfigFilePath)
}

// ResolvePath makes p absolute relative to the configuration directory.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ConfigDir(), p)
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.HistoryPath == "" {
		c.HistoryPath = DefaultHistoryPath
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = DefaultFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.PreviewRows <= 0 {
		c.PreviewRows = DefaultPreviewRows
	}
	if c.DataSources == nil {
		c.DataSources = make(map[string]DataSourceConfig)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TDG_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TDG_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("TDG_PREVIEW_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PreviewRows = n
		}
	}
}

// isProjectRoot checks if the directory is a project root based on common markers
func isProjectRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
		return true
	}
	return false
}
