package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory configuration.
type Paths struct {
	GridPath         string `toml:"grid_path"`
	GridNameProperty string `toml:"grid_name_property"`
	OutputDir        string `toml:"output_dir"`
	ScratchDir       string `toml:"scratch_dir"`
	LogDir           string `toml:"log_dir"`
}

// Portal contains configuration for the survey-data download portal.
type Portal struct {
	URL           string `toml:"url"`
	Product       string `toml:"product"`
	Year          string `toml:"year"`
	StepTimeout   int    `toml:"step_timeout"`
	Headless      bool   `toml:"headless"`
	BrowserBinary string `toml:"browser_binary"`
}

// Download contains configuration for HTTP transfers.
type Download struct {
	Timeout int `toml:"timeout"`
}

// Retry contains configuration for the per-tile retry supervisor.
type Retry struct {
	MaxAttempts      int `toml:"max_attempts"`
	CooldownSeconds  int `toml:"cooldown_seconds"`
	TilePauseSeconds int `toml:"tile_pause_seconds"`
}

// Geometry contains configuration for footprint resolution.
type Geometry struct {
	VertexLimit     int  `toml:"vertex_limit"`
	ExpandNeighbors bool `toml:"expand_neighbors"`
}

// Conversion contains configuration for COG conversion.
type Conversion struct {
	Enabled     bool   `toml:"enabled"`
	GDALBinary  string `toml:"gdal_binary"`
	BlockSize   int    `toml:"block_size"`
	Compression string `toml:"compression"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for tilefetch.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Portal     Portal     `toml:"portal"`
	Download   Download   `toml:"download"`
	Retry      Retry      `toml:"retry"`
	Geometry   Geometry   `toml:"geometry"`
	Conversion Conversion `toml:"conversion"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tilefetch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("tilefetch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a batch run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.ScratchDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RunDBPath returns the location of the per-tile result database.
func (c *Config) RunDBPath() string {
	return filepath.Join(c.Paths.LogDir, "runs.db")
}

// RunLockPath returns the lock file guarding against concurrent batch runs.
func (c *Config) RunLockPath() string {
	return filepath.Join(c.Paths.LogDir, "tilefetch.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(expanded); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}
