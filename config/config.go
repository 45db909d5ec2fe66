// Package config resolves IDM settings from defaults, a JWCC config file and
// the environment (including a .env file). Command-line flags are layered on
// top by the cmd package.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"

	"github.com/idm-go/idm/idman"
	"github.com/idm-go/idm/logger"
)

const (
	defaultConcurrency = 1
	defaultEnvFile     = ".env"
	appDir             = "idm"
	configFileName     = "config.jsonc"
)

// Environment variables
const (
	EnvIDMPath     = "IDM_PATH"
	EnvSilent      = "IDM_SILENT"
	EnvDownloadDir = "IDM_DOWNLOAD_DIR"
	EnvConcurrency = "IDM_CONCURRENCY"
)

// Config holds the settings shared by every download the CLI starts.
type Config struct {
	IDMPath     string `json:"idmPath"`
	Silent      bool   `json:"silent"`
	Path        string `json:"path"` // default download directory
	Concurrency int    `json:"concurrency"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		IDMPath:     idman.DefaultToolPath,
		Concurrency: defaultConcurrency,
	}
}

// LoadOptions selects where Load reads from.
type LoadOptions struct {
	// File is an explicit config file; it must exist. Empty means DefaultFile,
	// which may be absent.
	File string
	// EnvFile is loaded into the environment without overriding variables that
	// are already set. Empty means ".env"; a missing file is ignored.
	EnvFile string
	// NoEnv skips both the env file and the environment variables.
	NoEnv bool
}

// DefaultFile returns <user config dir>/idm/config.jsonc.
func DefaultFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(dir, appDir, configFileName), nil
}

// Load builds a Config: defaults, then the config file, then the environment.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	file, required := opts.File, true
	if file == "" {
		required = false
		var err error
		if file, err = DefaultFile(); err != nil {
			logger.Debug("no default config file", "error", err)
			file = ""
		}
	}

	if file != "" {
		if err := loadFile(file, &cfg); err != nil {
			if required || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
			logger.Debug("config file not found, using defaults", "file", file)
		}
	}

	if !opts.NoEnv {
		envFile := opts.EnvFile
		if envFile == "" {
			envFile = defaultEnvFile
		}
		if err := loadEnvFile(envFile); err != nil {
			return Config{}, err
		}
		if err := applyEnv(&cfg); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a JWCC document (JSON with comments and trailing commas) over cfg.
func Parse(data []byte, cfg *Config) error {
	std, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := json.Unmarshal(std, cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := Parse(data, cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("loaded config file", "file", path)
	return nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	logger.Debug("loaded env file", "file", path)
	return nil
}

func applyEnv(cfg *Config) error {
	if v, ok := lookup(EnvIDMPath); ok {
		cfg.IDMPath = v
	}
	if v, ok := lookup(EnvDownloadDir); ok {
		cfg.Path = v
	}
	if v, ok := lookup(EnvSilent); ok {
		silent, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSilent, v, err)
		}
		cfg.Silent = silent
	}
	if v, ok := lookup(EnvConcurrency); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvConcurrency, v, err)
		}
		cfg.Concurrency = n
	}
	return nil
}

// lookup treats blank variables as unset.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Validate checks the values the CLI depends on.
func (c Config) Validate() error {
	if c.IDMPath == "" {
		return errors.New("idmPath must not be empty")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// Mode returns the idman mode implied by Silent.
func (c Config) Mode() idman.Mode {
	if c.Silent {
		return idman.ModeSilent
	}
	return idman.ModeDefault
}

// Apply copies the tool path, mode and default download directory onto r.
func (c Config) Apply(r *idman.Request) *idman.Request {
	if c.IDMPath != "" {
		r.SetToolPath(c.IDMPath)
	}
	r.SetMode(c.Mode())
	if c.Path != "" {
		r.SetDestinationPath(c.Path)
	}
	return r
}
