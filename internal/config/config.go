// Package config loads the pixelpilot configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/pixelpilot/internal/logging"
	"github.com/aretw0/pixelpilot/internal/runtime"
	"github.com/aretw0/pixelpilot/pkg/blocks"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable holding the config path.
const EnvPath = "PIXELPILOT_CONFIG"

// DefaultPath is used when neither a flag nor EnvPath names a file.
const DefaultPath = "pixelpilot.yaml"

// State backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Library backends.
const (
	LibrarySQLite = "sqlite"
	LibraryFile   = "file"
	LibraryRedis  = "redis"
)

type Config struct {
	Engine  Engine  `mapstructure:"engine"`
	Vision  Vision  `mapstructure:"vision"`
	Logging Logging `mapstructure:"logging"`
	HTTP    HTTP    `mapstructure:"http"`
	State   State   `mapstructure:"state"`
	Redis   Redis   `mapstructure:"redis"`
	Library Library `mapstructure:"library"`
}

type Engine struct {
	TargetHz  float64 `mapstructure:"target_hz"`
	MaxPasses int     `mapstructure:"max_relaxation_passes"`
}

// Vision configures the headless vision backend.
type Vision struct {
	SentinelRGB domain.Color `mapstructure:"sentinel_rgb"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTP struct {
	Addr string `mapstructure:"addr"`
}

type State struct {
	Backend string `mapstructure:"backend"`
}

type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// Library selects the graph repository used by the library command. An empty
// Path picks the backend's default location.
type Library struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// LibraryPath returns Path or the default location for the backend.
func (l Library) LibraryPath() string {
	if l.Path != "" {
		return l.Path
	}
	if l.Backend == LibraryFile {
		return filepath.Join(".pixelpilot", "graphs")
	}
	return filepath.Join(".pixelpilot", "library.db")
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine:  Engine{TargetHz: runtime.DefaultTargetHz, MaxPasses: runtime.DefaultMaxPasses},
		Logging: Logging{Level: "info", Format: logging.FormatText},
		HTTP:    HTTP{Addr: ":8080"},
		State:   State{Backend: BackendMemory},
		Redis:   Redis{Addr: "localhost:6379", Prefix: "pixelpilot:", LockTTL: 30 * time.Second},
		Library: Library{Backend: LibrarySQLite},
	}
}

// Resolve picks the config path: the explicit flag value, then EnvPath, then
// DefaultPath. The second result reports whether the path was asked for
// explicitly, in which case a missing file is an error.
func Resolve(flagPath string) (string, bool) {
	if flagPath != "" {
		return flagPath, true
	}
	if env := strings.TrimSpace(os.Getenv(EnvPath)); env != "" {
		return env, true
	}
	return DefaultPath, false
}

// Load reads and validates the configuration. Keys missing from the file keep
// their defaults; unknown keys are rejected.
func Load(flagPath string) (Config, string, error) {
	cfg := Default()
	path, explicit := Resolve(flagPath)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, "", nil
		}
		return cfg, path, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Parse(data, filepath.Ext(path), &cfg); err != nil {
		return cfg, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, cfg.Validate()
}

// Parse decodes YAML, or JSON when ext is ".json", over cfg.
func Parse(data []byte, ext string, cfg *Config) error {
	raw := map[string]any{}
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse config json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse config yaml: %w", err)
		}
	}
	return blocks.Decode(raw, cfg)
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Engine.TargetHz <= 0 {
		errs = append(errs, fmt.Errorf("engine.target_hz must be positive, got %v", c.Engine.TargetHz))
	}
	if c.Engine.MaxPasses < 1 {
		errs = append(errs, fmt.Errorf("engine.max_relaxation_passes must be at least 1, got %d", c.Engine.MaxPasses))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch strings.ToLower(c.Logging.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	switch c.State.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("state.backend must be memory or redis, got %q", c.State.Backend))
	}
	switch c.Library.Backend {
	case LibrarySQLite, LibraryFile, LibraryRedis:
	default:
		errs = append(errs, fmt.Errorf("library.backend must be sqlite, file or redis, got %q", c.Library.Backend))
	}
	if c.Redis.LockTTL <= 0 {
		errs = append(errs, fmt.Errorf("redis.lock_ttl must be positive, got %s", c.Redis.LockTTL))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
