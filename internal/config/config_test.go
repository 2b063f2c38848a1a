package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/pixelpilot/internal/config"
	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30.0, cfg.Engine.TargetHz)
	assert.Equal(t, 3, cfg.Engine.MaxPasses)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, config.BackendMemory, cfg.State.Backend)
	assert.Equal(t, domain.Color{}, cfg.Vision.SentinelRGB)
	assert.Equal(t, filepath.Join(".pixelpilot", "library.db"), cfg.Library.LibraryPath())

	cfg.Library.Backend = config.LibraryFile
	assert.Equal(t, filepath.Join(".pixelpilot", "graphs"), cfg.Library.LibraryPath())
	cfg.Library.Path = "/srv/graphs"
	assert.Equal(t, "/srv/graphs", cfg.Library.LibraryPath())
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := writeFile(t, "pixelpilot.yaml", `
engine:
  target_hz: 60
vision:
  sentinel_rgb: [255, 255, 255]
logging:
  level: debug
  format: json
state:
  backend: redis
redis:
  addr: redis:6379
  lock_ttl: 5s
`)
	cfg, used, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 60.0, cfg.Engine.TargetHz)
	assert.Equal(t, 3, cfg.Engine.MaxPasses, "unset keys keep defaults")
	assert.Equal(t, domain.Color{R: 255, G: 255, B: 255}, cfg.Vision.SentinelRGB)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, "pixelpilot:", cfg.Redis.Prefix)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"engine": {"max_relaxation_passes": 5}, "vision": {"sentinel_rgb": "#102030"}}`)
	cfg, _, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Engine.MaxPasses)
	assert.Equal(t, domain.Color{R: 0x10, G: 0x20, B: 0x30}, cfg.Vision.SentinelRGB)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "engine:\n  target_hz: 30\n  turbo: true\n",
		"zero hz":      "engine:\n  target_hz: 0\n",
		"zero passes":  "engine:\n  max_relaxation_passes: 0\n",
		"bad level":    "logging:\n  level: loud\n",
		"bad backend":  "state:\n  backend: etcd\n",
		"bad library":  "library:\n  backend: s3\n",
		"bad color":    "vision:\n  sentinel_rgb: '#zz0000'\n",
		"invalid yaml": "engine: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := config.Load(writeFile(t, "pixelpilot.yaml", content))
			require.Error(t, err)
		})
	}

	_, _, err := config.Load(writeFile(t, "p.yaml", "engine:\n  target_hz: -1\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestResolve(t *testing.T) {
	t.Setenv(config.EnvPath, "")
	path, explicit := config.Resolve("")
	assert.Equal(t, config.DefaultPath, path)
	assert.False(t, explicit)

	t.Setenv(config.EnvPath, "/etc/pp.yaml")
	path, explicit = config.Resolve("")
	assert.Equal(t, "/etc/pp.yaml", path)
	assert.True(t, explicit)

	path, _ = config.Resolve("flag.yaml")
	assert.Equal(t, "flag.yaml", path, "flag wins over env")
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(config.EnvPath, "")
	t.Chdir(t.TempDir())

	cfg, used, err := config.Load("")
	require.NoError(t, err, "missing default file means defaults")
	assert.Empty(t, used)
	assert.Equal(t, config.Default(), cfg)

	_, _, err = config.Load("nope.yaml")
	assert.Error(t, err, "an explicit path must exist")
}
