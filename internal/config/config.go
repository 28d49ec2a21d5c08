// internal/config/config.go
//
// This package handles configuration and the .wasteless directory structure.
// Running wasteless in a directory creates a .wasteless/ folder there.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/wasteless/internal/timefmt"
)

const (
	// DataDir is the name of the directory we create in each project
	DataDir = ".wasteless"

	// EnvPrefix namespaces every environment override.
	EnvPrefix = "WASTELESS"

	defaultPageSize  = 4
	defaultPrefsFile = "state/prefs.yaml"
	defaultRedisAddr = "127.0.0.1:6379"
	defaultHost      = "127.0.0.1"
	defaultPort      = 8766
)

// Prefs backends understood by internal/prefs.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

const defaultProjectConfigYAML = `# wasteless configuration
version: 1

# Content profile (ingredients, demo ingredient, recipes).
# Leave empty to use the profile bundled with the binary.
catalog:
  path: ""

ui:
  # How many more rows "load more" reveals on Home and Reminders.
  page_size: 4
  # Reopen on the tab that was active when the app was last closed.
  remember_tab: true

# Where remembered UI preferences live. Backends: file, sqlite, redis, memory.
prefs:
  backend: file
  path: state/prefs.yaml
  redis_addr: 127.0.0.1:6379
  redis_db: 0

# Local HTTP intent bridge. Lets scripts drive the running TUI.
bridge:
  enabled: false
  host: 127.0.0.1
  port: 8766
`

// CatalogConfig points at an override content profile.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// UIConfig captures presentation preferences.
type UIConfig struct {
	PageSize    int  `yaml:"page_size"`
	RememberTab bool `yaml:"remember_tab"`
}

// PrefsConfig selects the preference store backend.
type PrefsConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path,omitempty"`
	RedisAddr string `yaml:"redis_addr,omitempty"`
	RedisDB   int    `yaml:"redis_db"`
}

// BridgeConfig configures the HTTP intent bridge.
type BridgeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// ProjectConfig models .wasteless/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Catalog CatalogConfig `yaml:"catalog"`
	UI      UIConfig      `yaml:"ui"`
	Prefs   PrefsConfig   `yaml:"prefs"`
	Bridge  BridgeConfig  `yaml:"bridge"`
}

// envOverrides mirrors the WASTELESS_* variables. Pointer fields stay nil
// when the variable is unset.
type envOverrides struct {
	CatalogPath   *string `envconfig:"CATALOG_PATH"`
	PageSize      *int    `envconfig:"PAGE_SIZE"`
	RememberTab   *bool   `envconfig:"REMEMBER_TAB"`
	PrefsBackend  *string `envconfig:"PREFS_BACKEND"`
	PrefsPath     *string `envconfig:"PREFS_PATH"`
	RedisAddr     *string `envconfig:"REDIS_ADDR"`
	RedisDB       *int    `envconfig:"REDIS_DB"`
	BridgeEnabled *bool   `envconfig:"BRIDGE_ENABLED"`
	BridgeHost    *string `envconfig:"BRIDGE_HOST"`
	BridgePort    *int    `envconfig:"BRIDGE_PORT"`
	Now           string  `envconfig:"NOW"`
}

// Config holds the runtime configuration for wasteless.
type Config struct {
	// ProjectDir is the directory where the user ran `wasteless` from
	ProjectDir string

	// DataProjectDir is ProjectDir/.wasteless
	DataProjectDir string

	Project ProjectConfig

	// PinnedNow freezes the clock when WASTELESS_NOW is set.
	PinnedNow string
}

// InitDataDir creates the .wasteless directory structure in the given project directory.
// This is called when the TUI starts up.
//
// Structure created:
// .wasteless/
// ├── config.yaml
// ├── logs/         <- session log shown in the TUI log strip
// └── state/        <- remembered preferences (active tab)
func InitDataDir(projectDir string) error {
	dataDir := filepath.Join(projectDir, DataDir)

	dirs := []string{
		filepath.Join(dataDir, "logs"),
		filepath.Join(dataDir, "state"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(dataDir, "config.yaml"))
}

// NewConfig loads .wasteless/config.yaml (if present), then applies the
// optional .env file and WASTELESS_* environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:     projectDir,
		DataProjectDir: filepath.Join(projectDir, DataDir),
		Project:        defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := loadDotEnv(filepath.Join(projectDir, ".env")); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataProjectDir, "logs")
}

// LogPath returns the session log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "session.log")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.DataProjectDir, "state")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.DataProjectDir, "config.yaml")
}

// CatalogPath is the override content profile, or "" for the bundled one.
func (c *Config) CatalogPath() string {
	return c.Project.Catalog.Path
}

// PageSize is the "load more" increment.
func (c *Config) PageSize() int {
	return c.Project.UI.PageSize
}

// RememberTab reports whether the active tab is persisted across runs.
func (c *Config) RememberTab() bool {
	return c.Project.UI.RememberTab
}

// Prefs returns the preference store settings.
func (c *Config) Prefs() PrefsConfig {
	return c.Project.Prefs
}

// Bridge returns the intent bridge settings.
func (c *Config) Bridge() BridgeConfig {
	return c.Project.Bridge
}

// Clock is the time source for expiry math: the wall clock, or the instant
// pinned with WASTELESS_NOW.
func (c *Config) Clock() (timefmt.Clock, error) {
	if strings.TrimSpace(c.PinnedNow) == "" {
		return timefmt.SystemClock, nil
	}
	now, err := timefmt.ParseISO(c.PinnedNow)
	if err != nil {
		return nil, fmt.Errorf("config: %s_NOW: %w", EnvPrefix, err)
	}
	return timefmt.FixedClock(now), nil
}

// SetRememberTab toggles tab persistence and writes the value back to
// .wasteless/config.yaml.
func (c *Config) SetRememberTab(enabled bool) error {
	c.Project.UI.RememberTab = enabled
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Project.normalize(c.ProjectDir, c.DataProjectDir)
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir, c.DataProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	pc := &c.Project
	if env.CatalogPath != nil {
		pc.Catalog.Path = *env.CatalogPath
	}
	if env.PageSize != nil {
		pc.UI.PageSize = *env.PageSize
	}
	if env.RememberTab != nil {
		pc.UI.RememberTab = *env.RememberTab
	}
	if env.PrefsBackend != nil {
		pc.Prefs.Backend = *env.PrefsBackend
	}
	if env.PrefsPath != nil {
		pc.Prefs.Path = *env.PrefsPath
	}
	if env.RedisAddr != nil {
		pc.Prefs.RedisAddr = *env.RedisAddr
	}
	if env.RedisDB != nil {
		pc.Prefs.RedisDB = *env.RedisDB
	}
	if env.BridgeEnabled != nil {
		pc.Bridge.Enabled = *env.BridgeEnabled
	}
	if env.BridgeHost != nil {
		pc.Bridge.Host = *env.BridgeHost
	}
	if env.BridgePort != nil {
		pc.Bridge.Port = *env.BridgePort
	}
	c.PinnedNow = strings.TrimSpace(env.Now)

	pc.applyDefaults()
	pc.normalize(c.ProjectDir, c.DataProjectDir)
	if err := pc.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Clock(); err != nil {
		return err
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		UI: UIConfig{
			PageSize:    defaultPageSize,
			RememberTab: true,
		},
		Prefs: PrefsConfig{
			Backend:   BackendFile,
			Path:      defaultPrefsFile,
			RedisAddr: defaultRedisAddr,
		},
		Bridge: BridgeConfig{
			Host: defaultHost,
			Port: defaultPort,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.UI.PageSize <= 0 {
		pc.UI.PageSize = defaultPageSize
	}
	if strings.TrimSpace(pc.Prefs.Backend) == "" {
		pc.Prefs.Backend = BackendFile
	}
	if strings.TrimSpace(pc.Prefs.Path) == "" {
		pc.Prefs.Path = defaultPrefsFile
	}
	if strings.TrimSpace(pc.Prefs.RedisAddr) == "" {
		pc.Prefs.RedisAddr = defaultRedisAddr
	}
	if strings.TrimSpace(pc.Bridge.Host) == "" {
		pc.Bridge.Host = defaultHost
	}
	if pc.Bridge.Port == 0 {
		pc.Bridge.Port = defaultPort
	}
}

// normalize resolves the catalog path against the project directory and the
// prefs path against the .wasteless directory.
func (pc *ProjectConfig) normalize(projectDir, dataDir string) {
	pc.Catalog.Path = resolvePath(projectDir, pc.Catalog.Path)
	pc.Prefs.Backend = strings.ToLower(strings.TrimSpace(pc.Prefs.Backend))
	pc.Prefs.Path = resolvePath(dataDir, pc.Prefs.Path)
	pc.Prefs.RedisAddr = strings.TrimSpace(pc.Prefs.RedisAddr)
	pc.Bridge.Host = strings.TrimSpace(pc.Bridge.Host)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.UI.PageSize < 1 {
		return fmt.Errorf("ui.page_size must be >= 1")
	}
	switch pc.Prefs.Backend {
	case BackendFile, BackendSQLite:
		if pc.Prefs.Path == "" {
			return fmt.Errorf("prefs.path is required for the %s backend", pc.Prefs.Backend)
		}
	case BackendRedis:
		if pc.Prefs.RedisAddr == "" {
			return fmt.Errorf("prefs.redis_addr is required for the redis backend")
		}
		if pc.Prefs.RedisDB < 0 {
			return fmt.Errorf("prefs.redis_db must be >= 0")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("prefs.backend must be one of file, sqlite, redis, memory")
	}
	if pc.Bridge.Port < 1 || pc.Bridge.Port > 65535 {
		return fmt.Errorf("bridge.port %d out of range", pc.Bridge.Port)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.ProjectDir, c.DataProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.DataProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure data dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
