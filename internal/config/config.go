// internal/config/config.go
//
// This package handles configuration and the .dealdesk directory structure.
// Every project that runs dealdesk gets a .dealdesk/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DealdeskDir is the name of the directory we create in each project
	DealdeskDir = ".dealdesk"

	SourceDir  = "dir"
	SourceHTTP = "http"

	DefaultCatalogDir    = "data"
	DefaultServerHost    = "127.0.0.1"
	DefaultServerPort    = 8787
	DefaultStaleAfter    = 5 * time.Minute
	DefaultFinalizeDelay = 3 * time.Second
)

const defaultProjectConfigYAML = `# dealdesk project configuration
version: 1

# Where the customer, product and add-on catalog comes from.
# source: dir reads customers/products/addons (.json or .yaml) from dir.
# source: http fetches {url}/customers.json etc, e.g. from "dealdesk serve".
catalog:
  source: dir
  dir: data
  # url: http://127.0.0.1:8787/data
  stale_after: 5m

review:
  # How long the order confirmation stays up before the wizard resets.
  finalize_delay: 3s

# Bind address for "dealdesk serve".
server:
  host: 127.0.0.1
  port: 8787
`

// Duration is a time.Duration written as "5m" or "3s" in YAML.
type Duration time.Duration

// UnmarshalYAML accepts Go duration strings and bare integers (seconds).
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	value := strings.TrimSpace(node.Value)
	if value == "" {
		*d = 0
		return nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration %q", value)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in Go notation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// CatalogConfig selects the catalog provider.
type CatalogConfig struct {
	Source     string   `yaml:"source"`
	Dir        string   `yaml:"dir,omitempty"`
	URL        string   `yaml:"url,omitempty"`
	StaleAfter Duration `yaml:"stale_after"`
}

// ReviewConfig captures review stage timing.
type ReviewConfig struct {
	FinalizeDelay Duration `yaml:"finalize_delay"`
}

// ServerConfig is the bind address of the catalog server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ProjectConfig models .dealdesk/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Catalog CatalogConfig `yaml:"catalog"`
	Review  ReviewConfig  `yaml:"review"`
	Server  ServerConfig  `yaml:"server"`
}

// Config holds the runtime configuration for dealdesk.
type Config struct {
	// ProjectDir is the directory where the user ran `dealdesk` from
	ProjectDir string

	// DealdeskProjectDir is ProjectDir/.dealdesk
	DealdeskProjectDir string

	Project ProjectConfig
}

// InitProjectDir creates the .dealdesk directory structure in the given
// project directory and writes a commented config.yaml on first run.
//
// Structure created:
// .dealdesk/
// ├── config.yaml
// └── logs/         <- diagnostic log and journal
func InitProjectDir(projectDir string) error {
	dir := filepath.Join(projectDir, DealdeskDir)
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(dir, "config.yaml"))
}

// NewConfig loads .env, .dealdesk/config.yaml and DEALDESK_* overrides,
// in that order of increasing precedence.
func NewConfig(projectDir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(projectDir, ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectDir:         projectDir,
		DealdeskProjectDir: filepath.Join(projectDir, DealdeskDir),
		Project:            defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.Project.normalize(projectDir)
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv sets variables from path that are not already in the
// environment. A missing file is not an error.
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

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.DealdeskProjectDir, "logs")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.DealdeskProjectDir, "config.yaml")
}

// CatalogSource is "dir" or "http".
func (c *Config) CatalogSource() string { return c.Project.Catalog.Source }

// CatalogDir is the absolute catalog directory.
func (c *Config) CatalogDir() string { return c.Project.Catalog.Dir }

// CatalogURL is the catalog server base URL.
func (c *Config) CatalogURL() string {
	if c.Project.Catalog.URL != "" {
		return c.Project.Catalog.URL
	}
	return c.ServerURL() + "/data"
}

// StaleAfter is how long fetched catalog data is reused.
func (c *Config) StaleAfter() time.Duration { return time.Duration(c.Project.Catalog.StaleAfter) }

// FinalizeDelay is how long the confirmation shows before reset.
func (c *Config) FinalizeDelay() time.Duration { return time.Duration(c.Project.Review.FinalizeDelay) }

// ServerAddress is the catalog server bind address.
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Project.Server.Host, strconv.Itoa(c.Project.Server.Port))
}

// ServerURL is the catalog server base URL.
func (c *Config) ServerURL() string {
	return "http://" + c.ServerAddress()
}

// UseCatalog points the project at a catalog directory or URL and persists
// the choice to .dealdesk/config.yaml.
func (c *Config) UseCatalog(location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return fmt.Errorf("config: catalog location is required")
	}
	if isHTTPURL(location) {
		c.Project.Catalog.Source = SourceHTTP
		c.Project.Catalog.URL = location
	} else {
		c.Project.Catalog.Source = SourceDir
		c.Project.Catalog.Dir = location
	}
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func (c *Config) applyEnvOverrides() error {
	cat := &c.Project.Catalog
	if v := env("DEALDESK_CATALOG_SOURCE"); v != "" {
		cat.Source = v
	}
	if v := env("DEALDESK_CATALOG_DIR"); v != "" {
		cat.Dir = v
	}
	if v := env("DEALDESK_CATALOG_URL"); v != "" {
		cat.URL = v
	}
	if v := env("DEALDESK_CATALOG_STALE_AFTER"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: DEALDESK_CATALOG_STALE_AFTER: %w", err)
		}
		cat.StaleAfter = Duration(d)
	}
	if v := env("DEALDESK_FINALIZE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: DEALDESK_FINALIZE_DELAY: %w", err)
		}
		c.Project.Review.FinalizeDelay = Duration(d)
	}
	if v := env("DEALDESK_SERVER_HOST"); v != "" {
		c.Project.Server.Host = v
	}
	if v := env("DEALDESK_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: DEALDESK_SERVER_PORT: %w", err)
		}
		c.Project.Server.Port = port
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Catalog.Source == "" {
		pc.Catalog.Source = SourceDir
	}
	if pc.Catalog.Dir == "" {
		pc.Catalog.Dir = DefaultCatalogDir
	}
	if pc.Catalog.StaleAfter == 0 {
		pc.Catalog.StaleAfter = Duration(DefaultStaleAfter)
	}
	if pc.Review.FinalizeDelay == 0 {
		pc.Review.FinalizeDelay = Duration(DefaultFinalizeDelay)
	}
	if pc.Server.Host == "" {
		pc.Server.Host = DefaultServerHost
	}
	if pc.Server.Port == 0 {
		pc.Server.Port = DefaultServerPort
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Catalog.Source = strings.ToLower(strings.TrimSpace(pc.Catalog.Source))
	pc.Catalog.Dir = resolvePath(base, pc.Catalog.Dir)
	pc.Catalog.URL = strings.TrimRight(strings.TrimSpace(pc.Catalog.URL), "/")
	pc.Server.Host = strings.TrimSpace(pc.Server.Host)
	if pc.Server.Host == "" {
		pc.Server.Host = DefaultServerHost
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Catalog.Source {
	case SourceDir:
		if pc.Catalog.Dir == "" {
			return fmt.Errorf("catalog.dir is required for dir catalogs")
		}
	case SourceHTTP:
		if pc.Catalog.URL != "" && !isHTTPURL(pc.Catalog.URL) {
			return fmt.Errorf("catalog.url must be an http(s) URL")
		}
	default:
		return fmt.Errorf("catalog.source must be 'dir' or 'http'")
	}
	if pc.Catalog.StaleAfter < 0 {
		return fmt.Errorf("catalog.stale_after must not be negative")
	}
	if pc.Review.FinalizeDelay < 0 {
		return fmt.Errorf("review.finalize_delay must not be negative")
	}
	if pc.Server.Port < 0 || pc.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	return nil
}

func isHTTPURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
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
	c.Project.normalize(c.ProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.DealdeskProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure dealdesk dir: %w", err)
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
