// ABOUTME: Configuration management with storage backend selection
// ABOUTME: Handles user identity, locale, district, API keys and the storage backend factory

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/gachi/internal/locale"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
)

// Config stores gachi configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/gachi.
	DataDir string `json:"data_dir,omitempty"`

	// UserID identifies the local user. Generated on first run.
	UserID string `json:"user_id,omitempty"`

	Timezone string `json:"timezone,omitempty"`
	Locale   string `json:"locale,omitempty"`
	District string `json:"district,omitempty"`

	OpenAIAPIKey  string `json:"openai_api_key,omitempty"`
	OpenAIModel   string `json:"openai_model,omitempty"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`

	EventsURL       string `json:"events_url,omitempty"`
	SpacesURL       string `json:"spaces_url,omitempty"`
	ImportCron      string `json:"import_cron,omitempty"`
	ImportBatchSize int    `json:"import_batch_size,omitempty"`

	Listen  string `json:"listen,omitempty"`
	LogFile string `json:"log_file,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DefaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetTimezone returns the configured IANA zone name.
func (c *Config) GetTimezone() string {
	if c.Timezone == "" {
		return DefaultTimezone
	}
	return c.Timezone
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return timeutil.ResolveLocation(c.GetTimezone())
}

// Clock returns a system clock in the configured timezone.
func (c *Config) Clock() (timeutil.Clock, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	return timeutil.SystemClock{Loc: loc}, nil
}

// GetLocale returns the display locale.
func (c *Config) GetLocale() locale.Locale {
	return locale.Parse(c.Locale)
}

// GetDistrict returns the home district used for weather and recommendations.
func (c *Config) GetDistrict() string {
	if c.District == "" {
		return DefaultDistrict
	}
	return c.District
}

// GetOpenAIAPIKey prefers the OPENAI_API_KEY environment variable.
func (c *Config) GetOpenAIAPIKey() string {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		return v
	}
	return c.OpenAIAPIKey
}

// GetOpenAIModel returns the chat model name.
func (c *Config) GetOpenAIModel() string {
	if c.OpenAIModel == "" {
		return DefaultOpenAIModel
	}
	return c.OpenAIModel
}

// GetOpenAIBaseURL returns the chat-completions API base.
func (c *Config) GetOpenAIBaseURL() string {
	if c.OpenAIBaseURL == "" {
		return DefaultOpenAIBaseURL
	}
	return strings.TrimRight(c.OpenAIBaseURL, "/")
}

// GetImportCron returns the cron spec for scheduled imports.
func (c *Config) GetImportCron() string {
	if c.ImportCron == "" {
		return DefaultImportCron
	}
	return c.ImportCron
}

// GetImportBatchSize returns the catalogue insert chunk size.
func (c *Config) GetImportBatchSize() int {
	if c.ImportBatchSize <= 0 {
		return DefaultImportBatchSize
	}
	return c.ImportBatchSize
}

// GetListen returns the HTTP API listen address.
func (c *Config) GetListen() string {
	if c.Listen == "" {
		return DefaultListen
	}
	return c.Listen
}

// GetLogFile returns the rotated log file path with ~ expanded, or "".
func (c *Config) GetLogFile() string {
	return ExpandPath(c.LogFile)
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	switch c.GetBackend() {
	case "sqlite", "charm":
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Store implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Store, error) {
	switch backend := c.GetBackend(); backend {
	case "sqlite":
		return storage.NewSQLiteStore(filepath.Join(c.GetDataDir(), DBFilename))
	case "charm":
		return storage.NewCharmStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "gachi", "config.json")
}

// Load reads config from disk, creating a default one on first run.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultFirstRunConfig()
			if saveErr := cfg.Save(); saveErr != nil {
				fmt.Fprintf(os.Stderr, "warning: could not save default config: %v\n", saveErr)
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.UserID == "" {
		cfg.UserID = newUserID()
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("save generated user id: %w", err)
		}
	}
	return &cfg, nil
}

// Save writes config to disk atomically.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(GetConfigPath(), data)
}

// atomicWrite writes to a temp file in the same directory, then renames it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirPerms); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".gachi-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// the file may hold an API key
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// DefaultDataDir returns the standard XDG data directory for gachi.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "gachi")
}

// defaultFirstRunConfig returns the config written on first run.
func defaultFirstRunConfig() *Config {
	return &Config{
		Backend:  "sqlite",
		UserID:   newUserID(),
		Timezone: DefaultTimezone,
		Locale:   "ko",
	}
}
