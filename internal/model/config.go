package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultAPIURL is the backend address used when nothing is configured.
const DefaultAPIURL = "http://localhost:8000"

// CredentialsConfig selects where the bearer token is kept.
type CredentialsConfig struct {
	// Backend forces a keyring backend ("file", "keychain", ...). Empty
	// lets the keyring pick the best one available.
	Backend string `mapstructure:"backend" yaml:"backend"`

	// FileDir is the directory used by the encrypted file backend.
	FileDir string `mapstructure:"file_dir" yaml:"file_dir"`
}

// NotificationsConfig controls toast behaviour.
type NotificationsConfig struct {
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	APIURL            string              `mapstructure:"api_url" yaml:"api_url"`
	RequestTimeoutSec int                 `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`
	ActivityDB        string              `mapstructure:"activity_db" yaml:"activity_db"`
	Credentials       CredentialsConfig   `mapstructure:"credentials" yaml:"credentials"`
	Notifications     NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Display           DisplayConfig       `mapstructure:"display" yaml:"display"`
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// NotificationTimeout returns how long a toast stays on screen.
func (c *AppConfig) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.TimeoutSec) * time.Second
}

// ConfigDir returns ~/.config/taskclient, falling back to the working
// directory when the home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "taskclient")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskclient/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		APIURL:            DefaultAPIURL,
		RequestTimeoutSec: 30,
		ActivityDB:        filepath.Join(ConfigDir(), "activity.db"),
		Credentials: CredentialsConfig{
			FileDir: filepath.Join(ConfigDir(), "credentials"),
		},
		Notifications: NotificationsConfig{TimeoutSec: 5},
		Display:       DisplayConfig{Theme: "default"},
	}
}

// newViper builds a viper instance with defaults and TASKCLIENT_* env
// overrides bound.
func newViper(path string) *viper.Viper {
	def := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("api_url", def.APIURL)
	v.SetDefault("request_timeout_sec", def.RequestTimeoutSec)
	v.SetDefault("activity_db", def.ActivityDB)
	v.SetDefault("credentials.backend", def.Credentials.Backend)
	v.SetDefault("credentials.file_dir", def.Credentials.FileDir)
	v.SetDefault("notifications.timeout_sec", def.Notifications.TimeoutSec)
	v.SetDefault("display.theme", def.Display.Theme)

	v.SetEnvPrefix("taskclient")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file yields the defaults (still subject to env overrides).
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.RequestTimeoutSec <= 0 {
		cfg.RequestTimeoutSec = 30
	}
	if cfg.Notifications.TimeoutSec <= 0 {
		cfg.Notifications.TimeoutSec = 5
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api_url", cfg.APIURL)
	v.Set("request_timeout_sec", cfg.RequestTimeoutSec)
	v.Set("activity_db", cfg.ActivityDB)
	v.Set("credentials", cfg.Credentials)
	v.Set("notifications", cfg.Notifications)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
