package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dshills/codeoverview/internal/auth"
	"github.com/dshills/codeoverview/internal/providers"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CODEOVERVIEW"

// Config represents the codeoverview configuration.
type Config struct {
	Provider  string          `yaml:"provider" mapstructure:"provider"`
	Model     string          `yaml:"model" mapstructure:"model"`
	Format    string          `yaml:"format" mapstructure:"format"`
	Endpoints EndpointsConfig `yaml:"endpoints" mapstructure:"endpoints"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Privacy   PrivacyConfig   `yaml:"privacy" mapstructure:"privacy"`
}

// EndpointsConfig locates the hosted endpoints the CLI talks to.
type EndpointsConfig struct {
	Generate string `yaml:"generate" mapstructure:"generate"`
	Chat     string `yaml:"chat" mapstructure:"chat"`
	Viewer   string `yaml:"viewer" mapstructure:"viewer"`
}

// StoreConfig locates the document store and the credentials used for it.
type StoreConfig struct {
	ProjectID   string `yaml:"projectId" mapstructure:"projectId"`
	Collection  string `yaml:"collection" mapstructure:"collection"`
	BaseURL     string `yaml:"baseURL,omitempty" mapstructure:"baseURL"`
	AccessToken string `yaml:"accessToken,omitempty" mapstructure:"accessToken"`
	APIKey      string `yaml:"apiKey,omitempty" mapstructure:"apiKey"`
	Email       string `yaml:"email,omitempty" mapstructure:"email"`
	Password    string `yaml:"password,omitempty" mapstructure:"password"`
}

// Credentials returns the store credentials in the form the auth package
// expects.
func (s StoreConfig) Credentials() auth.Credentials {
	return auth.Credentials{
		AccessToken: s.AccessToken,
		APIKey:      s.APIKey,
		Email:       s.Email,
		Password:    s.Password,
	}
}

// Configured reports whether the store has a project and usable credentials.
func (s StoreConfig) Configured() bool {
	return s.ProjectID != "" && s.Credentials().Configured()
}

// ServerConfig controls the endpoint server.
type ServerConfig struct {
	GenerateAddr string `yaml:"generateAddr" mapstructure:"generateAddr"`
	ChatAddr     string `yaml:"chatAddr" mapstructure:"chatAddr"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes" mapstructure:"maxBodyBytes"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// CacheConfig controls caching of model completions.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir        string `yaml:"dir,omitempty" mapstructure:"dir"`
	TTLSeconds int    `yaml:"ttlSeconds" mapstructure:"ttlSeconds"`
}

// PrivacyConfig controls redaction of uploaded content.
type PrivacyConfig struct {
	RedactSecrets bool     `yaml:"redactSecrets" mapstructure:"redactSecrets"`
	RedactPaths   []string `yaml:"redactPaths,omitempty" mapstructure:"redactPaths"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider: providers.DefaultProvider,
		Model:    providers.DefaultModel,
		Format:   "text",
		Endpoints: EndpointsConfig{
			Generate: "http://localhost:8787",
			Chat:     "http://localhost:8788",
			Viewer:   "https://ai-codeoverview.web.app",
		},
		Store: StoreConfig{
			Collection: "codeoverviews",
		},
		Server: ServerConfig{
			GenerateAddr: ":8787",
			ChatAddr:     ":8788",
			MaxBodyBytes: 16 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/.env.*", "**/.dev.vars", "**/*.pem", "**/*secrets*", "**/service-account*.json"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codeoverview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "codeoverview"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "codeoverview"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "codeoverview"), nil
	default:
		return filepath.Join(home, ".config", "codeoverview"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// legacyEnv maps keys to the environment variable names used by earlier
// deployments of the endpoints. They are consulted after the prefixed name.
var legacyEnv = map[string]string{
	"store.projectId":   "GCP_PROJECT_ID",
	"store.accessToken": "GCP_ACCESS_TOKEN",
	"store.apiKey":      "FIREBASE_API_KEY",
	"store.email":       "WORKER_EMAIL",
	"store.password":    "WORKER_PASSWORD",
}

// envName returns the prefixed environment variable for a key, e.g.
// store.projectId becomes CODEOVERVIEW_STORE_PROJECTID.
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	d := Default()
	defaults := map[string]any{
		"provider":              d.Provider,
		"model":                 d.Model,
		"format":                d.Format,
		"endpoints.generate":    d.Endpoints.Generate,
		"endpoints.chat":        d.Endpoints.Chat,
		"endpoints.viewer":      d.Endpoints.Viewer,
		"store.projectId":       d.Store.ProjectID,
		"store.collection":      d.Store.Collection,
		"store.baseURL":         d.Store.BaseURL,
		"store.accessToken":     d.Store.AccessToken,
		"store.apiKey":          d.Store.APIKey,
		"store.email":           d.Store.Email,
		"store.password":        d.Store.Password,
		"server.generateAddr":   d.Server.GenerateAddr,
		"server.chatAddr":       d.Server.ChatAddr,
		"server.maxBodyBytes":   d.Server.MaxBodyBytes,
		"log.level":             d.Log.Level,
		"log.format":            d.Log.Format,
		"cache.enabled":         d.Cache.Enabled,
		"cache.dir":             d.Cache.Dir,
		"cache.ttlSeconds":      d.Cache.TTLSeconds,
		"privacy.redactSecrets": d.Privacy.RedactSecrets,
		"privacy.redactPaths":   d.Privacy.RedactPaths,
	}
	for key, val := range defaults {
		v.SetDefault(key, val)
		names := []string{envName(key)}
		if legacy, ok := legacyEnv[key]; ok {
			names = append(names, legacy)
		}
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
	return v
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags; empty values are ignored.
func Load(overrides map[string]string) (Config, error) {
	v := newViper()

	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	for key, val := range overrides {
		if val != "" {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile loads the config file over the defaults, ignoring the
// environment. Returns Default() if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file. The file may hold credentials,
// so it is only readable by the owner.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks enumerated fields.
func Validate(cfg Config) error {
	switch cfg.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q (must be text or json)", cfg.Format)
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (must be text or json)", cfg.Log.Format)
	}
	return nil
}

// Redacted returns a copy with credentials masked, for display.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Store.AccessToken = mask(c.Store.AccessToken)
	c.Store.APIKey = mask(c.Store.APIKey)
	c.Store.Password = mask(c.Store.Password)
	return c
}

// Keys lists the keys accepted by SetField.
var Keys = []string{
	"provider", "model", "format",
	"endpoints.generate", "endpoints.chat", "endpoints.viewer",
	"store.projectId", "store.collection", "store.baseURL",
	"store.accessToken", "store.apiKey", "store.email", "store.password",
	"server.generateAddr", "server.chatAddr", "server.maxBodyBytes",
	"log.level", "log.format",
	"cache.enabled", "cache.dir", "cache.ttlSeconds",
	"privacy.redactSecrets",
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "endpoints.generate":
		cfg.Endpoints.Generate = value
	case "endpoints.chat":
		cfg.Endpoints.Chat = value
	case "endpoints.viewer":
		cfg.Endpoints.Viewer = value
	case "store.projectId":
		cfg.Store.ProjectID = value
	case "store.collection":
		cfg.Store.Collection = value
	case "store.baseURL":
		cfg.Store.BaseURL = value
	case "store.accessToken":
		cfg.Store.AccessToken = value
	case "store.apiKey":
		cfg.Store.APIKey = value
	case "store.email":
		cfg.Store.Email = value
	case "store.password":
		cfg.Store.Password = value
	case "server.generateAddr":
		cfg.Server.GenerateAddr = value
	case "server.chatAddr":
		cfg.Server.ChatAddr = value
	case "server.maxBodyBytes":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("server.maxBodyBytes must be an integer: %w", err)
		}
		cfg.Server.MaxBodyBytes = n
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return Validate(*cfg)
}
