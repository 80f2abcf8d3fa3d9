package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrBlogNameRequired = errors.New("blog config: blog name is required")
var ErrServerAddrRequired = errors.New("blog config: server address is required")
var ErrStorageDriverUnknown = errors.New("blog config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("blog config: storage dsn is required")
var ErrSessionTTLInvalid = errors.New("blog config: session lifetimes must be positive")
var ErrCookieNameRequired = errors.New("blog config: session cookie name is required")
var ErrDefaultUserRequired = errors.New("blog config: default user and password are required")
var ErrCacheTTLInvalid = errors.New("blog config: cache ttl must be zero or positive")
var ErrStaticDirRequired = errors.New("blog config: static directory is required")
var ErrLoggingProviderRequired = errors.New("blog config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("blog config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("blog config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("blog config: logging format is invalid")

// Config aggregates every setting the blog reads at startup.
type Config struct {
	BlogName   string         `yaml:"blog_name"`
	AdminEmail string         `yaml:"admin_email"`
	BaseURL    string         `yaml:"base_url"`
	Server     ServerConfig   `yaml:"server"`
	Storage    StorageConfig  `yaml:"storage"`
	Auth       AuthConfig     `yaml:"auth"`
	Cache      CacheConfig    `yaml:"cache"`
	Paths      PathsConfig    `yaml:"paths"`
	Markdown   MarkdownConfig `yaml:"markdown"`
	Features   Features       `yaml:"features"`
	Logging    LoggingConfig  `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects the database.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// AuthConfig controls the bootstrap account and login sessions.
type AuthConfig struct {
	DefaultUser     string        `yaml:"default_user"`
	DefaultPassword string        `yaml:"default_password"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	RememberTTL     time.Duration `yaml:"remember_ttl"`
	CookieName      string        `yaml:"cookie_name"`
	SecureCookie    bool          `yaml:"secure_cookie"`
	HashCost        int           `yaml:"hash_cost"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// PathsConfig locates on-disk assets.
type PathsConfig struct {
	StaticDir   string `yaml:"static_dir"`
	TemplateDir string `yaml:"template_dir"`
	ContentDir  string `yaml:"content_dir"`
}

// MarkdownConfig captures discovery and parser behaviour for Markdown.
type MarkdownConfig struct {
	Pattern   string               `yaml:"pattern"`
	Recursive bool                 `yaml:"recursive"`
	Parser    MarkdownParserConfig `yaml:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string `yaml:"extensions"`
	Sanitize   bool     `yaml:"sanitize"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// Features toggles optional functionality.
type Features struct {
	Activity bool `yaml:"activity"`
	Logger   bool `yaml:"logger"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns settings that run a local SQLite blog.
func DefaultConfig() Config {
	return Config{
		BlogName:   "go-blog",
		AdminEmail: "admin@example.com",
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "file:blog.db?cache=shared",
		},
		Auth: AuthConfig{
			DefaultUser:     "admin",
			DefaultPassword: "admin",
			SessionTTL:      12 * time.Hour,
			RememberTTL:     30 * 24 * time.Hour,
			CookieName:      "blog_session",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Paths: PathsConfig{
			StaticDir:  "static",
			ContentDir: "content",
		},
		Markdown: MarkdownConfig{
			Pattern:   "*.md",
			Recursive: true,
			Parser: MarkdownParserConfig{
				Sanitize: true,
			},
		},
		Features: Features{
			Activity: true,
			Logger:   true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Load overlays the YAML file at path on DefaultConfig and validates the
// result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, cfg.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("blog config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("blog config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.BlogName) == "" {
		return ErrBlogNameRequired
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	switch normalize(cfg.Storage.Driver) {
	case "", "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if cfg.Auth.SessionTTL <= 0 || cfg.Auth.RememberTTL <= 0 {
		return ErrSessionTTLInvalid
	}
	if strings.TrimSpace(cfg.Auth.CookieName) == "" {
		return ErrCookieNameRequired
	}
	if strings.TrimSpace(cfg.Auth.DefaultUser) == "" || cfg.Auth.DefaultPassword == "" {
		return ErrDefaultUserRequired
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if strings.TrimSpace(cfg.Paths.StaticDir) == "" {
		return ErrStaticDirRequired
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
