package blog

import "github.com/goliatone/go-blog/internal/runtimeconfig"

var (
	ErrBlogNameRequired        = runtimeconfig.ErrBlogNameRequired
	ErrServerAddrRequired      = runtimeconfig.ErrServerAddrRequired
	ErrStorageDriverUnknown    = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrSessionTTLInvalid       = runtimeconfig.ErrSessionTTLInvalid
	ErrCookieNameRequired      = runtimeconfig.ErrCookieNameRequired
	ErrDefaultUserRequired     = runtimeconfig.ErrDefaultUserRequired
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrStaticDirRequired       = runtimeconfig.ErrStaticDirRequired
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	ServerConfig         = runtimeconfig.ServerConfig
	StorageConfig        = runtimeconfig.StorageConfig
	AuthConfig           = runtimeconfig.AuthConfig
	CacheConfig          = runtimeconfig.CacheConfig
	PathsConfig          = runtimeconfig.PathsConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	Features             = runtimeconfig.Features
	LoggingConfig        = runtimeconfig.LoggingConfig
)

// DefaultConfig returns settings that run a local SQLite blog.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file over the defaults and validates the result.
// An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
