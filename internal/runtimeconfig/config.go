package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStorageProviderUnknown flags a repository provider outside the supported set.
var ErrStorageProviderUnknown = errors.New("chartpub config: storage provider is invalid")

// ErrPublicBaseURLRequired flags a missing public base URL; published charts
// cannot be addressed without one.
var ErrPublicBaseURLRequired = errors.New("chartpub config: publishing base URL is required")

// ErrLoggingProviderUnknown flags a logging provider outside the supported set.
var ErrLoggingProviderUnknown = errors.New("chartpub config: logging provider is invalid")

// ErrLoggingLevelInvalid flags an unsupported logging level.
var ErrLoggingLevelInvalid = errors.New("chartpub config: logging level is invalid")

// ErrLoggingFormatInvalid flags an unsupported logging format.
var ErrLoggingFormatInvalid = errors.New("chartpub config: logging format is invalid")

// Config aggregates adapter bindings for the chartpub module. Fields use
// simple types so host applications can populate them from their own
// configuration layers.
type Config struct {
	Storage    StorageConfig
	Publishing PublishingConfig
	Assets     AssetConfig
	Themes     ThemeConfig
	Embeds     EmbedConfig
	Logging    LoggingConfig
}

// StorageConfig selects the repository backend. "memory" keeps everything
// in-process; "bun" persists through a bun.DB supplied at construction.
type StorageConfig struct {
	Provider string
}

// PublishingConfig captures where published chart websites live.
type PublishingConfig struct {
	// BaseURL is the public origin serving published charts, without a
	// trailing slash (e.g. https://charts.example.com).
	BaseURL string
	// Root is the local directory published sites are moved into. Leave
	// empty when the host supplies its own PublishStorage.
	Root string
}

// AssetConfig locates the static inputs of a chart website build.
type AssetConfig struct {
	// Root holds core runtime scripts, vendor bundles, and visualization
	// assets referenced by registered visualizations.
	Root string
	// Polyfills are scripts staged before everything else, relative to Root.
	Polyfills []string
	// CoreScripts are runtime scripts staged after polyfills, relative to Root.
	CoreScripts []string
	// StyleSearchPaths resolve local stylesheet imports during compilation.
	StyleSearchPaths []string
}

// ThemeConfig captures configuration for the themes module.
type ThemeConfig struct {
	// DefaultTheme is assigned to charts created without one.
	DefaultTheme string
	// BootstrapDir, when set, is scanned for theme directories registered
	// at module construction.
	BootstrapDir string
}

// EmbedConfig carries the embed template preferences applied on publish.
type EmbedConfig struct {
	TeamPreferred string
	UserPreferred string
	Tokens        map[string]string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for single-host embedding.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: "memory",
		},
		Publishing: PublishingConfig{},
		Assets:     AssetConfig{},
		Themes: ThemeConfig{
			DefaultTheme: "default",
		},
		Embeds: EmbedConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if provider := normalize(cfg.Storage.Provider); provider != "" && !isSupportedStorage(provider) {
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if strings.TrimSpace(cfg.Publishing.BaseURL) == "" {
		return ErrPublicBaseURLRequired
	}
	if provider := normalize(cfg.Logging.Provider); provider != "" {
		if !isSupportedLoggingProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedStorage(provider string) bool {
	switch provider {
	case "memory", "bun":
		return true
	default:
		return false
	}
}

func isSupportedLoggingProvider(provider string) bool {
	switch provider {
	case "noop", "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
