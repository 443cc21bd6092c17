package chartpub

import "github.com/chartpub/chartpub/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown = runtimeconfig.ErrStorageProviderUnknown
	ErrPublicBaseURLRequired  = runtimeconfig.ErrPublicBaseURLRequired
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	StorageConfig    = runtimeconfig.StorageConfig
	PublishingConfig = runtimeconfig.PublishingConfig
	AssetConfig      = runtimeconfig.AssetConfig
	ThemeConfig      = runtimeconfig.ThemeConfig
	EmbedConfig      = runtimeconfig.EmbedConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
