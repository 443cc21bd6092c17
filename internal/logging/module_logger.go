package logging

import (
	"context"
	"strconv"
	"strings"

	"github.com/chartpub/chartpub/pkg/interfaces"
)

const (
	rootModule    = "chartpub"
	chartsModule  = "chartpub.charts"
	themesModule  = "chartpub.themes"
	publishModule = "chartpub.publish"
	sitegenModule = "chartpub.sitegen"
	stylesModule  = "chartpub.styles"
)

const (
	fieldChartID        = "chart_id"
	fieldPublishVersion = "publish_version"
	fieldPublishStep    = "publish_step"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ChartsLogger returns the logger namespace reserved for chart services.
func ChartsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, chartsModule)
}

// ThemesLogger returns the logger namespace reserved for theme services.
func ThemesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, themesModule)
}

// PublishLogger returns the logger namespace reserved for the publish orchestrator.
func PublishLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publishModule)
}

// SitegenLogger returns the logger namespace reserved for the site assembler.
func SitegenLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sitegenModule)
}

// StylesLogger returns the logger namespace reserved for the CSS compiler.
func StylesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, stylesModule)
}

// WithPublishContext enriches the provided logger with common publish fields
// such as chart id, attempt version, and current step. Empty values are ignored.
func WithPublishContext(logger interfaces.Logger, chartID string, version int, step string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(chartID); trimmed != "" {
		fields[fieldChartID] = trimmed
	}
	if version > 0 {
		fields[fieldPublishVersion] = strconv.Itoa(version)
	}
	if trimmed := strings.TrimSpace(step); trimmed != "" {
		fields[fieldPublishStep] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
