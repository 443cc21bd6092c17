package commands

import (
	"strings"

	"github.com/chartpub/chartpub/internal/logging"
	"github.com/chartpub/chartpub/pkg/interfaces"
)

const commandModuleRoot = "chartpub.commands"

// CommandLogger returns a module-scoped logger for command handlers,
// enriched with consistent structured fields so command executions line up
// in aggregated logs.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
