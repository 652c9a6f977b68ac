package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"indexfund-api/internal/config"
	"indexfund-api/pkg/confkit"
	hostpkg "indexfund-api/pkg/host"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Storage backend: %s", cfg.Storage.Backend),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Host) != "")),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		sectionLine("Registry config", cfg.Registry),
	}
	if cfg.Storage.Backend == config.BackendSQLite {
		lines = append(lines, fmt.Sprintf("SQLite path: %s", cfg.StoragePath()))
	}
	if reg := cfg.Registry.Value; reg != nil {
		lines = append(lines,
			fmt.Sprintf("Registry: %s", reg.RegistryID),
			fmt.Sprintf("Registration deposit: %s", reg.RegistrationDeposit().Dec()),
			fmt.Sprintf("Journal: %s", journalLine(reg)),
		)
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

// ApplyLogLevel sets the logx level from a config string. Empty leaves the
// current level alone.
func ApplyLogLevel(level string) {
	if strings.TrimSpace(level) == "" {
		return
	}
	logx.SetLevel(ParseLevel(level))
}

// ParseLevel maps a level name onto logx levels, defaulting to info.
func ParseLevel(level string) uint32 {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logx.DebugLevel
	case "info":
		return logx.InfoLevel
	case "error":
		return logx.ErrorLevel
	case "severe", "fatal":
		return logx.SevereLevel
	default:
		return logx.InfoLevel
	}
}

func journalLine(reg *hostpkg.Config) string {
	if reg.JournalDir == "" {
		return "disabled"
	}
	return reg.JournalDir
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
