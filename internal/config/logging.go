package config

import (
	"github.com/rshade/regdash/internal/logging"
)

// ToLoggingConfig converts the YAML logging section into a logging.Config.
//
//   - Level and Format are copied directly
//   - a non-empty File selects file output
//   - otherwise output goes to stderr
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = outputTypeFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// GetLoggingConfig returns a copy of the global logging section. Callers
// apply flag overrides such as --debug to the copy.
func GetLoggingConfig() LoggingConfig {
	cfg := GetGlobalConfig()
	return cfg.Logging
}
