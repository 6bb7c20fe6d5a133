// Package logging builds the hclog loggers shared by every opkscan component.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// LevelEnv selects the log level when no flag or config value is set.
	LevelEnv = "OPKSCAN_LOG_LEVEL"
	// JSONEnv switches log output to JSON when set to "1".
	JSONEnv = "OPKSCAN_JSON_LOG"

	// DefaultLevel keeps diagnostics quiet unless something fails.
	DefaultLevel = "warn"

	linePrefix = "opkscan | "
)

// NewLogger creates a new hclog logger with standard settings
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv(JSONEnv) == "1"
	if !jsonFormat {
		output = NewPrefixWriter(linePrefix, output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// ResolveLevel picks the first non-empty level from the candidates, then the
// environment, then DefaultLevel. Unknown names fall back to DefaultLevel.
func ResolveLevel(candidates ...string) string {
	candidates = append(candidates, os.Getenv(LevelEnv))
	for _, level := range candidates {
		level = strings.ToLower(strings.TrimSpace(level))
		if level == "" {
			continue
		}
		if hclog.LevelFromString(level) == hclog.NoLevel {
			return DefaultLevel
		}
		return level
	}
	return DefaultLevel
}
