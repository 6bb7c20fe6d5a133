package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default modes of section directories and link files.
const (
	DefaultDirMode  = "0755"
	DefaultFileMode = "0644"
)

// ParseMode parses an octal permission string such as "755", "0755" or
// "0o755".
func ParseMode(s string) (os.FileMode, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0")
	if trimmed == "" {
		trimmed = "0"
	}

	val, err := strconv.ParseUint(trimmed, 8, 16)
	if err != nil || val > 0o777 {
		return 0, fmt.Errorf("%w: permission string %q is not an octal mode", ErrInvalidConfig, s)
	}
	return os.FileMode(val), nil
}

// FormatMode formats a mode the way ParseMode reads it.
func FormatMode(mode os.FileMode) string {
	return fmt.Sprintf("0%o", mode.Perm())
}

// Modes returns the parsed directory and file modes.
func (c *Config) Modes() (dir, file os.FileMode, err error) {
	if dir, err = ParseMode(c.DirMode); err != nil {
		return 0, 0, err
	}
	if file, err = ParseMode(c.FileMode); err != nil {
		return 0, 0, err
	}
	return dir, file, nil
}
