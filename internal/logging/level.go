// Package logging maps configured level names onto gommon log levels.
package logging

import (
	"strings"

	"github.com/labstack/gommon/log"
)

// ParseLevel accepts debug, info, warn, error and off, case-insensitively.
// Anything else yields INFO.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
