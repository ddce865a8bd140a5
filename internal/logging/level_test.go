package logging

import (
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected log.Lvl
	}{
		{"debug", log.DEBUG},
		{"INFO", log.INFO},
		{" warn ", log.WARN},
		{"warning", log.WARN},
		{"error", log.ERROR},
		{"off", log.OFF},
		{"", log.INFO},
		{"verbose", log.INFO},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.in), tt.in)
	}
}
