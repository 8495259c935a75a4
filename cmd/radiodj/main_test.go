package main

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestBuildLogger(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		debugActive bool
	}{
		{
			name:        "Debug json",
			level:       "debug",
			format:      "json",
			debugActive: true,
		},
		{
			name:        "Info console",
			level:       "info",
			format:      "console",
			debugActive: false,
		},
		{
			name:        "Debug console",
			level:       "debug",
			format:      "console",
			debugActive: true,
		},
		{
			name:        "Unknown level defaults to info",
			level:       "verbose",
			format:      "json",
			debugActive: false,
		},
		{
			name:        "Unknown format defaults to json",
			level:       "warn",
			format:      "logfmt",
			debugActive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := buildLogger(tt.level, tt.format)
			if logger == nil {
				t.Fatal("buildLogger() returned nil")
			}

			if active := logger.Core().Enabled(zapcore.DebugLevel); active != tt.debugActive {
				t.Errorf("debug enabled = %v, want %v", active, tt.debugActive)
			}
		})
	}
}
