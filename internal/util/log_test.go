package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"trace": LevelTrace,
		"TRACE": LevelTrace,
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
	}

	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}

	if got := ParseLogLevel("unknown"); got != LevelInfo {
		t.Fatalf("ParseLogLevel default = %v, want %v", got, LevelInfo)
	}
}

func TestNamedLoggerFiltersAndTags(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LevelInfo, &buf)
	daemon := logger.Named("daemon")

	daemon.Debugf("hidden %d", 1)
	daemon.Infof("shown %d", 2)
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug line should be filtered: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "[INFO] daemon: shown 2") {
		t.Fatalf("expected tagged info line, got %s", buf.String())
	}

	logger.SetLevel(LevelTrace)
	daemon.Tracef("now visible")
	if !strings.Contains(buf.String(), "[TRACE] daemon: now visible") {
		t.Fatalf("child should follow parent level, got %s", buf.String())
	}
}
