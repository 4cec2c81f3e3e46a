package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		env     string
		verbose bool
		want    log.Level
	}{
		{"", false, log.InfoLevel},
		{"", true, log.DebugLevel},
		{"debug", false, log.DebugLevel},
		{"warn", false, log.WarnLevel},
		{"error", true, log.DebugLevel},
		{"shouty", false, log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(logLevelEnv, tt.env)
			if got := ResolveLevel(tt.verbose); got != tt.want {
				t.Errorf("ResolveLevel(%v) with %q = %v, want %v", tt.verbose, tt.env, got, tt.want)
			}
		})
	}
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wikigraph.log")
	logger, closeFn, err := fileLogger(path, log.InfoLevel)
	if err != nil {
		t.Fatalf("fileLogger: %v", err)
	}
	logger.Info("expanded", "title", "Graph theory")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "title=\"Graph theory\"") {
		t.Errorf("log file = %q", data)
	}

	discard, closeFn, err := fileLogger("", log.InfoLevel)
	if err != nil || discard == nil {
		t.Fatalf("fileLogger(\"\") = %v, %v", discard, err)
	}
	_ = closeFn()
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("expanded 3 articles")

	if !bytes.Contains(buf.Bytes(), []byte("expanded 3 articles (")) {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext should fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}
