package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("seed chosen") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("cache miss") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("cache miss") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("run log unavailable") }, true},
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

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug not written after SetLogLevel: %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Computed overlaps for 3 fragments")

	out := buf.String()
	if !strings.Contains(out, "Computed overlaps for 3 fragments (") {
		t.Errorf("progress output = %q", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "s)") {
		t.Errorf("progress output should end with a duration: %q", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield the default logger")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), l)
	if loggerFromContext(ctx) != l {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestRootCommandAttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	root := c.RootCommand()

	var got *log.Logger
	root.SetArgs([]string{"config", "path"})
	root.SetOut(&bytes.Buffer{})
	for _, sub := range root.Commands() {
		if sub.Name() != "config" {
			continue
		}
		for _, leaf := range sub.Commands() {
			if leaf.Name() == "path" {
				run := leaf.RunE
				leaf.RunE = func(cmd *cobra.Command, args []string) error {
					got = loggerFromContext(cmd.Context())
					return run(cmd, args)
				}
			}
		}
	}
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != c.Logger {
		t.Error("subcommand context should carry the CLI logger")
	}
}
