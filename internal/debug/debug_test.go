package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogWritesThroughLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	Log("snapshot %d dropped: %s", 3, "bad json")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].Message; got != "snapshot 3 dropped: bad json" {
		t.Errorf("message = %q", got)
	}
}

func TestDisabledLogIsSilent(t *testing.T) {
	SetLogger(nil)
	Log("nothing %s", "here")
	if Logger() == nil {
		t.Error("Logger() should never be nil")
	}
}

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer SetLogger(nil)

	Log("hello %s", "file")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Errorf("log file missing message:\n%s", data)
	}
}
