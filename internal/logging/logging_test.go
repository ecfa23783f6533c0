package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/cafedb/internal/config"
)

func TestApply_WritesConsoleAndFile(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logPath := filepath.Join(t.TempDir(), "logs", "cafedb.log")
	var console bytes.Buffer

	Apply("debug", nil, logPath, &console)
	log.Debug().Str("table", "orders").Msg("Deleted selected rows")

	if !strings.Contains(console.String(), "Deleted selected rows") {
		t.Fatalf("expected console output, got %q", console.String())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "table=orders") {
		t.Fatalf("expected field in log file, got %q", string(data))
	}
}

func TestApply_LevelFromLoader(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	fs, err := config.LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	fs.Set("log.level", "error")

	var console bytes.Buffer
	Apply("", config.NewLoader(fs), "-", &console)
	log.Info().Msg("hidden")

	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("expected error level, got %s", zerolog.GlobalLevel())
	}
	if console.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", console.String())
	}
}

func TestLevelForVerbosity(t *testing.T) {
	tests := map[int]string{0: "", 1: "debug", 2: "trace", 5: "trace"}
	for v, want := range tests {
		if got := LevelForVerbosity(v); got != want {
			t.Fatalf("verbosity %d: expected %q, got %q", v, want, got)
		}
	}
}

func TestFilePathForDB(t *testing.T) {
	dir := t.TempDir()
	if got := FilePathForDB(filepath.Join(dir, "cafe.db")); got != filepath.Join(dir, DefaultLogFileName) {
		t.Fatalf("unexpected log path %q", got)
	}
	if got := FilePathForDB(":memory:"); got != DefaultLogFileName {
		t.Fatalf("unexpected log path for memory db %q", got)
	}
}
