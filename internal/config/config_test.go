package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cafedb.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFile_FlattensNestedKeys(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /var/lib/cafedb/cafe.db
  busy_timeout_ms: 2500
  strict: true
log:
  level: debug
server:
  read_timeout: 5s
`)

	fs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	l := NewLoader(fs)

	if got := l.String("database.path", ""); got != "/var/lib/cafedb/cafe.db" {
		t.Fatalf("expected database.path, got %q", got)
	}
	if got := l.Int("database.busy_timeout_ms", 0); got != 2500 {
		t.Fatalf("expected busy timeout 2500, got %d", got)
	}
	if !l.Bool("database.strict", false) {
		t.Fatal("expected database.strict to be true")
	}
	if got := l.String("log.level", "info"); got != "debug" {
		t.Fatalf("expected log.level debug, got %q", got)
	}
	if got := LoadTimeouts(l).Read; got != 5*time.Second {
		t.Fatalf("expected read timeout 5s, got %s", got)
	}
}

func TestLoadFile_Defaults(t *testing.T) {
	fs, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	l := NewLoader(fs)

	if got := l.String("database.path", "cafe_database.db"); got != "cafe_database.db" {
		t.Fatalf("expected default path, got %q", got)
	}
	if got := l.Int("server.port", 8080); got != 8080 {
		t.Fatalf("expected default port, got %d", got)
	}
	if got := LoadTimeouts(l); *got != *DefaultTimeoutConfig() {
		t.Fatalf("expected default timeouts, got %+v", got)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	path := writeConfig(t, "database: [unclosed")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestGetSetting_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database:\n  path: from-file.db\n")
	t.Setenv("CAFEDB_DATABASE_PATH", "from-env.db")

	fs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	if got := NewLoader(fs).String("database.path", ""); got != "from-env.db" {
		t.Fatalf("expected env override, got %q", got)
	}
}

func TestLoader_InvalidValuesFallBack(t *testing.T) {
	fs, _ := LoadFile("")
	fs.Set("server.port", "eighty")
	fs.Set("database.strict", "maybe")
	fs.Set("server.idle_timeout", "forever")
	l := NewLoader(fs)

	if got := l.Int("server.port", 8080); got != 8080 {
		t.Fatalf("expected fallback port, got %d", got)
	}
	if l.Bool("database.strict", false) {
		t.Fatal("expected fallback false")
	}
	if got := l.Duration("server.idle_timeout", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback duration, got %s", got)
	}
}

func TestEnvKey(t *testing.T) {
	if got := EnvKey("log.max_size_mb"); got != "CAFEDB_LOG_MAX_SIZE_MB" {
		t.Fatalf("unexpected env key %q", got)
	}
}
