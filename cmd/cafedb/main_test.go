package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saltyorg/cafedb/internal/database"
)

// runCLI executes the root command against dbFile and returns stdout
func runCLI(t *testing.T, dbFile string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--db", dbFile, "--log-file", "-"}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestDemo_PrintsScenario(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "cafe.db")

	// Twice: the demo resets the tables, so ids start over
	for i := 0; i < 2; i++ {
		out, err := runCLI(t, dbFile, "demo")
		if err != nil {
			t.Fatalf("demo run %d returned error: %v", i+1, err)
		}

		lines := strings.Split(strings.TrimSpace(out), "\n")
		want := []string{
			"1 1",
			`(1, "Cafe A", "2020-05-11 00:00:00", "2020-05-13 00:00:00")`,
			`(1, 1, "table-3", "two lattes", "done", "2020-05-11 12:00:00", "2020-05-11 15:00:00")`,
		}
		if len(lines) != len(want) {
			t.Fatalf("run %d: expected %d lines, got %q", i+1, len(want), out)
		}
		for j := range want {
			if lines[j] != want[j] {
				t.Fatalf("run %d line %d: expected %q, got %q", i+1, j, want[j], lines[j])
			}
		}
	}
}

func TestCLI_AddListUpdateDelete(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "cafe.db")

	out, err := runCLI(t, dbFile, "add-cafe", "Cafe B")
	if err != nil || strings.TrimSpace(out) != "1" {
		t.Fatalf("add-cafe: expected id 1, got %q (err %v)", out, err)
	}

	for _, label := range []string{"table-1", "table-2"} {
		if _, err := runCLI(t, dbFile, "add-order", "1", label, "", "started", "2020-05-11 12:00:00", "2020-05-11 15:00:00"); err != nil {
			t.Fatalf("add-order returned error: %v", err)
		}
	}

	if _, err := runCLI(t, dbFile, "update", "orders", "2", "status=done"); err != nil {
		t.Fatalf("update returned error: %v", err)
	}

	out, err = runCLI(t, dbFile, "list", "orders", "status=done")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	want := `(2, 1, "table-2", NULL, "done", "2020-05-11 12:00:00", "2020-05-11 15:00:00")`
	if strings.TrimSpace(out) != want {
		t.Fatalf("expected %q, got %q", want, out)
	}

	if _, err := runCLI(t, dbFile, "delete", "orders", "id=2"); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	out, err = runCLI(t, dbFile, "list", "orders")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if got := strings.Count(out, "\n"); got != 1 {
		t.Fatalf("expected one remaining order, got %q", out)
	}

	if _, err := runCLI(t, dbFile, "delete", "orders", "--all"); err != nil {
		t.Fatalf("delete --all returned error: %v", err)
	}
	out, err = runCLI(t, dbFile, "list", "orders")
	if err != nil || out != "" {
		t.Fatalf("expected no orders, got %q (err %v)", out, err)
	}
}

func TestCLI_Errors(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "cafe.db")

	tests := []struct {
		name string
		args []string
	}{
		{"delete without filter or --all", []string{"delete", "orders"}},
		{"delete with filter and --all", []string{"delete", "orders", "id=1", "--all"}},
		{"unknown table", []string{"list", "users"}},
		{"unknown column", []string{"update", "orders", "1", "nazwa=x"}},
		{"malformed term", []string{"list", "orders", "status"}},
		{"bad row id", []string{"update", "orders", "one", "status=done"}},
		{"bad cafe id", []string{"add-order", "x", "t", "", "started", "s", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, dbFile, tt.args...); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}
}

func TestCLI_StrictSurfacesConstraintErrors(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "cafe.db")
	args := []string{"add-order", "7", "t", "", "started", "s", "e"}

	// Log mode absorbs the foreign key failure and prints id 0
	out, err := runCLI(t, dbFile, args...)
	if err != nil || strings.TrimSpace(out) != "0" {
		t.Fatalf("expected absorbed failure with id 0, got %q (err %v)", out, err)
	}

	if _, err := runCLI(t, dbFile, append([]string{"--strict"}, args...)...); err == nil {
		t.Fatal("expected strict mode to return the constraint error")
	}

	// An empty name binds as NULL and trips the NOT NULL constraint
	if _, err := runCLI(t, dbFile, "--strict", "add-cafe", ""); err == nil {
		t.Fatal("expected strict mode to reject a cafe without a name")
	}
}

func TestCLI_Version(t *testing.T) {
	out, err := runCLI(t, filepath.Join(t.TempDir(), "cafe.db"), "version")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if !strings.HasPrefix(out, "cafedb dev") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestParseTerms(t *testing.T) {
	filter, err := parseTerms([]string{"status=done", "table_label=a=b", "contents="})
	if err != nil {
		t.Fatalf("parseTerms returned error: %v", err)
	}

	want := database.Where("status", "done").And("table_label", "a=b").And("contents", "")
	if len(filter) != len(want) {
		t.Fatalf("expected %v, got %v", want, filter)
	}
	for i := range want {
		if filter[i] != want[i] {
			t.Fatalf("term %d: expected %v, got %v", i, want[i], filter[i])
		}
	}

	if _, err := parseTerms([]string{"=x"}); err == nil {
		t.Fatal("expected error for empty column")
	}
}

func TestFormatRow(t *testing.T) {
	got := formatRow(database.Row{int64(3), "it's", nil, []byte("raw"), 1.5})
	want := `(3, "it's", NULL, "raw", 1.5)`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
