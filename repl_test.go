package main

import (
	"bytes"
	"os"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"

	"rowtree/engine"
	"rowtree/pager"
)

// contentLines runs the REPL against the given script and returns the output
// with every leading "db>" prompt stripped, one entry per non-empty line.
func contentLines(t *testing.T, dbPath string, script string) []string {
	t.Helper()
	pgr, err := pager.Open(dbPath)
	if err != nil {
		t.Fatalf("pager.Open: %v", err)
	}
	tree, err := engine.Open(pgr)
	if err != nil {
		t.Fatalf("engine.Open: %v", err)
	}
	logger := zap.NewNop().Sugar()

	in := strings.NewReader(script)
	var out bytes.Buffer
	if err := RunREPL(in, &out, tree, pgr, logger); err != nil {
		t.Fatalf("RunREPL: %v", err)
	}

	var lines []string
	for _, raw := range strings.Split(out.String(), "\n") {
		line := strings.TrimPrefix(raw, "db>")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func tempDBPath(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp("", "repl_test_*.db")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	path := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(path) })
	return path
}

func TestREPLInsertAndSelectRoundTrip(t *testing.T) {
	path := tempDBPath(t)
	script := "insert 1 alice alice@example.com\nselect\n.exit\n"
	lines := contentLines(t, path, script)
	want := []string{
		"Executed.",
		"(1, alice, alice@example.com)",
		"Executed.",
	}
	if !equalLines(lines, want) {
		t.Fatalf("lines = %v; want %v", lines, want)
	}
}

func TestREPLDuplicateKeyRejected(t *testing.T) {
	path := tempDBPath(t)
	script := "insert 1 alice alice@example.com\ninsert 1 bob bob@example.com\nselect\n.exit\n"
	lines := contentLines(t, path, script)
	want := []string{
		"Executed.",
		"Key Already Exists.",
		"(1, alice, alice@example.com)",
		"Executed.",
	}
	if !equalLines(lines, want) {
		t.Fatalf("lines = %v; want %v", lines, want)
	}
}

func TestREPLOrderedScanAcrossSplit(t *testing.T) {
	path := tempDBPath(t)
	n := engine.LeafMaxCells + 1
	var b strings.Builder
	for i := n; i >= 1; i-- {
		id := strconv.Itoa(i)
		b.WriteString("insert " + id + " user" + id + " user" + id + "@example.com\n")
	}
	b.WriteString("select\n.exit\n")

	lines := contentLines(t, path, b.String())
	if len(lines) != n+n+1 {
		t.Fatalf("got %d lines; want %d (%d Executed + %d select rows)", len(lines), 2*n+1, n+1, n)
	}
	for i := 0; i < n; i++ {
		if lines[i] != "Executed." {
			t.Fatalf("lines[%d] = %q; want %q", i, lines[i], "Executed.")
		}
	}
	for i := 0; i < n; i++ {
		id := strconv.Itoa(i + 1)
		want := "(" + id + ", user" + id + ", user" + id + "@example.com)"
		if got := lines[n+i]; got != want {
			t.Fatalf("select row %d = %q; want %q", i, got, want)
		}
	}
}

func TestREPLPersistenceAcrossExitAndReopen(t *testing.T) {
	path := tempDBPath(t)
	first := contentLines(t, path, "insert 3 carl carl@x.com\ninsert 1 alice alice@x.com\ninsert 2 bob bob@x.com\n.exit\n")
	want := []string{"Executed.", "Executed.", "Executed."}
	if !equalLines(first, want) {
		t.Fatalf("first session lines = %v; want %v", first, want)
	}

	second := contentLines(t, path, "select\n.exit\n")
	wantSelect := []string{
		"(1, alice, alice@x.com)",
		"(2, bob, bob@x.com)",
		"(3, carl, carl@x.com)",
		"Executed.",
	}
	if !equalLines(second, wantSelect) {
		t.Fatalf("second session lines = %v; want %v", second, wantSelect)
	}
}

func TestREPLNegativeIDRejected(t *testing.T) {
	path := tempDBPath(t)
	lines := contentLines(t, path, "insert -1 alice alice@example.com\nselect\n.exit\n")
	want := []string{"ID can't be negative.", "Executed."}
	if !equalLines(lines, want) {
		t.Fatalf("lines = %v; want %v", lines, want)
	}
}

func TestREPLOversizeUsernameRejected(t *testing.T) {
	path := tempDBPath(t)
	longName := strings.Repeat("a", engine.UsernameMaxLen)
	lines := contentLines(t, path, "insert 1 "+longName+" alice@example.com\nselect\n.exit\n")
	want := []string{"string is too long.", "Executed."}
	if !equalLines(lines, want) {
		t.Fatalf("lines = %v; want %v", lines, want)
	}
}

func TestREPLUnrecognizedCommand(t *testing.T) {
	path := tempDBPath(t)
	lines := contentLines(t, path, ".foo\n.exit\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "Unrecognized command") {
		t.Fatalf("lines = %v; want a single Unrecognized command line", lines)
	}
}

func TestREPLConstants(t *testing.T) {
	path := tempDBPath(t)
	lines := contentLines(t, path, ".constants\n.exit\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines; want 5 constant lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ROW_SIZE:") {
		t.Fatalf("lines[0] = %q; want ROW_SIZE prefix", lines[0])
	}
}

func equalLines(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
