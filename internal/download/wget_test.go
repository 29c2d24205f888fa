package download

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWgetFetcher(t *testing.T) {
	fetcher := NewWgetFetcher("", zerolog.Nop())
	if fetcher.wgetPath != WgetCommand {
		t.Errorf("Expected wgetPath %s, got %s", WgetCommand, fetcher.wgetPath)
	}
}

func TestBuildWgetArgs(t *testing.T) {
	fetcher := NewWgetFetcher("", zerolog.Nop())
	args := fetcher.BuildWgetArgs("https://x.test/a.pdf", "/out/a_tmp.pdf")

	expectedArgs := []string{"--quiet", "--output-document", "/out/a_tmp.pdf", "https://x.test/a.pdf"}
	if len(args) != len(expectedArgs) {
		t.Fatalf("Expected %d args, got %d", len(expectedArgs), len(args))
	}
	for i, expected := range expectedArgs {
		if args[i] != expected {
			t.Errorf("Arg %d: expected %s, got %s", i, expected, args[i])
		}
	}
}

// writeFakeWget installs a shell script standing in for wget that exits with
// the given status after writing to --output-document.
func writeFakeWget(t *testing.T, exitCode string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake wget is a shell script")
	}
	script := `#!/bin/sh
printf fetched > "$3"
echo "server said no" >&2
exit ` + exitCode + "\n"
	path := filepath.Join(t.TempDir(), "wget")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write fake wget: %v", err)
	}
	return path
}

func TestWgetFetcher_FetchFile(t *testing.T) {
	fetcher := NewWgetFetcher(writeFakeWget(t, "0"), zerolog.Nop())
	out := filepath.Join(t.TempDir(), "a_tmp.pdf")

	if err := fetcher.FetchFile(context.Background(), "https://x.test/a.pdf", out); err != nil {
		t.Fatalf("FetchFile failed: %v", err)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "fetched" {
		t.Errorf("Unexpected content: %q", data)
	}
}

func TestWgetFetcher_ExitCode(t *testing.T) {
	fetcher := NewWgetFetcher(writeFakeWget(t, "8"), zerolog.Nop())

	err := fetcher.FetchFile(context.Background(), "https://x.test/a.pdf", filepath.Join(t.TempDir(), "a_tmp.pdf"))
	if err == nil {
		t.Fatal("Expected an error")
	}
	for _, want := range []string{"code 8", "server issued an error response", "server said no"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in error, got: %v", want, err)
		}
	}
}

func TestWgetFetcher_MissingBinary(t *testing.T) {
	fetcher := NewWgetFetcher(filepath.Join(t.TempDir(), "no-wget"), zerolog.Nop())
	if err := fetcher.AssertReady(); err == nil {
		t.Error("Expected AssertReady to fail")
	}
	if err := fetcher.FetchFile(context.Background(), "https://x.test/a.pdf", filepath.Join(t.TempDir(), "a.pdf")); err == nil {
		t.Error("Expected FetchFile to fail")
	}
}
