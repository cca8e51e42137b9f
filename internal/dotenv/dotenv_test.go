package dotenv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\n\nDE_TEST_A=plain\nexport DE_TEST_B=\"quoted value\"\nDE_TEST_C='single'\nDE_TEST_D=\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, k := range []string{"DE_TEST_A", "DE_TEST_B", "DE_TEST_C", "DE_TEST_D"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	if err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := os.Getenv("DE_TEST_A"); got != "plain" {
		t.Fatalf("DE_TEST_A=%q", got)
	}
	if got := os.Getenv("DE_TEST_B"); got != "quoted value" {
		t.Fatalf("DE_TEST_B=%q", got)
	}
	if got := os.Getenv("DE_TEST_C"); got != "single" {
		t.Fatalf("DE_TEST_C=%q", got)
	}
}

func TestLoadFilePreservesExistingEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DE_TEST_KEEP=fromfile\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DE_TEST_KEEP", "fromenv")

	if err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := os.Getenv("DE_TEST_KEEP"); got != "fromenv" {
		t.Fatalf("DE_TEST_KEEP=%q, want fromenv", got)
	}
}

func TestLoadFileMissingIsNoop(t *testing.T) {
	if err := LoadFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("LoadFile on missing file: %v", err)
	}
}

func TestLoadFileMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("NOT A PAIR\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := LoadFile(path); err == nil {
		t.Fatalf("expected error for malformed line")
	}
}
