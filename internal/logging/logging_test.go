package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "qrsrv.log")
	log, err := New(Config{Level: "info", Encoding: "json", File: path})
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hello")
	log.Debug("dropped")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"msg":"hello"`) {
		t.Fatalf("missing entry: %s", b)
	}
	if strings.Contains(string(b), "dropped") {
		t.Fatalf("debug entry logged at info level: %s", b)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud", Encoding: "console"}); err == nil {
		t.Fatal("expected error")
	}
}
