package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kyriemtx/qrsrv/internal/qr"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	gc, err := cfg.Generator()
	if err != nil {
		t.Fatal(err)
	}
	if gc.Options.Width != 360 || gc.Options.Height != 360 || gc.Options.Margin != 1 || gc.Options.ErrorCorrection != qr.LevelM {
		t.Fatalf("unexpected defaults: %+v", gc.Options)
	}
	if gc.DefaultContent != "http://kyriemtx.com" {
		t.Fatalf("unexpected default content %q", gc.DefaultContent)
	}
}

func TestLoadOrInitMissingFile(t *testing.T) {
	cfg, err := LoadOrInit(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":8080" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOrInitOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qrsrv.yaml")
	y := `
listen: "127.0.0.1:9090"
image:
  errorCorrection: H
  width: 512
http:
  writeTimeout: 3s
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(y), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadOrInit(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != "127.0.0.1:9090" || cfg.Image.Width != 512 || cfg.Image.Height != 360 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.HTTP.WriteTimeout != 3*time.Second || cfg.HTTP.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("durations: %+v", cfg.HTTP)
	}
	gc, err := cfg.Generator()
	if err != nil {
		t.Fatal(err)
	}
	if gc.Options.ErrorCorrection != qr.LevelH {
		t.Fatalf("expected level H, got %v", gc.Options.ErrorCorrection)
	}
}

func TestLoadOrInitRejectsInvalid(t *testing.T) {
	for name, y := range map[string]string{
		"level":   "image:\n  errorCorrection: Z\n",
		"width":   "image:\n  width: 5\n",
		"log":     "log:\n  level: loud\n",
		"tlspair": "tls:\n  certFile: cert.pem\n",
	} {
		path := filepath.Join(t.TempDir(), name+".yaml")
		if err := os.WriteFile(path, []byte(y), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadOrInit(path); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "qrsrv.yaml")
	cfg := Default()
	cfg.OutputDir = "/srv/qrcodes"
	cfg.TLS.SelfSigned = true
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadOrInit(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.OutputDir != "/srv/qrcodes" || !got.TLS.Enabled() || got.HTTP.WriteTimeout != 30*time.Second {
		t.Fatalf("unexpected config after reload: %+v", got)
	}
}
