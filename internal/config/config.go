package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kyriemtx/qrsrv/internal/app"
	"github.com/kyriemtx/qrsrv/internal/logging"
	"github.com/kyriemtx/qrsrv/internal/qr"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Image struct {
	Width           int    `yaml:"width" validate:"min=21,max=4096"`
	Height          int    `yaml:"height" validate:"min=21,max=4096"`
	Margin          int    `yaml:"margin" validate:"min=0,max=16"`
	ErrorCorrection string `yaml:"errorCorrection" validate:"oneof=L M Q H"`
	CharacterSet    string `yaml:"characterSet" validate:"required"`
}

type HTTP struct {
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout" validate:"gt=0"`
	WriteTimeout      time.Duration `yaml:"writeTimeout" validate:"gt=0"`
	MaxUploadBytes    int64         `yaml:"maxUploadBytes" validate:"gt=0"`
}

type TLS struct {
	CertFile   string `yaml:"certFile" validate:"required_with=KeyFile"`
	KeyFile    string `yaml:"keyFile" validate:"required_with=CertFile"`
	SelfSigned bool   `yaml:"selfSigned"`
}

// Enabled reports whether the server should speak TLS.
func (t TLS) Enabled() bool { return t.SelfSigned || t.CertFile != "" }

type Config struct {
	Listen         string         `yaml:"listen" validate:"required"`
	OutputDir      string         `yaml:"outputDir" validate:"required"`
	DefaultContent string         `yaml:"defaultContent" validate:"required"`
	Image          Image          `yaml:"image"`
	HTTP           HTTP           `yaml:"http"`
	TLS            TLS            `yaml:"tls"`
	Log            logging.Config `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Listen:         app.DefaultListen,
		OutputDir:      app.DefaultOutputDir,
		DefaultContent: app.DefaultContent,
		Image: Image{
			Width:           qr.DefaultSize,
			Height:          qr.DefaultSize,
			Margin:          qr.DefaultMargin,
			ErrorCorrection: "M",
			CharacterSet:    qr.DefaultCharacterSet,
		},
		HTTP: HTTP{
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			MaxUploadBytes:    10 << 20,
		},
		Log: logging.DefaultConfig(),
	}
}

// LoadOrInit reads the YAML file at path over the defaults. A missing file is not an
// error: the defaults are returned as they are.
func LoadOrInit(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Save writes the config to path as YAML, replacing any existing file atomically.
func (c *Config) Save(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := app.EnsureDir(dir, 0o755); err != nil {
			return err
		}
	}
	return app.AtomicWriteFile(path, 0o644, b)
}

// Generator translates the image section into qr generator settings.
func (c *Config) Generator() (qr.Config, error) {
	level, err := qr.ParseLevel(c.Image.ErrorCorrection)
	if err != nil {
		return qr.Config{}, err
	}
	return qr.Config{
		Options: qr.Options{
			CharacterSet:    c.Image.CharacterSet,
			ErrorCorrection: level,
			Margin:          c.Image.Margin,
			Width:           c.Image.Width,
			Height:          c.Image.Height,
			Foreground:      color.Black,
			Background:      color.White,
		},
		OutputDir:      c.OutputDir,
		DefaultContent: c.DefaultContent,
	}, nil
}
