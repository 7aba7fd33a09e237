package qr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/kyriemtx/qrsrv/internal/app"
	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"go.uber.org/zap"
)

const (
	pngExt    = ".png"
	chunkSize = 32 << 10
)

// Render encodes text into a QR symbol and paints it into a two-colour image.
// The codec pads the symbol to fill Width x Height, so no scaling happens here.
func Render(text string, opts Options) (*image.Paletted, error) {
	const op = "render"
	if strings.TrimSpace(text) == "" {
		return nil, newError(op, KindInvalidInput, ErrBlankContent)
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.Margin < 0 {
		return nil, newError(op, KindInvalidInput, fmt.Errorf("%w: %dx%d margin %d", ErrInvalidSize, opts.Width, opts.Height, opts.Margin))
	}
	opts = opts.withDefaults()

	bm, err := zxqrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, opts.Width, opts.Height, opts.hints())
	if err != nil {
		return nil, newError(op, KindCodecFailure, err)
	}

	w, h := bm.GetWidth(), bm.GetHeight()
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{opts.Background, opts.Foreground})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if bm.Get(x, y) {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img, nil
}

// EncodePNG serializes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, newError("encode png", KindCodecFailure, err)
	}
	return buf.Bytes(), nil
}

type Config struct {
	Options Options
	// OutputDir receives files when GenerateToFile gets no usable directory.
	OutputDir string
	// DefaultContent is encoded in place of blank text on the stream path.
	DefaultContent string
}

// Generator renders and decodes QR codes with a fixed set of options.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	opts           Options
	outputDir      string
	defaultContent string
	log            *zap.Logger
	now            func() time.Time
}

func NewGenerator(cfg Config, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = app.DefaultOutputDir
	}
	if cfg.DefaultContent == "" {
		cfg.DefaultContent = app.DefaultContent
	}
	return &Generator{
		opts:           cfg.Options.withDefaults(),
		outputDir:      cfg.OutputDir,
		defaultContent: cfg.DefaultContent,
		log:            log,
		now:            time.Now,
	}
}

func (g *Generator) Options() Options { return g.opts }

func (g *Generator) OutputDir() string { return g.outputDir }

// content trims text, substituting the default content when it is blank.
func (g *Generator) content(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		g.log.Info("blank qr content, encoding default", zap.String("content", g.defaultContent))
		return g.defaultContent
	}
	return text
}

// Generate renders text (or the default content when text is blank).
func (g *Generator) Generate(text string) (*image.Paletted, error) {
	return Render(g.content(text), g.opts)
}

// PNG renders text and returns the PNG bytes.
func (g *Generator) PNG(text string) ([]byte, error) {
	img, err := g.Generate(text)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// GenerateToStream writes the PNG for text to w. The image is fully encoded before
// the first byte is written, so an encode failure leaves w untouched. ctx is checked
// between chunks; w is never closed.
func (g *Generator) GenerateToStream(ctx context.Context, text string, w io.Writer) error {
	const op = "generate to stream"
	b, err := g.PNG(text)
	if err != nil {
		return err
	}
	for len(b) > 0 {
		if err := ctx.Err(); err != nil {
			return newError(op, KindIOFailure, err)
		}
		n := min(len(b), chunkSize)
		if _, err := w.Write(b[:n]); err != nil {
			return newError(op, KindIOFailure, err)
		}
		b = b[n:]
	}
	return nil
}

// GenerateToFile writes the PNG for text into dir/name and returns the path written.
// Blank text writes nothing and returns ErrBlankContent. A blank dir, or one naming a
// regular file, falls back to the configured output directory. A blank name is
// generated from the current time plus a random suffix.
func (g *Generator) GenerateToFile(text, dir, name string) (string, error) {
	const op = "generate to file"
	text = strings.TrimSpace(text)
	if text == "" {
		g.log.Info("blank qr content, no file written")
		return "", newError(op, KindInvalidInput, ErrBlankContent)
	}

	dir = g.resolveDir(dir)
	name, err := g.resolveName(name)
	if err != nil {
		return "", err
	}

	b, err := g.PNG(text)
	if err != nil {
		return "", err
	}

	if !app.IsDir(dir) {
		g.log.Info("creating qr code directory", zap.String("dir", dir))
		if err := app.EnsureDir(dir, 0o755); err != nil {
			return "", newError(op, KindIOFailure, err)
		}
	}
	path := filepath.Join(dir, name)
	if app.FileExists(path) {
		g.log.Warn("replacing existing qr code file", zap.String("path", path))
	}
	if err := app.AtomicWriteFile(path, 0o644, b); err != nil {
		return "", newError(op, KindIOFailure, err)
	}
	g.log.Info("qr code file written", zap.String("path", path), zap.Int("bytes", len(b)))
	return path, nil
}

func (g *Generator) resolveDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return g.outputDir
	}
	if app.FileExists(dir) {
		g.log.Info("target is a file, using output directory", zap.String("target", dir), zap.String("dir", g.outputDir))
		return g.outputDir
	}
	return dir
}

func (g *Generator) resolveName(name string) (string, error) {
	const op = "generate to file"
	name = strings.TrimSpace(name)
	if name == "" {
		suffix, err := app.RandToken(4)
		if err != nil {
			return "", newError(op, KindIOFailure, err)
		}
		name = fmt.Sprintf("%d-%s%s", g.now().UnixMilli(), suffix, pngExt)
		g.log.Debug("generated qr code file name", zap.String("name", name))
		return name, nil
	}
	if name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", newError(op, KindInvalidInput, fmt.Errorf("%w: %q", ErrInvalidFileName, name))
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case "":
		name += pngExt
	case pngExt:
	default:
		return "", newError(op, KindInvalidInput, fmt.Errorf("%w: %q is not a .png name", ErrInvalidFileName, name))
	}
	return name, nil
}
