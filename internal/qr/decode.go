package qr

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads the image at path and returns the text of the single QR symbol in it.
// A missing file yields ErrNoImage, a file that is not a readable raster image yields
// ErrUnreadableImage and an image without a symbol yields ErrNoCode.
func (g *Generator) Decode(path string) (string, error) {
	const op = "decode"
	if strings.TrimSpace(path) == "" {
		return "", newError(op, KindInvalidInput, ErrBlankPath)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", newError(op, KindNotFound, fmt.Errorf("%w: %s", ErrNoImage, path))
		}
		return "", newError(op, KindIOFailure, err)
	}
	defer f.Close()
	return g.decode(op, f)
}

// DecodeReader is Decode for an image read from r.
func (g *Generator) DecodeReader(r io.Reader) (string, error) {
	return g.decode("decode reader", r)
}

func (g *Generator) decode(op string, r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", newError(op, KindCodecFailure, fmt.Errorf("%w: %v", ErrUnreadableImage, err))
	}
	return DecodeImage(img, g.opts.CharacterSet)
}

// DecodeImage binarizes img and decodes exactly one QR symbol from it.
func DecodeImage(img image.Image, charset string) (string, error) {
	const op = "decode image"
	bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(gozxing.NewLuminanceSourceFromImage(img)))
	if err != nil {
		return "", newError(op, KindCodecFailure, err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{}
	if charset != "" {
		hints[gozxing.DecodeHintType_CHARACTER_SET] = charset
	}
	res, err := zxqrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		var nf gozxing.NotFoundException
		if errors.As(err, &nf) {
			return "", newError(op, KindNotFound, fmt.Errorf("%w: %v", ErrNoCode, err))
		}
		return "", newError(op, KindCodecFailure, err)
	}
	return res.GetText(), nil
}
