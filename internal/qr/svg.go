package qr

import (
	"bytes"
	"fmt"
	"image/color"

	qrcode "github.com/skip2/go-qrcode"
)

// symbol builds the module grid for text with the go-qrcode encoder. Its quiet zone is
// the fixed four modules of the QR standard; a zero Margin disables it.
func (g *Generator) symbol(text string) (*qrcode.QRCode, error) {
	q, err := qrcode.New(g.content(text), g.opts.ErrorCorrection.recovery())
	if err != nil {
		return nil, newError("symbol", KindCodecFailure, err)
	}
	q.DisableBorder = g.opts.Margin == 0
	return q, nil
}

// SVG renders text as an SVG document with pixelsPerModule-sized squares.
func (g *Generator) SVG(text string, pixelsPerModule int) ([]byte, error) {
	if pixelsPerModule <= 0 {
		return nil, newError("svg", KindInvalidInput, fmt.Errorf("%w: %d pixels per module", ErrInvalidSize, pixelsPerModule))
	}
	q, err := g.symbol(text)
	if err != nil {
		return nil, err
	}
	bitmap := q.Bitmap()
	n := len(bitmap)
	if n == 0 {
		return nil, newError("svg", KindCodecFailure, fmt.Errorf("empty qr"))
	}
	w := n * pixelsPerModule
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, w, w, w, w)
	fmt.Fprintf(&buf, `<rect width="100%%" height="100%%" fill="%s"/>`, hexColor(g.opts.Background))
	fg := hexColor(g.opts.Foreground)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if bitmap[y][x] {
				fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`, x*pixelsPerModule, y*pixelsPerModule, pixelsPerModule, pixelsPerModule, fg)
			}
		}
	}
	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

// Terminal renders text with half-block characters for printing to a terminal.
func (g *Generator) Terminal(text string) (string, error) {
	q, err := g.symbol(text)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}

func hexColor(c color.Color) string {
	r, g, b, _ := color.RGBAModel.Convert(c).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
