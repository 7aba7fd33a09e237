package qr

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode/decoder"
	qrcode "github.com/skip2/go-qrcode"
)

// Level is a QR error-correction level. The zero value is M.
type Level int

const (
	LevelM Level = iota
	LevelL
	LevelQ
	LevelH
)

func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return LevelL, nil
	case "M", "":
		return LevelM, nil
	case "Q":
		return LevelQ, nil
	case "H":
		return LevelH, nil
	}
	return LevelM, fmt.Errorf("unknown error correction level %q (want L, M, Q or H)", s)
}

func (l Level) String() string {
	switch l {
	case LevelL:
		return "L"
	case LevelQ:
		return "Q"
	case LevelH:
		return "H"
	}
	return "M"
}

func (l Level) zxing() decoder.ErrorCorrectionLevel {
	switch l {
	case LevelL:
		return decoder.ErrorCorrectionLevel_L
	case LevelQ:
		return decoder.ErrorCorrectionLevel_Q
	case LevelH:
		return decoder.ErrorCorrectionLevel_H
	}
	return decoder.ErrorCorrectionLevel_M
}

func (l Level) recovery() qrcode.RecoveryLevel {
	switch l {
	case LevelL:
		return qrcode.Low
	case LevelQ:
		return qrcode.High
	case LevelH:
		return qrcode.Highest
	}
	return qrcode.Medium
}

const (
	DefaultSize         = 360
	DefaultMargin       = 1
	DefaultCharacterSet = "UTF-8"
)

// Options are the encode hints plus the rendering parameters.
type Options struct {
	CharacterSet    string
	ErrorCorrection Level
	// Margin is the quiet zone in modules.
	Margin     int
	Width      int
	Height     int
	Foreground color.Color
	Background color.Color
}

func DefaultOptions() Options {
	return Options{
		CharacterSet:    DefaultCharacterSet,
		ErrorCorrection: LevelM,
		Margin:          DefaultMargin,
		Width:           DefaultSize,
		Height:          DefaultSize,
		Foreground:      color.Black,
		Background:      color.White,
	}
}

func (o Options) withDefaults() Options {
	if o.CharacterSet == "" {
		o.CharacterSet = DefaultCharacterSet
	}
	if o.Foreground == nil {
		o.Foreground = color.Black
	}
	if o.Background == nil {
		o.Background = color.White
	}
	return o
}

func (o Options) hints() map[gozxing.EncodeHintType]interface{} {
	return map[gozxing.EncodeHintType]interface{}{
		gozxing.EncodeHintType_CHARACTER_SET:    o.CharacterSet,
		gozxing.EncodeHintType_ERROR_CORRECTION: o.ErrorCorrection.zxing(),
		gozxing.EncodeHintType_MARGIN:           o.Margin,
	}
}
