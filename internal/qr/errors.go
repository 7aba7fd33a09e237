package qr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers (the HTTP layer, the CLI) can react to it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidInput covers blank content, bad file names and bad paths.
	KindInvalidInput
	// KindNotFound covers a missing image file and an image holding no QR symbol.
	KindNotFound
	// KindCodecFailure covers encode failures and images the codecs cannot read.
	KindCodecFailure
	// KindIOFailure covers directory creation, file and stream write failures.
	KindIOFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	case KindCodecFailure:
		return "codec failure"
	case KindIOFailure:
		return "io failure"
	}
	return "unknown"
}

var (
	ErrBlankContent    = errors.New("blank content")
	ErrBlankPath       = errors.New("blank image path")
	ErrInvalidFileName = errors.New("invalid file name")
	ErrInvalidSize     = errors.New("invalid image size")
	ErrNoImage         = errors.New("image file does not exist")
	ErrUnreadableImage = errors.New("unreadable image")
	ErrNoCode          = errors.New("no qr code found")
)

// Error is returned by every operation in this package.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("qr: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}
