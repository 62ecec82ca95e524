package resp

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete means the buffer does not hold a whole frame yet. It is the
	// only recoverable error: append more bytes and decode again.
	ErrIncomplete = errors.New("resp: frame is not complete")

	// ErrMalformedFrame means the bytes do not match the literal or tag expected
	// for the frame kind being decoded.
	ErrMalformedFrame = errors.New("resp: malformed frame")

	// ErrUnknownFrameType means the leading byte matches no known frame kind.
	ErrUnknownFrameType = errors.New("resp: unknown frame type")

	// ErrNumericFormat means an integer, double or length is not a valid number.
	ErrNumericFormat = errors.New("resp: invalid numeric value")

	// ErrTextEncoding means a simple string or error is not valid UTF-8.
	ErrTextEncoding = errors.New("resp: invalid utf-8 text")

	// ErrDecimalFormat means a big number is not a valid decimal.
	ErrDecimalFormat = errors.New("resp: invalid big number")
)

// IsProtocolError reports whether err is fatal for the stream it came from,
// that is any codec error except ErrIncomplete.
func IsProtocolError(err error) bool {
	if err == nil || errors.Is(err, ErrIncomplete) {
		return false
	}
	return errors.Is(err, ErrMalformedFrame) ||
		errors.Is(err, ErrUnknownFrameType) ||
		errors.Is(err, ErrNumericFormat) ||
		errors.Is(err, ErrTextEncoding) ||
		errors.Is(err, ErrDecimalFormat)
}

func malformed(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedFrame, fmt.Sprintf(format, a...))
}

func unknownType(tag byte) error {
	return fmt.Errorf("%w: got %q as type byte", ErrUnknownFrameType, tag)
}

func numericFormat(text []byte, err error) error {
	return fmt.Errorf("%w %q: %w", ErrNumericFormat, text, err)
}
