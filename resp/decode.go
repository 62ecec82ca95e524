package resp

import (
	"bytes"
	"errors"
)

// Limits bounds what a Decoder accepts from a peer. A zero field disables
// the corresponding check.
type Limits struct {
	// MaxBulkLen is the largest bulk string payload, in bytes.
	MaxBulkLen int
	// MaxElements is the largest element count of a single array.
	MaxElements int
}

// DefaultLimits mirrors the bounds redis applies to client input.
func DefaultLimits() Limits {
	return Limits{
		MaxBulkLen:  512 << 20,
		MaxElements: 1 << 20,
	}
}

// Decoder turns buffered bytes into frames. It holds no per-stream state, so
// one Decoder may serve any number of buffers as long as each buffer is only
// decoded from one goroutine at a time.
type Decoder struct {
	limits Limits
}

// NewDecoder returns a Decoder enforcing limits. Passing the zero Limits
// disables every check.
func NewDecoder(limits Limits) *Decoder {
	return &Decoder{limits: limits}
}

func (d *Decoder) Limits() Limits {
	return d.limits
}

var defaultDecoder = NewDecoder(DefaultLimits())

// Decode removes one frame from the front of buf.
//
// On ErrIncomplete, or any other error, buf is left exactly as it was. Callers
// append more bytes and call Decode again after ErrIncomplete; every other
// error means the stream can not be resynchronized.
func (d *Decoder) Decode(buf *bytes.Buffer) (Frame, error) {
	f, n, err := d.parse(buf.Bytes())
	if err != nil {
		return nil, err
	}
	buf.Next(n)
	return f, nil
}

// PredictLength reports how many bytes the frame at the front of p spans
// without decoding any payload. The result may exceed len(p) for a bulk string
// whose header has arrived but whose payload has not.
func (d *Decoder) PredictLength(p []byte) (int, error) {
	return d.predict(p)
}

// Decode removes one frame from the front of buf using DefaultLimits.
func Decode(buf *bytes.Buffer) (Frame, error) {
	return defaultDecoder.Decode(buf)
}

// PredictLength is Decoder.PredictLength with DefaultLimits.
func PredictLength(p []byte) (int, error) {
	return defaultDecoder.predict(p)
}

func (d *Decoder) parse(p []byte) (Frame, int, error) {
	return d.decode(p, false)
}

// decode dispatches on the tag byte. measured is set for elements of an array
// whose whole span is known to be buffered.
func (d *Decoder) decode(p []byte, measured bool) (Frame, int, error) {
	if len(p) == 0 {
		return nil, 0, ErrIncomplete
	}

	switch p[0] {
	case TypeSimple:
		return parseSimpleString(p)
	case TypeError:
		return parseSimpleError(p)
	case TypeInteger:
		return parseInteger(p)
	case TypeNull:
		return parseNull(p)
	case TypeBoolean:
		return parseBoolean(p)
	case TypeDouble:
		return parseDouble(p)
	case TypeBignum:
		return parseBigNumber(p)
	case TypeBlob:
		return d.parseSentinel(p, d.parseBulkNull, d.parseBulkString)
	case TypeArray:
		if measured {
			return d.parseSentinel(p, d.parseNullArray, d.parseMeasuredArray)
		}
		return d.parseSentinel(p, d.parseNullArray, d.parseArray)
	default:
		return nil, 0, unknownType(p[0])
	}
}

type parseFunc func(p []byte) (Frame, int, error)

// parseSentinel tries the null form of a length prefixed kind first. Only
// ErrIncomplete from the sentinel is final; any other mismatch falls through
// to the general form.
func (d *Decoder) parseSentinel(p []byte, sentinel, general parseFunc) (Frame, int, error) {
	f, n, err := sentinel(p)
	if err == nil {
		return f, n, nil
	}
	if errors.Is(err, ErrIncomplete) {
		return nil, 0, err
	}
	return general(p)
}

func (d *Decoder) predict(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, ErrIncomplete
	}

	switch p[0] {
	case TypeSimple, TypeError, TypeInteger, TypeNull, TypeBoolean, TypeDouble, TypeBignum:
		return predictLine(p, p[0])
	case TypeBlob:
		return d.predictBulkString(p)
	case TypeArray:
		return d.predictArray(p)
	default:
		return 0, unknownType(p[0])
	}
}
