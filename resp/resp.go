// Package resp implements a streaming codec for the RESP wire protocol.
// https://github.com/redis/redis-specifications/blob/master/protocol/RESP3.md
//
// Decoding works on a *bytes.Buffer fed from a socket: a frame is consumed only
// once all of its bytes are buffered, otherwise the buffer is left untouched and
// ErrIncomplete is returned.
package resp

import (
	"github.com/shopspring/decimal"
)

const CRLF string = "\r\n"

const crlfLen = len(CRLF)

// Type tags. The first byte of every frame is one of these.
const (
	TypeSimple  byte = '+'
	TypeError   byte = '-'
	TypeInteger byte = ':'
	TypeBlob    byte = '$'
	TypeArray   byte = '*'
	TypeNull    byte = '_'
	TypeBoolean byte = '#'
	TypeDouble  byte = ','
	TypeBignum  byte = '('
)

// Frame is one decoded protocol value. The set of implementations is closed:
// SimpleString, SimpleError, Integer, Null, Boolean, Double, BigNumber,
// BulkString, BulkNull, Array and NullArray.
type Frame interface {
	// Tag returns the wire type byte of the frame.
	Tag() byte
	frame()
}

// SimpleString is a single line of UTF-8 text. CR and LF can not be
// represented and are encoded as spaces.
type SimpleString struct {
	Value string
}

// SimpleError is an error reply. Message follows the SimpleString rules.
type SimpleError struct {
	Message string
}

// Integer is a signed 64-bit integer.
type Integer struct {
	Value int64
}

// Null is the RESP3 null "_\r\n".
type Null struct{}

// Boolean is "#t\r\n" or "#f\r\n".
type Boolean struct {
	Value bool
}

// Double is a 64-bit float, including the infinities and NaN.
type Double struct {
	Value float64
}

// BigNumber holds an arbitrary precision decimal.
type BigNumber struct {
	Value decimal.Decimal
}

// BulkString is a length prefixed binary safe payload.
type BulkString struct {
	Value []byte
}

// BulkNull is "$-1\r\n", distinct from Null.
type BulkNull struct{}

// Array represents an array in RESP. Elements keep wire order.
type Array struct {
	Elements []Frame
}

// NullArray is "*-1\r\n", distinct from an empty Array.
type NullArray struct{}

func (SimpleString) Tag() byte { return TypeSimple }
func (SimpleError) Tag() byte  { return TypeError }
func (Integer) Tag() byte      { return TypeInteger }
func (Null) Tag() byte         { return TypeNull }
func (Boolean) Tag() byte      { return TypeBoolean }
func (Double) Tag() byte       { return TypeDouble }
func (BigNumber) Tag() byte    { return TypeBignum }
func (BulkString) Tag() byte   { return TypeBlob }
func (BulkNull) Tag() byte     { return TypeBlob }
func (Array) Tag() byte        { return TypeArray }
func (NullArray) Tag() byte    { return TypeArray }

func (SimpleString) frame() {}
func (SimpleError) frame()  {}
func (Integer) frame()      {}
func (Null) frame()         {}
func (Boolean) frame()      {}
func (Double) frame()       {}
func (BigNumber) frame()    {}
func (BulkString) frame()   {}
func (BulkNull) frame()     {}
func (Array) frame()        {}
func (NullArray) frame()    {}

// NewBigNumber parses s as an arbitrary precision decimal.
func NewBigNumber(s string) (BigNumber, error) {
	d, err := parseDecimal([]byte(s))
	if err != nil {
		return BigNumber{}, err
	}
	return BigNumber{Value: d}, nil
}

// MustBigNumber is like NewBigNumber but panics on an invalid literal.
func MustBigNumber(s string) BigNumber {
	n, err := NewBigNumber(s)
	if err != nil {
		panic(err)
	}
	return n
}

// NewBulkString copies s into a BulkString.
func NewBulkString(s string) BulkString {
	return BulkString{Value: []byte(s)}
}

// NewArray builds an Array from the given elements.
func NewArray(elements ...Frame) Array {
	if elements == nil {
		elements = []Frame{}
	}
	return Array{Elements: elements}
}
