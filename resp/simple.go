package resp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	nullLiteral  = "_\r\n"
	trueLiteral  = "#t\r\n"
	falseLiteral = "#f\r\n"
)

// Double values whose magnitude falls outside [sciLow, sciHigh] are rendered
// in scientific notation.
const (
	sciHigh = 1e8
	sciLow  = 1e-8
)

// parseLine locates the single line frame tagged with tag at the front of p,
// hands its text to parse and returns the frame with the number of bytes it
// spans. Nothing is consumed here, so a parse failure leaves p as it was.
func parseLine(p []byte, tag byte, parse func(text []byte) (Frame, error)) (Frame, int, error) {
	end, err := lineEnd(p, tag)
	if err != nil {
		return nil, 0, err
	}
	f, err := parse(p[1:end])
	if err != nil {
		return nil, 0, err
	}
	return f, end + crlfLen, nil
}

// predictLine is the length prediction shared by every single line kind.
func predictLine(p []byte, tag byte) (int, error) {
	end, err := lineEnd(p, tag)
	if err != nil {
		return 0, err
	}
	return end + crlfLen, nil
}

func parseSimpleString(p []byte) (Frame, int, error) {
	return parseLine(p, TypeSimple, func(text []byte) (Frame, error) {
		if !utf8.Valid(text) {
			return nil, fmt.Errorf("%w: simple string %q", ErrTextEncoding, text)
		}
		return SimpleString{Value: string(text)}, nil
	})
}

func parseSimpleError(p []byte) (Frame, int, error) {
	return parseLine(p, TypeError, func(text []byte) (Frame, error) {
		if !utf8.Valid(text) {
			return nil, fmt.Errorf("%w: simple error %q", ErrTextEncoding, text)
		}
		return SimpleError{Message: string(text)}, nil
	})
}

func parseInteger(p []byte) (Frame, int, error) {
	return parseLine(p, TypeInteger, func(text []byte) (Frame, error) {
		v, err := strconv.ParseInt(string(text), 10, 64)
		if err != nil {
			return nil, numericFormat(text, err)
		}
		return Integer{Value: v}, nil
	})
}

func parseDouble(p []byte) (Frame, int, error) {
	return parseLine(p, TypeDouble, func(text []byte) (Frame, error) {
		v, err := strconv.ParseFloat(string(text), 64)
		if err != nil {
			return nil, numericFormat(text, err)
		}
		return Double{Value: v}, nil
	})
}

func parseBigNumber(p []byte) (Frame, int, error) {
	return parseLine(p, TypeBignum, func(text []byte) (Frame, error) {
		d, err := parseDecimal(text)
		if err != nil {
			return nil, err
		}
		return BigNumber{Value: d}, nil
	})
}

func parseDecimal(text []byte) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(string(text))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w %q: %w", ErrDecimalFormat, text, err)
	}
	return d, nil
}

func parseNull(p []byte) (Frame, int, error) {
	n, err := literal(p, nullLiteral)
	if err != nil {
		return nil, 0, err
	}
	return Null{}, n, nil
}

func parseBoolean(p []byte) (Frame, int, error) {
	n, err := literal(p, trueLiteral)
	if err == nil {
		return Boolean{Value: true}, n, nil
	}
	if errors.Is(err, ErrIncomplete) {
		return nil, 0, err
	}
	n, err = literal(p, falseLiteral)
	if err != nil {
		return nil, 0, err
	}
	return Boolean{Value: false}, n, nil
}

func appendInteger(dst []byte, v int64) []byte {
	dst = append(dst, TypeInteger)
	if v >= 0 {
		dst = append(dst, '+')
	}
	dst = strconv.AppendInt(dst, v, 10)
	return append(dst, CRLF...)
}

func appendDouble(dst []byte, v float64) []byte {
	dst = append(dst, TypeDouble)
	dst = append(dst, formatDouble(v)...)
	return append(dst, CRLF...)
}

// formatDouble renders v with an explicit sign. Outside the fixed point range
// the exponent is written without padding or '+', e.g. "+1.23456e8".
func formatDouble(v float64) string {
	sign := "+"
	if math.Signbit(v) {
		sign = "-"
	}

	abs := math.Abs(v)
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 0):
		return sign + "inf"
	case abs > sciHigh || abs < sciLow:
		s := strconv.FormatFloat(abs, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		e, _ := strconv.Atoi(exp)
		return sign + mantissa + "e" + strconv.Itoa(e)
	default:
		return sign + strconv.FormatFloat(abs, 'f', -1, 64)
	}
}

func appendBigNumber(dst []byte, d decimal.Decimal) []byte {
	dst = append(dst, TypeBignum)
	if d.Sign() >= 0 {
		dst = append(dst, '+')
	}
	dst = append(dst, d.String()...)
	return append(dst, CRLF...)
}

func appendBoolean(dst []byte, v bool) []byte {
	if v {
		return append(dst, trueLiteral...)
	}
	return append(dst, falseLiteral...)
}

// lineBreaks maps CR and LF to spaces so that simple text can not end its
// line early.
var lineBreaks = strings.NewReplacer("\r", " ", "\n", " ")

func appendText(dst []byte, tag byte, s string) []byte {
	dst = append(dst, tag)
	if strings.ContainsAny(s, CRLF) {
		s = lineBreaks.Replace(s)
	}
	dst = append(dst, s...)
	return append(dst, CRLF...)
}
