package resp

import (
	"fmt"
)

// Encode renders f in wire format. A nil Frame encodes as Null.
func Encode(f Frame) []byte {
	return AppendFrame(nil, f)
}

// AppendFrame appends the wire form of f to dst and returns the extended slice.
func AppendFrame(dst []byte, f Frame) []byte {
	switch v := f.(type) {
	case nil:
		return append(dst, nullLiteral...)
	case SimpleString:
		return appendText(dst, TypeSimple, v.Value)
	case SimpleError:
		return appendText(dst, TypeError, v.Message)
	case Integer:
		return appendInteger(dst, v.Value)
	case Null:
		return append(dst, nullLiteral...)
	case Boolean:
		return appendBoolean(dst, v.Value)
	case Double:
		return appendDouble(dst, v.Value)
	case BigNumber:
		return appendBigNumber(dst, v.Value)
	case BulkString:
		return appendBulkString(dst, v.Value)
	case BulkNull:
		return append(dst, bulkNullLiteral...)
	case Array:
		dst = appendCount(dst, TypeArray, len(v.Elements))
		for _, e := range v.Elements {
			dst = AppendFrame(dst, e)
		}
		return dst
	case NullArray:
		return append(dst, nullArrayLiteral...)
	default:
		// Frame is sealed, so this is a new kind missing a case above.
		panic(fmt.Sprintf("resp: unhandled frame type %T", f))
	}
}
