package resp

import (
	"fmt"
	"io"
	"math"
)

// Command builds the request form of a command: an array of bulk strings.
func Command(name string, args ...string) Array {
	elements := make([]Frame, 0, len(args)+1) // +1 for the command itself
	elements = append(elements, NewBulkString(name))
	for _, arg := range args {
		elements = append(elements, NewBulkString(arg))
	}
	return Array{Elements: elements}
}

// Fprint writes an indented dump of f to w, one line per frame.
func Fprint(w io.Writer, f Frame) error {
	return printFrame(w, f, "")
}

func printFrame(w io.Writer, f Frame, indent string) error {
	var err error
	switch n := f.(type) {
	case SimpleString:
		_, err = fmt.Fprintln(w, indent+"SimpleString:", n.Value)
	case SimpleError:
		_, err = fmt.Fprintln(w, indent+"Error:", n.Message)
	case Integer:
		_, err = fmt.Fprintln(w, indent+"Integer:", n.Value)
	case Null, nil:
		_, err = fmt.Fprintln(w, indent+"Null")
	case Boolean:
		_, err = fmt.Fprintln(w, indent+"Boolean:", n.Value)
	case Double:
		_, err = fmt.Fprintln(w, indent+"Double:", formatDouble(n.Value))
	case BigNumber:
		_, err = fmt.Fprintln(w, indent+"BigNumber:", n.Value.String())
	case BulkString:
		_, err = fmt.Fprintf(w, "%sBulkString: %q\n", indent, n.Value)
	case BulkNull:
		_, err = fmt.Fprintln(w, indent+"BulkNull")
	case Array:
		if _, err = fmt.Fprintf(w, "%sArray (%d):\n", indent, len(n.Elements)); err != nil {
			return err
		}
		for _, elem := range n.Elements {
			if err = printFrame(w, elem, indent+"  "); err != nil {
				return err
			}
		}
	case NullArray:
		_, err = fmt.Fprintln(w, indent+"NullArray")
	default:
		_, err = fmt.Fprintln(w, indent+"Unknown Frame Type!")
	}
	return err
}

// Equal reports whether a and b are the same frame. Big numbers compare by
// value and a NaN double equals another NaN.
func Equal(a, b Frame) bool {
	switch x := a.(type) {
	case Double:
		y, ok := b.(Double)
		if !ok {
			return false
		}
		if math.IsNaN(x.Value) {
			return math.IsNaN(y.Value)
		}
		return x.Value == y.Value && math.Signbit(x.Value) == math.Signbit(y.Value)
	case BigNumber:
		y, ok := b.(BigNumber)
		return ok && x.Value.Equal(y.Value)
	case BulkString:
		y, ok := b.(BulkString)
		return ok && string(x.Value) == string(y.Value)
	case Array:
		y, ok := b.(Array)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
