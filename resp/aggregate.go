package resp

import (
	"math"
	"strconv"
)

const (
	bulkNullLiteral  = "$-1\r\n"
	nullArrayLiteral = "*-1\r\n"
)

// nullCount is the header count written by the null sentinels.
const nullCount = "-1"

// parseHeader reads the "<tag><count>\r\n" line that opens a bulk string or an
// array. It returns the index of the header's CR and the count.
func parseHeader(p []byte, tag byte) (int, int, error) {
	end, err := lineEnd(p, tag)
	if err != nil {
		return 0, 0, err
	}
	text := p[1:end]
	n, err := strconv.ParseUint(string(text), 10, strconv.IntSize-1)
	if err != nil {
		return 0, 0, numericFormat(text, err)
	}
	return end, int(n), nil
}

func (d *Decoder) parseBulkNull(p []byte) (Frame, int, error) {
	n, err := literal(p, bulkNullLiteral)
	if err != nil {
		return nil, 0, err
	}
	return BulkNull{}, n, nil
}

func (d *Decoder) bulkHeader(p []byte) (int, int, error) {
	end, n, err := parseHeader(p, TypeBlob)
	if err != nil {
		return 0, 0, err
	}
	if d.limits.MaxBulkLen > 0 && n > d.limits.MaxBulkLen {
		return 0, 0, malformed("bulk length %d exceeds limit %d", n, d.limits.MaxBulkLen)
	}
	// the whole frame span must fit in an int
	if n > math.MaxInt-(end+2*crlfLen) {
		return 0, 0, malformed("bulk length %d overflows the frame size", n)
	}
	return end, n, nil
}

func (d *Decoder) parseBulkString(p []byte) (Frame, int, error) {
	end, n, err := d.bulkHeader(p)
	if err != nil {
		return nil, 0, err
	}

	start := end + crlfLen
	if n > len(p)-start-crlfLen {
		return nil, 0, ErrIncomplete
	}
	if string(p[start+n:start+n+crlfLen]) != CRLF {
		return nil, 0, malformed("bulk string of length %d is not terminated by CRLF", n)
	}

	value := make([]byte, n)
	copy(value, p[start:start+n])
	return BulkString{Value: value}, start + n + crlfLen, nil
}

func (d *Decoder) predictBulkString(p []byte) (int, error) {
	end, err := lineEnd(p, TypeBlob)
	if err != nil {
		return 0, err
	}
	if string(p[1:end]) == nullCount {
		return end + crlfLen, nil
	}
	end, n, err := d.bulkHeader(p)
	if err != nil {
		return 0, err
	}
	return end + crlfLen + n + crlfLen, nil
}

func (d *Decoder) parseNullArray(p []byte) (Frame, int, error) {
	n, err := literal(p, nullArrayLiteral)
	if err != nil {
		return nil, 0, err
	}
	return NullArray{}, n, nil
}

func (d *Decoder) arrayHeader(p []byte) (int, int, error) {
	end, n, err := parseHeader(p, TypeArray)
	if err != nil {
		return 0, 0, err
	}
	if d.limits.MaxElements > 0 && n > d.limits.MaxElements {
		return 0, 0, malformed("array length %d exceeds limit %d", n, d.limits.MaxElements)
	}
	return end, n, nil
}

// parseArray is all-or-nothing: the span of every element is predicted before
// any element is decoded, so a short buffer costs no allocation and a nested
// underrun is reported before anything is materialized.
func (d *Decoder) parseArray(p []byte) (Frame, int, error) {
	end, n, err := d.arrayHeader(p)
	if err != nil {
		return nil, 0, err
	}
	total, err := d.spanElements(p, end+crlfLen, n)
	if err != nil {
		return nil, 0, err
	}
	return d.decodeElements(p[:total], end+crlfLen, n)
}

// parseMeasuredArray decodes an array nested in one whose span has already
// been predicted, so the subtree is not measured a second time.
func (d *Decoder) parseMeasuredArray(p []byte) (Frame, int, error) {
	end, n, err := d.arrayHeader(p)
	if err != nil {
		return nil, 0, err
	}
	return d.decodeElements(p, end+crlfLen, n)
}

func (d *Decoder) decodeElements(p []byte, off, n int) (Frame, int, error) {
	// every element spans at least one line, which bounds the allocation
	if n > (len(p)-off)/minLineLen {
		return nil, 0, ErrIncomplete
	}
	elements := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		f, size, err := d.decode(p[off:], true)
		if err != nil {
			return nil, 0, err
		}
		elements = append(elements, f)
		off += size
	}
	return Array{Elements: elements}, off, nil
}

func (d *Decoder) predictArray(p []byte) (int, error) {
	end, err := lineEnd(p, TypeArray)
	if err != nil {
		return 0, err
	}
	if string(p[1:end]) == nullCount {
		return end + crlfLen, nil
	}
	end, n, err := d.arrayHeader(p)
	if err != nil {
		return 0, err
	}
	return d.spanElements(p, end+crlfLen, n)
}

// spanElements predicts n consecutive frames starting at off and returns the
// offset just past the last one. Every element must be fully buffered since the
// next element's prediction starts where it ends.
func (d *Decoder) spanElements(p []byte, off, n int) (int, error) {
	total := off
	for i := 0; i < n; i++ {
		size, err := d.predict(p[total:])
		if err != nil {
			return 0, err
		}
		if size < 0 {
			return 0, malformed("negative span %d predicted for element %d", size, i)
		}
		if size > len(p)-total {
			return 0, ErrIncomplete
		}
		total += size
	}
	return total, nil
}

func appendBulkString(dst, value []byte) []byte {
	dst = appendCount(dst, TypeBlob, len(value))
	dst = append(dst, value...)
	return append(dst, CRLF...)
}

func appendCount(dst []byte, tag byte, n int) []byte {
	dst = append(dst, tag)
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, CRLF...)
}
